package handler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mock_handler "github.com/Astemirdum/library-management/notifier/internal/handler/mocks"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

type fakeSession struct {
	ctx context.Context

	mu     sync.Mutex
	marked []int64
}

func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "member" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context                 { return s.ctx }
func (s *fakeSession) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, m.Offset)
}

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string                            { return kafka.NotificationTopic }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func message(t *testing.T, offset int64, n kafka.Notification) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: kafka.NotificationTopic, Offset: offset, Value: b}
}

func TestConsumer_ConsumeClaim(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	sender := mock_handler.NewMockSender(ctrl)

	welcome := kafka.Notification{ID: "1", To: "leo@example.com", Subject: "Welcome!", Body: "Thank you for registering!"}
	broadcast := kafka.Notification{ID: "2", To: "anna@example.com", Subject: "New Book Added", Body: "..."}

	gomock.InOrder(
		sender.EXPECT().Send(gomock.Any(), welcome).Return(nil),
		sender.EXPECT().Send(gomock.Any(), broadcast).Return(errors.New("smtp down")),
	)

	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 3)}
	claim.messages <- message(t, 0, welcome)
	claim.messages <- &sarama.ConsumerMessage{Topic: kafka.NotificationTopic, Offset: 1, Value: []byte("{not json")}
	claim.messages <- message(t, 2, broadcast)
	close(claim.messages)

	session := &fakeSession{ctx: context.Background()}
	c := NewConsumer(sender, zap.NewNop())
	require.NoError(t, c.Setup(session))
	require.NoError(t, c.ConsumeClaim(session, claim))

	// undelivered job stays unmarked
	require.Equal(t, []int64{0, 1}, session.marked)
}

func TestConsumer_ConsumeClaim_stopsOnSessionDone(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	sender := mock_handler.NewMockSender(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := &fakeSession{ctx: ctx}
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage)}

	require.NoError(t, NewConsumer(sender, zap.NewNop()).ConsumeClaim(session, claim))
	require.Empty(t, session.marked)
}

func TestConsumer_Setup_twice(t *testing.T) {
	t.Parallel()
	c := NewConsumer(nil, zap.NewNop())
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, c.Setup(session))
	require.NoError(t, c.Setup(session))
	select {
	case <-c.Ready():
	default:
		t.Fatal("consumer is not ready")
	}
}
