package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/library/config"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

func newTestDispatcher(t *testing.T, cfg config.Notify) (*Dispatcher, *mocks.SyncProducer) {
	t.Helper()
	producerCfg := mocks.NewTestConfig()
	producerCfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, producerCfg)
	return NewDispatcher(producer, cfg, zap.NewNop()), producer
}

func expectJob(to, subject string) mocks.ValueChecker {
	return func(val []byte) error {
		var n kafka.Notification
		if err := json.Unmarshal(val, &n); err != nil {
			return err
		}
		if n.To != to || n.Subject != subject || n.ID == "" {
			return errors.Errorf("unexpected job %+v", n)
		}
		return nil
	}
}

func TestDispatcher_drainsQueueOnClose(t *testing.T) {
	t.Parallel()
	d, producer := newTestDispatcher(t, config.Notify{Workers: 1, QueueSize: 4})
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectJob("a@example.com", "Welcome!"))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expectJob("b@example.com", "New Book Added"))

	d.Enqueue("a@example.com", "Welcome!", "Thank you for registering!")
	d.Enqueue("b@example.com", "New Book Added", "The book 'Beowulf' has been added to the library.")
	d.Close()

	require.NoError(t, d.Run(context.Background()))
	require.NoError(t, producer.Close())
}

func TestDispatcher_fullQueueDrops(t *testing.T) {
	t.Parallel()
	d, producer := newTestDispatcher(t, config.Notify{Workers: 1, QueueSize: 1})

	d.Enqueue("a@example.com", "s", "b")
	d.Enqueue("b@example.com", "s", "b")
	require.Len(t, d.queue, 1)

	producer.ExpectSendMessageAndSucceed()
	d.Close()
	require.NoError(t, d.Run(context.Background()))
	require.NoError(t, producer.Close())
}

func TestDispatcher_enqueueAfterClose(t *testing.T) {
	t.Parallel()
	d, producer := newTestDispatcher(t, config.Notify{Workers: 2, QueueSize: 2})
	d.Close()
	d.Close()

	require.NotPanics(t, func() { d.Enqueue("a@example.com", "s", "b") })
	require.NoError(t, d.Run(context.Background()))
	require.NoError(t, producer.Close())
}

func TestDispatcher_retries(t *testing.T) {
	t.Parallel()
	d, producer := newTestDispatcher(t, config.Notify{Workers: 1, QueueSize: 1, Retries: 2, Backoff: time.Millisecond})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndSucceed()

	d.Enqueue("a@example.com", "s", "b")
	d.Close()
	require.NoError(t, d.Run(context.Background()))
	require.NoError(t, producer.Close())
}

func TestDispatcher_givesUpAfterRetries(t *testing.T) {
	t.Parallel()
	d, producer := newTestDispatcher(t, config.Notify{Workers: 1, QueueSize: 1, Retries: 1, Backoff: time.Millisecond})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	d.Enqueue("a@example.com", "s", "b")
	d.Close()
	require.NoError(t, d.Run(context.Background()))
	require.NoError(t, producer.Close())
}
