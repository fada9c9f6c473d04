package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/pkg/kafka"
)

//go:generate mockgen -source=consume.go -destination=mocks/mock.go

type Sender interface {
	Send(ctx context.Context, n kafka.Notification) error
}

type Consumer struct {
	sender Sender
	log    *zap.Logger
	ready  chan bool
}

func NewConsumer(sender Sender, log *zap.Logger) *Consumer {
	return &Consumer{
		sender: sender,
		log:    log.Named("consumer"),
		ready:  make(chan bool),
	}
}

// Ready is closed once the first session is set up.
func (consumer *Consumer) Ready() <-chan bool {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	select {
	case <-consumer.ready:
	default:
		close(consumer.ready)
	}
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			if consumer.handle(session.Context(), message) {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle reports whether the message is done with and may be marked.
// Delivery failures are left unmarked so the job is redelivered.
func (consumer *Consumer) handle(ctx context.Context, message *sarama.ConsumerMessage) bool {
	var n kafka.Notification
	if err := json.Unmarshal(message.Value, &n); err != nil {
		consumer.log.Error("bad notification, skipped",
			zap.Error(err), zap.Int64("offset", message.Offset), zap.Int32("partition", message.Partition))
		return true
	}

	if err := consumer.sender.Send(ctx, n); err != nil {
		consumer.log.Error("sender.Send", zap.Error(err), zap.String("id", n.ID), zap.String("to", n.To))
		return false
	}

	consumer.log.Debug("notification delivered",
		zap.String("id", n.ID), zap.String("topic", message.Topic), zap.Time("timestamp", message.Timestamp))
	return true
}
