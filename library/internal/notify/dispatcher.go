package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-management/library/config"
	"github.com/Astemirdum/library-management/library/internal/metrics"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

// Dispatcher buffers email jobs in memory and publishes them to Kafka from a
// fixed pool of workers. Enqueue drops jobs when the buffer is full.
type Dispatcher struct {
	producer sarama.SyncProducer
	topic    string
	cfg      config.Notify
	log      *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.Notification
}

func NewDispatcher(producer sarama.SyncProducer, cfg config.Notify, log *zap.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	return &Dispatcher{
		producer: producer,
		topic:    kafka.NotificationTopic,
		cfg:      cfg,
		log:      log.Named("notify"),
		queue:    make(chan kafka.Notification, cfg.QueueSize),
	}
}

func (d *Dispatcher) Enqueue(to, subject, body string) {
	n := kafka.Notification{
		ID:        uuid.NewString(),
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(n, "dispatcher closed")
		return
	}
	select {
	case d.queue <- n:
		metrics.NotificationsEnqueued.Inc()
	default:
		d.drop(n, "queue full")
	}
}

func (d *Dispatcher) drop(n kafka.Notification, reason string) {
	metrics.NotificationsDropped.Inc()
	d.log.Warn("notification dropped",
		zap.String("reason", reason),
		zap.String("id", n.ID),
		zap.String("subject", n.Subject))
}

// Run publishes queued jobs until Close is called and the queue is drained.
// Cancelling ctx only cuts retry backoff short.
func (d *Dispatcher) Run(ctx context.Context) error {
	g := new(errgroup.Group)
	for i := 0; i < d.cfg.Workers; i++ {
		g.Go(func() error {
			for n := range d.queue {
				d.publish(ctx, n)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close stops accepting jobs. Jobs already queued are still published.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	close(d.queue)
}

func (d *Dispatcher) publish(ctx context.Context, n kafka.Notification) {
	value, err := json.Marshal(n)
	if err != nil {
		metrics.NotificationsFailed.Inc()
		d.log.Error("json.Marshal", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(n.ID),
		Value: sarama.ByteEncoder(value),
	}

	for attempt := 0; ; attempt++ {
		partition, offset, err := d.producer.SendMessage(msg)
		if err == nil {
			metrics.NotificationsPublished.Inc()
			d.log.Debug("notification published",
				zap.String("id", n.ID),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset))
			return
		}
		if attempt >= d.cfg.Retries {
			metrics.NotificationsFailed.Inc()
			d.log.Error("notification not published", zap.String("id", n.ID), zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		d.log.Warn("producer.SendMessage", zap.String("id", n.ID), zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-ctx.Done():
			metrics.NotificationsFailed.Inc()
			d.log.Error("notification not published", zap.String("id", n.ID), zap.Error(ctx.Err()))
			return
		case <-time.After(d.cfg.Backoff * time.Duration(attempt+1)):
		}
	}
}
