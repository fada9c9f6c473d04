package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/notifier/config"
	"github.com/Astemirdum/library-management/notifier/internal/handler"
	"github.com/Astemirdum/library-management/notifier/internal/mailer"
	"github.com/Astemirdum/library-management/pkg/circuit_breaker"
	"github.com/Astemirdum/library-management/pkg/kafka"
	"github.com/Astemirdum/library-management/pkg/logger"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "notifier")
	defer log.Sync() //nolint:errcheck

	cb := circuit_breaker.New(
		cfg.CircuitBreaker.RecordLength,
		cfg.CircuitBreaker.Timeout,
		cfg.CircuitBreaker.Percentile,
		cfg.CircuitBreaker.RecoveryRequests,
	)
	m := mailer.New(cfg.SMTP, cb, log)

	group, err := kafka.NewConsumer(cfg.Kafka, kafka.NotifierConsumerGroup)
	if err != nil {
		return fmt.Errorf("kafka.NewConsumer %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := handler.NewConsumer(m, log)
	done := make(chan error, 1)
	go func() {
		done <- kafka.Consume(ctx, group, consumer, log, kafka.NotificationTopic)
	}()
	go func() {
		select {
		case <-consumer.Ready():
			log.Info("consumer joined group",
				zap.String("group", kafka.NotifierConsumerGroup),
				zap.String("topic", kafka.NotificationTopic))
		case <-ctx.Done():
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	select {
	case termSig := <-sig:
		log.Debug("Graceful shutdown", zap.Any("signal", termSig))
	case err = <-done:
		log.Error("consumer stopped", zap.Error(err))
	}

	cancel()
	if err = group.Close(); err != nil {
		log.Error("group.Close", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}
