package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "library"

var (
	BorrowsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "borrows_created_total",
		Help:      "Borrows recorded.",
	})
	BorrowsReturned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "borrows_returned_total",
		Help:      "Borrows closed by a return.",
	})
	BorrowsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "borrows_rejected_total",
		Help:      "Borrow and return attempts refused, by reason.",
	}, []string{"reason"})

	NotificationsEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_enqueued_total",
	})
	NotificationsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Notifications lost because the queue was full or closed.",
	})
	NotificationsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
	})
	NotificationsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Notifications not published after all retries.",
	})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		BorrowsCreated,
		BorrowsReturned,
		BorrowsRejected,
		NotificationsEnqueued,
		NotificationsDropped,
		NotificationsPublished,
		NotificationsFailed,
		RequestDuration,
	)
}
