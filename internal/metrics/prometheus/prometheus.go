// Package prometheus exports pipeline metrics to a Prometheus registry.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements metrics.Recorder on top of Prometheus collectors.
type Collector struct {
	filesProcessed   *prometheus.CounterVec
	transactionsRows *prometheus.CounterVec
	fileDuration     *prometheus.HistogramVec

	batches   prometheus.Counter
	batchSize prometheus.Histogram
	decisions *prometheus.CounterVec

	notifications  *prometheus.CounterVec
	notifyAttempts prometheus.Histogram
	dlqReplays     *prometheus.CounterVec
}

// New creates a Collector with all metrics under the given namespace.
func New(namespace string) *Collector {
	return &Collector{
		filesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Files that reached a terminal status",
			},
			[]string{"status"},
		),
		transactionsRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_persisted_total",
				Help:      "Transactions persisted across all processed files",
			},
			[]string{},
		),
		fileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "file_processing_duration_seconds",
				Help:      "End to end processing time per file",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"status"},
		),
		batches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_batches_total",
				Help:      "Queue receive calls that returned",
			},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "worker_batch_size",
				Help:      "Messages per received batch",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_messages_total",
				Help:      "Queue messages by settlement decision",
			},
			[]string{"decision"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification deliveries by result",
			},
			[]string{"result"},
		),
		notifyAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "notification_attempts",
				Help:      "Transport attempts per notification",
				Buckets:   prometheus.LinearBuckets(1, 1, 3),
			},
		),
		dlqReplays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notification_dlq_replays_total",
				Help:      "Dead-letter replay cycles by result",
			},
			[]string{"result"},
		),
	}
}

// Register registers every collector with the given registry.
func (c *Collector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.filesProcessed,
		c.transactionsRows,
		c.fileDuration,
		c.batches,
		c.batchSize,
		c.decisions,
		c.notifications,
		c.notifyAttempts,
		c.dlqReplays,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordFileOutcome reports a file reaching a terminal status.
func (c *Collector) RecordFileOutcome(status string, transactions int, duration time.Duration) {
	c.filesProcessed.WithLabelValues(status).Inc()
	c.transactionsRows.WithLabelValues().Add(float64(transactions))
	c.fileDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordBatch reports the size of one received queue batch.
func (c *Collector) RecordBatch(messages int) {
	c.batches.Inc()
	c.batchSize.Observe(float64(messages))
}

// RecordDecision reports how a queue message was settled.
func (c *Collector) RecordDecision(decision string) {
	c.decisions.WithLabelValues(decision).Inc()
}

// RecordNotification reports a notification delivery and its attempt count.
func (c *Collector) RecordNotification(delivered bool, attempts int) {
	c.notifications.WithLabelValues(result(delivered)).Inc()
	c.notifyAttempts.Observe(float64(attempts))
}

// RecordDLQReplay reports one dead-letter replay cycle.
func (c *Collector) RecordDLQReplay(delivered bool) {
	c.dlqReplays.WithLabelValues(result(delivered)).Inc()
}

func result(delivered bool) string {
	if delivered {
		return "delivered"
	}

	return "failed"
}
