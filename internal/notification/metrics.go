package notification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks pipeline counters. All methods are nil-safe so callers can
// run without a registry wired in.
type Metrics struct {
	pushReceived     prometheus.Counter
	pushDuplicates   prometheus.Counter
	payloadErrors    prometheus.Counter
	snapshotMerges   prometheus.Counter
	snapshotFailures prometheus.Counter
	unreadCount      prometheus.Gauge
}

// NewMetrics registers the pipeline collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		pushReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "safeguard",
			Subsystem: "notifications",
			Name:      "push_received_total",
			Help:      "Push events received over the stream.",
		}),
		pushDuplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "safeguard",
			Subsystem: "notifications",
			Name:      "push_duplicates_total",
			Help:      "Push events dropped because the ID was already known.",
		}),
		payloadErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "safeguard",
			Subsystem: "notifications",
			Name:      "payload_errors_total",
			Help:      "Push payloads that could not be decoded.",
		}),
		snapshotMerges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "safeguard",
			Subsystem: "notifications",
			Name:      "snapshot_merges_total",
			Help:      "Snapshot reconciliations applied.",
		}),
		snapshotFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "safeguard",
			Subsystem: "notifications",
			Name:      "snapshot_failures_total",
			Help:      "Snapshot fetches that failed or were skipped.",
		}),
		unreadCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "safeguard",
			Subsystem: "notifications",
			Name:      "unread_count",
			Help:      "Current locally derived unread count.",
		}),
	}
}

func (m *Metrics) RecordPushReceived() {
	if m != nil {
		m.pushReceived.Inc()
	}
}

func (m *Metrics) RecordPushDuplicate() {
	if m != nil {
		m.pushDuplicates.Inc()
	}
}

func (m *Metrics) RecordPayloadError() {
	if m != nil {
		m.payloadErrors.Inc()
	}
}

func (m *Metrics) RecordSnapshotMerge() {
	if m != nil {
		m.snapshotMerges.Inc()
	}
}

func (m *Metrics) RecordSnapshotFailure() {
	if m != nil {
		m.snapshotFailures.Inc()
	}
}

func (m *Metrics) SetUnreadCount(n int) {
	if m != nil {
		m.unreadCount.Set(float64(n))
	}
}
