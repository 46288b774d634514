package observability

import (
	"backup-courier/domain/event"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "courier"

// Metrics exposes the delivery pipeline as prometheus collectors.
// It is fed by the telemetry chain and by the uploader.
type Metrics struct {
	registry        *prometheus.Registry
	filesDetected   prometheus.Counter
	deliveries      *prometheus.CounterVec
	partsUploaded   prometheus.Counter
	bytesUploaded   prometheus.Counter
	uploadDuration  *prometheus.HistogramVec
	dedupEntries    prometheus.Gauge
	workerRestarts  *prometheus.CounterVec
	channelLength   *prometheus.GaugeVec
	residentMemory  prometheus.Gauge
	cpuUsagePercent prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		filesDetected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_detected_total",
			Help:      "Watched files that became stable and entered delivery",
		}),
		deliveries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Finished delivery attempts by outcome",
		}, []string{"outcome"}),
		partsUploaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parts_uploaded_total",
			Help:      "Parts of split archives accepted by the chat",
		}),
		bytesUploaded: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_uploaded_total",
			Help:      "Bytes of documents accepted by the chat",
		}),
		uploadDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Duration of single document uploads",
			Buckets:   []float64{0.5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"status"}),
		dedupEntries: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedup_entries",
			Help:      "Paths currently remembered by the deduplicator",
		}),
		workerRestarts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_restarts_total",
			Help:      "Workers restarted by the supervisor",
		}, []string{"worker"}),
		channelLength: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "channel_length",
			Help:      "Buffered items waiting in pipeline channels",
		}, []string{"channel"}),
		residentMemory: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resident_memory_bytes",
			Help:      "Resident set size of the courier process",
		}),
		cpuUsagePercent: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_usage_percent",
			Help:      "CPU usage of the courier process",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveUpload records one document upload, successful or not.
func (m *Metrics) ObserveUpload(duration time.Duration, bytes int64, ok bool) {
	status := "failed"
	if ok {
		status = "ok"
		m.bytesUploaded.Add(float64(bytes))
	}
	m.uploadDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Handle makes Metrics a link of the telemetry handler chain.
// Payloads of unexpected type are ignored, the log handlers already report them.
func (m *Metrics) Handle(evt event.Event) {
	switch evt.Type {
	case event.FileDetectedType:
		m.filesDetected.Inc()
	case event.PartUploadedType:
		m.partsUploaded.Inc()
	case event.DeliverySucceededType, event.DeliveryFailedType, event.DeliveryAbandonedType:
		if payload, ok := evt.Payload.(event.DeliveryFinished); ok {
			m.deliveries.WithLabelValues(string(payload.Attempt.Outcome)).Inc()
		}
	case event.DedupEvictedType:
		if payload, ok := evt.Payload.(event.DedupEvicted); ok {
			m.dedupEntries.Set(float64(payload.Remaining))
		}
	case event.RestartedAfterPanicType:
		if payload, ok := evt.Payload.(event.WorkerRestartedAfterPanic); ok {
			m.workerRestarts.WithLabelValues(payload.WorkerName).Inc()
		}
	case event.ChannelCapacityType:
		if payload, ok := evt.Payload.(event.ChannelCapacity); ok {
			m.channelLength.WithLabelValues(payload.ChannelName).Set(float64(payload.Length))
		}
	case event.PIDTrackerType:
		if payload, ok := evt.Payload.(event.ProcessTracker); ok {
			m.residentMemory.Set(float64(payload.RSS))
			m.cpuUsagePercent.Set(payload.Cpu)
		}
	}
}
