// Package promhooks records serialization calls as Prometheus metrics.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"propbag/serialization"
)

const namespace = "propbag"

// Hooks implements serialization.Hooks on Prometheus collectors.
type Hooks struct {
	serialized      *prometheus.CounterVec
	deserialized    *prometheus.CounterVec
	events          *prometheus.CounterVec
	serializeTime   *prometheus.HistogramVec
	deserializeTime *prometheus.HistogramVec
	bytes           *prometheus.HistogramVec
}

var _ serialization.Hooks = (*Hooks)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		serialized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serialize_total",
			Help:      "Values written, by root type and status.",
		}, []string{"type", "status"}),
		deserialized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deserialize_total",
			Help:      "Documents read, by root type and status.",
		}, []string{"type", "status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deserialize_events_total",
			Help:      "Deserialization events, by severity.",
		}, []string{"severity"}),
		serializeTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "serialize_duration_seconds",
			Help:      "Time spent writing a value.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"type"}),
		deserializeTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deserialize_duration_seconds",
			Help:      "Time spent reading a document.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"type"}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "serialized_bytes",
			Help:      "Size of written documents.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"type"}),
	}

	for _, c := range []prometheus.Collector{
		h.serialized, h.deserialized, h.events,
		h.serializeTime, h.deserializeTime, h.bytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func (h *Hooks) OnSerialize(typeName string, bytes int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	h.serialized.WithLabelValues(typeName, status).Inc()
	h.serializeTime.WithLabelValues(typeName).Observe(duration.Seconds())

	if err == nil {
		h.bytes.WithLabelValues(typeName).Observe(float64(bytes))
	}
}

func (h *Hooks) OnDeserialize(typeName string, duration time.Duration, result *serialization.DeserializationResult) {
	status := "ok"
	if !result.DidSucceed() {
		status = "failed"
	}

	h.deserialized.WithLabelValues(typeName, status).Inc()
	h.deserializeTime.WithLabelValues(typeName).Observe(duration.Seconds())

	for _, e := range result.Events() {
		h.events.WithLabelValues(severity(e.Severity)).Inc()
	}
}

func severity(t serialization.EventType) string {
	switch t {
	case serialization.EventLog:
		return "log"
	case serialization.EventWarning:
		return "warning"
	case serialization.EventError:
		return "error"
	case serialization.EventException:
		return "exception"
	}

	return "unknown"
}
