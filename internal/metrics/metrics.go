// Package metrics keeps forwarder counters and renders them in the
// Prometheus text exposition format.
package metrics

import (
	"io"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

const namespace = "certship"

// Metrics holds process-wide delivery counters. The zero value is ready to use
// and all methods are safe for concurrent use.
type Metrics struct {
	delivered atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	batches   atomic.Int64

	credentialsVerified atomic.Bool
	probeSuccess        atomic.Bool
	lastDelivery        atomic.Int64 // unix seconds
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Delivered           int64
	Failed              int64
	Skipped             int64
	Batches             int64
	CredentialsVerified bool
	ProbeSuccess        bool
	LastDeliveryUnix    int64
}

// New returns an empty Metrics.
func New() *Metrics {
	return &Metrics{}
}

// RecordDelivered counts one delivered record at the given unix time.
func (m *Metrics) RecordDelivered(unix int64) {
	m.delivered.Add(1)
	m.lastDelivery.Store(unix)
}

// RecordFailed counts one record whose delivery failed.
func (m *Metrics) RecordFailed() { m.failed.Add(1) }

// RecordSkipped counts one empty record.
func (m *Metrics) RecordSkipped() { m.skipped.Add(1) }

// RecordBatch counts one processed batch.
func (m *Metrics) RecordBatch() { m.batches.Add(1) }

// SetCredentialsVerified sets the credential gauge.
func (m *Metrics) SetCredentialsVerified(ok bool) { m.credentialsVerified.Store(ok) }

// SetProbeSuccess sets the probe gauge.
func (m *Metrics) SetProbeSuccess(ok bool) { m.probeSuccess.Store(ok) }

// Snapshot returns the current values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Delivered:           m.delivered.Load(),
		Failed:              m.failed.Load(),
		Skipped:             m.skipped.Load(),
		Batches:             m.batches.Load(),
		CredentialsVerified: m.credentialsVerified.Load(),
		ProbeSuccess:        m.probeSuccess.Load(),
		LastDeliveryUnix:    m.lastDelivery.Load(),
	}
}

// Families returns the metrics as Prometheus metric families, sorted by name.
func (m *Metrics) Families() []*dto.MetricFamily {
	s := m.Snapshot()
	return []*dto.MetricFamily{
		counter("batches_total", "Batches handed to the forwarder.", s.Batches),
		gauge("credentials_verified", "1 once the client certificate and key have been loaded.", boolValue(s.CredentialsVerified)),
		gauge("last_delivery_timestamp_seconds", "Unix time of the last successful delivery.", float64(s.LastDeliveryUnix)),
		gauge("probe_success", "1 if the last connection probe reached the endpoint.", boolValue(s.ProbeSuccess)),
		counter("records_delivered_total", "Records acknowledged with a 2xx response.", s.Delivered),
		counter("records_failed_total", "Records that could not be delivered.", s.Failed),
		counter("records_skipped_total", "Empty records skipped without a request.", s.Skipped),
	}
}

// WriteText writes all families in the text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	for _, mf := range m.Families() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func counter(name, help string, v int64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(namespace + "_" + name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{
			Counter: &dto.Counter{Value: proto.Float64(float64(v))},
		}},
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(namespace + "_" + name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Gauge: &dto.Gauge{Value: proto.Float64(v)},
		}},
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
