// Package metrics collects Prometheus metrics for codec and store activity.
//
// Each Metrics value owns a private registry so several sessions (and tests)
// can coexist in one process. Metrics are exported by writing the registry to
// a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ssargent/roster/pkg/codec"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for roster
type Metrics struct {
	registry *prometheus.Registry

	// Codec metrics
	codecOperationsTotal   *prometheus.CounterVec
	codecOperationDuration *prometheus.HistogramVec
	recordsDecodedTotal    prometheus.Counter
	decodeDiagnosticsTotal *prometheus.CounterVec
	decodeTruncationsTotal prometheus.Counter

	// Store metrics
	storeRecords prometheus.Gauge

	// Archive metrics
	snapshotsTotal *prometheus.CounterVec
}

// New creates a registry and registers all metrics on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		codecOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_codec_operations_total",
				Help: "Total number of encode and decode operations",
			},
			[]string{"operation", "status"},
		),

		codecOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roster_codec_operation_duration_seconds",
				Help:    "Codec operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		recordsDecodedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "roster_records_decoded_total",
				Help: "Total number of records decoded",
			},
		),

		decodeDiagnosticsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_decode_diagnostics_total",
				Help: "Fields that were defaulted or ignored while decoding",
			},
			[]string{"field"},
		),

		decodeTruncationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "roster_decode_truncations_total",
				Help: "Decodes that stopped early at a malformed record",
			},
		),

		storeRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "roster_store_records",
				Help: "Number of records currently held in the store",
			},
		),

		snapshotsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roster_snapshots_total",
				Help: "Total number of archive snapshot operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCodecOperation records an encode or decode call
func (m *Metrics) RecordCodecOperation(operation string, success bool, duration time.Duration) {
	m.codecOperationsTotal.WithLabelValues(operation, status(success)).Inc()
	m.codecOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDecode folds a decode report into the counters
func (m *Metrics) RecordDecode(report *codec.Report) {
	if report == nil {
		return
	}
	m.recordsDecodedTotal.Add(float64(report.Records))
	for _, d := range report.Diagnostics {
		m.decodeDiagnosticsTotal.WithLabelValues(d.Field).Inc()
	}
	if report.Truncated {
		m.decodeTruncationsTotal.Inc()
	}
}

// SetStoreSize updates the store gauge
func (m *Metrics) SetStoreSize(n int) {
	m.storeRecords.Set(float64(n))
}

// RecordSnapshot records an archive operation
func (m *Metrics) RecordSnapshot(operation string, success bool) {
	m.snapshotsTotal.WithLabelValues(operation, status(success)).Inc()
}

// WriteTextfile writes every metric in the registry to path in the text
// exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func status(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}
