// Package di provides dependency injection container
package di

import (
	"context"
	"log/slog"

	"github.com/ssargent/roster/pkg/archive"
	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/export"
	"github.com/ssargent/roster/pkg/metrics"
	"github.com/ssargent/roster/pkg/store"
)

// CodecFactory builds the record codec for a schema
type CodecFactory func(schema codec.Schema, logger *slog.Logger) *codec.RecordCodec

// ArchiveOpener opens the snapshot archive in dir
type ArchiveOpener func(dir string) (*archive.Archive, error)

// Exporter writes records to an external database
type Exporter interface {
	Export(ctx context.Context, students []store.Student) (int64, error)
	Close() error
}

// ExporterFactory opens an exporter for path
type ExporterFactory func(path string) (Exporter, error)

// MetricsFactory creates the metrics collector for one command run
type MetricsFactory func() *metrics.Metrics

// Container holds all the dependencies for the application
type Container struct {
	codecFactory    CodecFactory
	archiveOpener   ArchiveOpener
	exporterFactory ExporterFactory
	metricsFactory  MetricsFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		codecFactory: func(schema codec.Schema, logger *slog.Logger) *codec.RecordCodec {
			return codec.NewRecordCodec(schema, codec.WithLogger(logger))
		},
		archiveOpener: archive.Open,
		exporterFactory: func(path string) (Exporter, error) {
			return export.NewSQLiteExporter(path)
		},
		metricsFactory: metrics.New,
	}
}

// GetCodecFactory returns the codec factory
func (c *Container) GetCodecFactory() CodecFactory {
	return c.codecFactory
}

// GetArchiveOpener returns the archive opener
func (c *Container) GetArchiveOpener() ArchiveOpener {
	return c.archiveOpener
}

// GetExporterFactory returns the exporter factory
func (c *Container) GetExporterFactory() ExporterFactory {
	return c.exporterFactory
}

// GetMetricsFactory returns the metrics factory
func (c *Container) GetMetricsFactory() MetricsFactory {
	return c.metricsFactory
}

// SetExporterFactory allows overriding the exporter factory (for testing)
func (c *Container) SetExporterFactory(factory ExporterFactory) {
	c.exporterFactory = factory
}

// SetArchiveOpener allows overriding the archive opener (for testing)
func (c *Container) SetArchiveOpener(opener ArchiveOpener) {
	c.archiveOpener = opener
}
