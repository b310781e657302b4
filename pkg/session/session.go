// Package session ties a record store to its data file and the optional
// archive, export and metrics collaborators used by the CLI.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/roster/pkg/archive"
	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/metrics"
	"github.com/ssargent/roster/pkg/query"
	"github.com/ssargent/roster/pkg/store"
)

// ErrClosed is returned by operations on a closed session
var ErrClosed = errors.New("session closed")

// Exporter receives a copy of the records
type Exporter interface {
	Export(ctx context.Context, students []store.Student) (int64, error)
}

// Session owns the in-memory store for one data file. It is safe for
// concurrent use.
type Session struct {
	mu       sync.Mutex
	path     string
	codec    *codec.RecordCodec
	storeCfg store.Config
	store    *store.RecordStore
	closed   bool

	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Session
type Option func(*Session)

// WithStoreConfig sets the sizing used for the store and for reloads
func WithStoreConfig(cfg store.Config) Option {
	return func(s *Session) {
		s.storeCfg = cfg
	}
}

// WithMetrics records codec and store activity on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session with an empty store bound to path
func New(path string, c *codec.RecordCodec, opts ...Option) *Session {
	s := &Session{
		path:   path,
		codec:  c,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = store.NewRecordStore(s.storeCfg)
	return s
}

// Path returns the data file path
func (s *Session) Path() string {
	return s.path
}

// Add truncates the name, validates student and appends it. It returns the
// new record count.
func (s *Session) Add(student store.Student) (int, error) {
	student.Name = store.NormalizeName(student.Name)
	if err := student.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if err := s.store.Append(student); err != nil {
		return 0, err
	}

	n := s.store.Len()
	s.setStoreSize(n)
	s.logger.Debug("student added", slog.String("name", student.Name), slog.Int("count", n))
	return n, nil
}

// Len returns the number of records
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// Records returns a copy of all records in insertion order
func (s *Session) Records() []store.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.All()
}

// TagPassFail sets every record's status against passMark
func (s *Session) TagPassFail(passMark float64) (passed, failed int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, 0, ErrClosed
	}
	passed, failed = query.TagPassFail(s.store, passMark)
	return passed, failed, nil
}

// Save writes every record to the data file, replacing its contents
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	start := time.Now()
	err := s.codec.WriteFile(s.path, s.store)
	s.recordCodec("encode", err, start)
	if err != nil {
		return err
	}

	s.logger.Info("records saved", slog.String("path", s.path), slog.Int("count", s.store.Len()))
	return nil
}

// Load replaces the store with the contents of the data file. On any error
// the current records are kept; a file that cannot be opened yields an error
// wrapping codec.ErrNoFile. A report is returned whenever decoding ran.
func (s *Session) Load() (*codec.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	rs, report, err := s.codec.ReadFile(s.path, s.storeCfg)
	s.recordCodec("decode", err, start)
	if s.metrics != nil {
		s.metrics.RecordDecode(report)
	}
	if err != nil {
		return report, err
	}

	s.store = rs
	s.setStoreSize(rs.Len())
	s.logger.Info("records loaded",
		slog.String("path", s.path),
		slog.Int("count", rs.Len()),
		slog.Int("diagnostics", len(report.Diagnostics)),
		slog.Bool("truncated", report.Truncated),
	)
	return report, nil
}

// Snapshot stores the encoded records in a as a new archive entry
func (s *Session) Snapshot(a *archive.Archive) (archive.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return archive.Entry{}, ErrClosed
	}

	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, s.store); err != nil {
		return archive.Entry{}, err
	}

	entry, err := a.Put(buf.Bytes())
	s.recordSnapshot("put", err)
	if err != nil {
		return archive.Entry{}, err
	}

	s.logger.Info("snapshot stored", slog.String("id", entry.ID.String()), slog.Int("bytes", entry.Size))
	return entry, nil
}

// Restore replaces the store with snapshot id from a
func (s *Session) Restore(a *archive.Archive, id ksuid.KSUID) (*codec.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	data, err := a.Get(id)
	s.recordSnapshot("get", err)
	if err != nil {
		return nil, err
	}

	rs := store.NewRecordStore(s.storeCfg)
	report, err := s.codec.Decode(bytes.NewReader(data), rs)
	if s.metrics != nil {
		s.metrics.RecordDecode(report)
	}
	if err != nil {
		return report, fmt.Errorf("failed to restore snapshot %s: %w", id, err)
	}

	s.store = rs
	s.setStoreSize(rs.Len())
	return report, nil
}

// Export hands a copy of the records to e
func (s *Session) Export(ctx context.Context, e Exporter) (int64, error) {
	return e.Export(ctx, s.Records())
}

// Close releases the records. Further operations return ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.store.Clear()
	s.closed = true
	s.setStoreSize(0)
	return nil
}

// watch and unwatch are replaced in tests
var (
	watch   = func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt, syscall.SIGTERM) }
	unwatch = func(c chan<- os.Signal) { signal.Stop(c) }
)

// WatchInterrupt closes the session on SIGINT or SIGTERM and then calls
// onInterrupt. Cancel ctx to stop watching.
func (s *Session) WatchInterrupt(ctx context.Context, onInterrupt func(os.Signal)) {
	sigs := make(chan os.Signal, 1)
	watch(sigs)

	go func() {
		defer unwatch(sigs)
		select {
		case sig := <-sigs:
			s.logger.Warn("interrupt received, closing session", slog.String("signal", sig.String()))
			_ = s.Close()
			if onInterrupt != nil {
				onInterrupt(sig)
			}
		case <-ctx.Done():
		}
	}()
}

func (s *Session) recordCodec(operation string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordCodecOperation(operation, err == nil, time.Since(start))
}

func (s *Session) recordSnapshot(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSnapshot(operation, err == nil)
}

func (s *Session) setStoreSize(n int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SetStoreSize(n)
}
