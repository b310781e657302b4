package session

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/roster/pkg/archive"
	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/metrics"
	"github.com/ssargent/roster/pkg/store"
)

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.txt")
	return New(path, codec.NewRecordCodec(codec.SchemaBase), opts...)
}

func alice() store.Student {
	return store.Student{Name: "Alice", Age: 20, Gender: store.GenderFemale, Score: 85.5, ID: store.IntID(1), RegistrationTime: 1700000000}
}

func bob() store.Student {
	return store.Student{Name: "Bob", Age: 22, Gender: store.GenderMale, Score: 59.99, ID: store.TextID("S42")}
}

func TestAdd(t *testing.T) {
	s := newSession(t)

	n, err := s.Add(alice())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Add(bob())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []store.Student{alice(), bob()}, s.Records())
}

func TestAddRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*store.Student)
	}{
		{"zero age", func(st *store.Student) { st.Age = 0 }},
		{"infinite score", func(st *store.Student) { st.Score = math.Inf(1) }},
		{"NaN score", func(st *store.Student) { st.Score = math.NaN() }},
		{"infinite scholarship", func(st *store.Student) { st.Scholarship = math.Inf(1) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSession(t)

			invalid := alice()
			tc.mutate(&invalid)

			_, err := s.Add(invalid)
			assert.ErrorIs(t, err, store.ErrInvalidStudent)
			assert.Equal(t, 0, s.Len())
		})
	}
}

func TestAddCapacityExceeded(t *testing.T) {
	s := newSession(t, WithStoreConfig(store.Config{MaxRecords: 1}))

	_, err := s.Add(alice())
	require.NoError(t, err)

	_, err = s.Add(bob())
	assert.ErrorIs(t, err, store.ErrCapacityExceeded)
}

func TestSaveLoad(t *testing.T) {
	s := newSession(t)
	_, err := s.Add(alice())
	require.NoError(t, err)
	_, err = s.Add(bob())
	require.NoError(t, err)
	require.NoError(t, s.Save())

	other := New(s.Path(), codec.NewRecordCodec(codec.SchemaBase))
	report, err := other.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Records)
	assert.Equal(t, s.Records(), other.Records())
}

func TestLoadMissingFileKeepsRecords(t *testing.T) {
	s := newSession(t)
	_, err := s.Add(alice())
	require.NoError(t, err)

	report, err := s.Load()
	assert.ErrorIs(t, err, codec.ErrNoFile)
	assert.Nil(t, report)
	assert.Equal(t, []store.Student{alice()}, s.Records())
}

func TestLoadEmptyFile(t *testing.T) {
	s := newSession(t)
	require.NoError(t, os.WriteFile(s.Path(), nil, 0600))
	_, err := s.Add(alice())
	require.NoError(t, err)

	report, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Records)
	assert.Equal(t, 0, s.Len())
}

func TestTagPassFail(t *testing.T) {
	s := newSession(t)
	_, err := s.Add(alice())
	require.NoError(t, err)
	_, err = s.Add(bob())
	require.NoError(t, err)

	passed, failed, err := s.TagPassFail(60)
	require.NoError(t, err)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)

	records := s.Records()
	assert.Equal(t, store.StatusPass, records[0].Status)
	assert.Equal(t, store.StatusFail, records[1].Status)
}

func TestSnapshotRestore(t *testing.T) {
	a, err := archive.Open(t.TempDir())
	require.NoError(t, err)
	defer a.Close()

	m := metrics.New()
	s := newSession(t, WithMetrics(m))
	_, err = s.Add(alice())
	require.NoError(t, err)

	entry, err := s.Snapshot(a)
	require.NoError(t, err)
	assert.Greater(t, entry.Size, 0)

	_, err = s.Add(bob())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	report, err := s.Restore(a, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
	assert.Equal(t, []store.Student{alice()}, s.Records())

	_, err = s.Restore(a, archive.Entry{}.ID)
	assert.ErrorIs(t, err, archive.ErrSnapshotNotFound)
	assert.Equal(t, 1, s.Len())

	n, err := testutil.GatherAndCount(m.Registry(), "roster_snapshots_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

type fakeExporter struct {
	got []store.Student
	err error
}

func (f *fakeExporter) Export(_ context.Context, students []store.Student) (int64, error) {
	f.got = students
	return int64(len(students)), f.err
}

func TestExport(t *testing.T) {
	s := newSession(t)
	_, err := s.Add(alice())
	require.NoError(t, err)

	e := &fakeExporter{}
	n, err := s.Export(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, []store.Student{alice()}, e.got)

	e.err = errors.New("disk full")
	_, err = s.Export(context.Background(), e)
	assert.EqualError(t, err, "disk full")
}

func TestClose(t *testing.T) {
	s := newSession(t)
	_, err := s.Add(alice())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 0, s.Len())
	_, err = s.Add(bob())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Save(), ErrClosed)
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWatchInterrupt(t *testing.T) {
	var (
		mu       sync.Mutex
		captured chan<- os.Signal
	)
	origWatch, origUnwatch := watch, unwatch
	watch = func(c chan<- os.Signal) {
		mu.Lock()
		captured = c
		mu.Unlock()
	}
	unwatch = func(chan<- os.Signal) {}
	t.Cleanup(func() { watch, unwatch = origWatch, origUnwatch })

	s := newSession(t)
	_, err := s.Add(alice())
	require.NoError(t, err)

	got := make(chan os.Signal, 1)
	s.WatchInterrupt(context.Background(), func(sig os.Signal) { got <- sig })

	mu.Lock()
	captured <- syscall.SIGINT
	mu.Unlock()

	select {
	case sig := <-got:
		assert.Equal(t, syscall.SIGINT, sig)
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt handler not called")
	}

	assert.Equal(t, 0, s.Len())
	_, err = s.Add(bob())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWatchInterruptCanceled(t *testing.T) {
	origWatch, origUnwatch := watch, unwatch
	stopped := make(chan struct{})
	watch = func(chan<- os.Signal) {}
	unwatch = func(chan<- os.Signal) { close(stopped) }
	t.Cleanup(func() { watch, unwatch = origWatch, origUnwatch })

	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	s.WatchInterrupt(ctx, func(os.Signal) { t.Error("handler called after cancel") })
	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	_, err := s.Add(alice())
	assert.NoError(t, err)
}

func TestAddTruncatesLongName(t *testing.T) {
	s := newSession(t)

	long := alice()
	long.Name = "Maximilian Alexander Fitzgerald Montgomery-Smythe III"
	require.Greater(t, len(long.Name), store.MaxNameLength)

	_, err := s.Add(long)
	require.NoError(t, err)
	assert.Equal(t, long.Name[:store.MaxNameLength], s.Records()[0].Name)
}
