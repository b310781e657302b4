package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/roster/pkg/codec"
)

func TestRecordCodecOperation(t *testing.T) {
	m := New()

	m.RecordCodecOperation("encode", true, 10*time.Millisecond)
	m.RecordCodecOperation("encode", true, 5*time.Millisecond)
	m.RecordCodecOperation("decode", false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.codecOperationsTotal.WithLabelValues("encode", statusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.codecOperationsTotal.WithLabelValues("decode", statusError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.codecOperationsTotal.WithLabelValues("decode", statusSuccess)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.codecOperationDuration))
}

func TestRecordDecode(t *testing.T) {
	m := New()

	m.RecordDecode(&codec.Report{
		Records: 3,
		Diagnostics: []codec.Diagnostic{
			{Line: 1, Field: "registration_time"},
			{Line: 2, Field: "registration_time"},
			{Line: 2, Field: "id"},
		},
		Truncated: true,
	})
	m.RecordDecode(&codec.Report{Records: 2})
	m.RecordDecode(nil)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.recordsDecodedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.decodeDiagnosticsTotal.WithLabelValues("registration_time")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeDiagnosticsTotal.WithLabelValues("id")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeTruncationsTotal))
}

func TestSetStoreSize(t *testing.T) {
	m := New()

	m.SetStoreSize(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(m.storeRecords))

	m.SetStoreSize(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.storeRecords))
}

func TestRecordSnapshot(t *testing.T) {
	m := New()

	m.RecordSnapshot("put", true)
	m.RecordSnapshot("get", false)

	expected := `
# HELP roster_snapshots_total Total number of archive snapshot operations
# TYPE roster_snapshots_total counter
roster_snapshots_total{operation="get",status="error"} 1
roster_snapshots_total{operation="put",status="success"} 1
`
	err := testutil.CollectAndCompare(m.snapshotsTotal, strings.NewReader(expected))
	assert.NoError(t, err)
}

func TestIndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.SetStoreSize(7)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.storeRecords))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.SetStoreSize(3)
	m.RecordCodecOperation("decode", true, time.Millisecond)

	path := filepath.Join(t.TempDir(), "roster.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "roster_store_records 3")
	assert.Contains(t, string(data), `roster_codec_operations_total{operation="decode",status="success"} 1`)
}

func TestWriteTextfileError(t *testing.T) {
	m := New()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "roster.prom"))
	assert.ErrorContains(t, err, "failed to write metrics textfile")
}
