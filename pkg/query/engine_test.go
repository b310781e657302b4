package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/roster/pkg/store"
)

func sampleStudents() []store.Student {
	return []store.Student{
		{Name: "Alice", Age: 20, Score: 88.5, Attendance: 30, Scholarship: 100},
		{Name: "Bob", Age: 22, Score: 59.99, Attendance: 12},
		{Name: "Carol", Age: 19, Score: 60, Attendance: 25, Scholarship: 50},
		{Name: "Dan", Age: 25, Score: 41.51, Attendance: 25},
	}
}

func TestFieldQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   FieldQuery
		wantErr bool
	}{
		{"valid equality query", FieldQuery{Field: "age", Operator: "=", Value: 25}, false},
		{"valid range query", FieldQuery{Field: "age", Operator: ">", Value: 18}, false},
		{"valid inequality query", FieldQuery{Field: "score", Operator: "!=", Value: 0}, false},
		{"empty field", FieldQuery{Field: "", Operator: "=", Value: 25}, true},
		{"empty operator", FieldQuery{Field: "age", Operator: "", Value: 25}, true},
		{"invalid operator", FieldQuery{Field: "age", Operator: "~", Value: 25}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngine_Filter(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name  string
		query FieldQuery
		want  []string
	}{
		{"age over 20", FieldQuery{Field: FieldAge, Operator: ">", Value: 20}, []string{"Bob", "Dan"}},
		{"score at least 60", FieldQuery{Field: FieldScore, Operator: ">=", Value: 60}, []string{"Alice", "Carol"}},
		{"attendance exactly 25", FieldQuery{Field: FieldAttendance, Operator: "=", Value: 25}, []string{"Carol", "Dan"}},
		{"no scholarship", FieldQuery{Field: FieldScholarship, Operator: "<=", Value: 0}, []string{"Bob", "Dan"}},
		{"nobody", FieldQuery{Field: FieldAge, Operator: "<", Value: 1}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Filter(sampleStudents(), tt.query)
			require.NoError(t, err)

			names := make([]string, 0, len(got))
			for _, s := range got {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestEngine_UnknownField(t *testing.T) {
	_, err := NewEngine(nil).Count(sampleStudents(), FieldQuery{Field: "name", Operator: "=", Value: 1})
	assert.ErrorContains(t, err, "not a numeric student field")
}

func TestAverageScore(t *testing.T) {
	avg, ok := AverageScore(sampleStudents())
	assert.True(t, ok)
	assert.InDelta(t, 62.5, avg, 1e-9)

	_, ok = AverageScore(nil)
	assert.False(t, ok)
}

func TestCountAttendanceAbove(t *testing.T) {
	students := sampleStudents()

	assert.Equal(t, 3, CountAttendanceAbove(students, 20))
	assert.Equal(t, 1, CountAttendanceAbove(students, 25), "threshold is exclusive")
	assert.Equal(t, 0, CountAttendanceAbove(nil, 0))
}

func TestTagPassFail(t *testing.T) {
	rs := store.NewRecordStore(store.Config{})
	for _, s := range sampleStudents() {
		require.NoError(t, rs.Append(s))
	}

	passed, failed := TagPassFail(rs, 60)

	assert.Equal(t, 2, passed)
	assert.Equal(t, 2, failed)

	want := map[string]store.Status{
		"Alice": store.StatusPass,
		"Bob":   store.StatusFail,
		"Carol": store.StatusPass,
		"Dan":   store.StatusFail,
	}
	for i, s := range rs.All() {
		assert.Equal(t, want[s.Name], s.Status, s.Name)
		assert.Equal(t, sampleStudents()[i].Score, s.Score, "score is unchanged")
	}
}

func TestParseFieldQuery(t *testing.T) {
	tests := []struct {
		expr    string
		want    FieldQuery
		wantErr string
	}{
		{"score >= 60", FieldQuery{Field: "score", Operator: ">=", Value: 60}, ""},
		{"age<21", FieldQuery{Field: "age", Operator: "<", Value: 21}, ""},
		{"  attendance != 0 ", FieldQuery{Field: "attendance", Operator: "!=", Value: 0}, ""},
		{"registration_time > 1700000000", FieldQuery{Field: "registration_time", Operator: ">", Value: 1700000000}, ""},
		{"score", FieldQuery{}, "want field, operator and value"},
		{">= 60", FieldQuery{}, "want field, operator and value"},
		{"score >= high", FieldQuery{}, "value is not a number"},
		{"score => 60", FieldQuery{}, "invalid operator"},
		{"name = 3", FieldQuery{}, "not a numeric student field"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseFieldQuery(tt.expr)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
