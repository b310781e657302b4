package query

import (
	"fmt"

	"github.com/ssargent/roster/pkg/store"
)

// Engine evaluates field queries and statistics over a read-only snapshot
// of a roster.
type Engine struct {
	extractor FieldExtractor
}

// NewEngine creates a query engine. A nil extractor uses StudentFieldExtractor.
func NewEngine(extractor FieldExtractor) *Engine {
	if extractor == nil {
		extractor = StudentFieldExtractor{}
	}
	return &Engine{extractor: extractor}
}

// Filter returns the students matching q, in order
func (e *Engine) Filter(students []store.Student, q FieldQuery) ([]store.Student, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	results := make([]store.Student, 0)
	for _, s := range students {
		v, err := e.extractor.Extract(s, q.Field)
		if err != nil {
			return nil, fmt.Errorf("invalid query: %w", err)
		}
		if q.Match(v) {
			results = append(results, s)
		}
	}
	return results, nil
}

// Count returns how many students match q
func (e *Engine) Count(students []store.Student, q FieldQuery) (int, error) {
	matched, err := e.Filter(students, q)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// Average returns the mean of field over students. ok is false when there
// are no students.
func (e *Engine) Average(students []store.Student, field string) (avg float64, ok bool, err error) {
	if len(students) == 0 {
		return 0, false, nil
	}

	var sum float64
	for _, s := range students {
		v, err := e.extractor.Extract(s, field)
		if err != nil {
			return 0, false, err
		}
		sum += v
	}
	return sum / float64(len(students)), true, nil
}

// AverageScore returns the mean score; ok is false for an empty roster.
func AverageScore(students []store.Student) (float64, bool) {
	avg, ok, _ := NewEngine(nil).Average(students, FieldScore)
	return avg, ok
}

// CountAttendanceAbove counts students whose attendance is strictly greater
// than threshold.
func CountAttendanceAbove(students []store.Student, threshold uint32) int {
	n, _ := NewEngine(nil).Count(students, FieldQuery{
		Field:    FieldAttendance,
		Operator: ">",
		Value:    float64(threshold),
	})
	return n
}

// TagPassFail sets Status on every record: pass when the score is at least
// passMark, fail otherwise. The score itself is left untouched.
func TagPassFail(rs *store.RecordStore, passMark float64) (passed, failed int) {
	rs.Apply(func(s *store.Student) {
		if s.Score >= passMark {
			s.Status = store.StatusPass
			passed++
		} else {
			s.Status = store.StatusFail
			failed++
		}
	})
	return passed, failed
}
