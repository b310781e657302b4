package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ssargent/roster/pkg/store"
)

// Numeric fields a FieldQuery can address
const (
	FieldAge              = "age"
	FieldScore            = "score"
	FieldScholarship      = "scholarship"
	FieldAttendance       = "attendance"
	FieldRegistrationTime = "registration_time"
)

// FieldExtractor defines how to extract a numeric field from a student
type FieldExtractor interface {
	Extract(s store.Student, field string) (float64, error)
}

// StudentFieldExtractor reads the numeric fields of store.Student
type StudentFieldExtractor struct{}

// Extract implements FieldExtractor
func (e StudentFieldExtractor) Extract(s store.Student, field string) (float64, error) {
	switch field {
	case FieldAge:
		return float64(s.Age), nil
	case FieldScore:
		return s.Score, nil
	case FieldScholarship:
		return s.Scholarship, nil
	case FieldAttendance:
		return float64(s.Attendance), nil
	case FieldRegistrationTime:
		return float64(s.RegistrationTime), nil
	default:
		return 0, fmt.Errorf("field '%s' is not a numeric student field", field)
	}
}

// FieldQuery represents a single field-based query condition
type FieldQuery struct {
	Field    string  // Field name to query (e.g., "age", "attendance")
	Operator string  // Comparison operator: "=", "!=", ">", "<", ">=", "<="
	Value    float64 // Value to compare against
}

var validOps = map[string]bool{
	"=": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true,
}

// Validate checks if the query is properly formed
func (q FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if q.Operator == "" {
		return fmt.Errorf("operator cannot be empty")
	}
	if !validOps[q.Operator] {
		return fmt.Errorf("invalid operator: %s", q.Operator)
	}
	return nil
}

// Match reports whether v satisfies the query
func (q FieldQuery) Match(v float64) bool {
	switch q.Operator {
	case "=":
		return v == q.Value
	case "!=":
		return v != q.Value
	case ">":
		return v > q.Value
	case "<":
		return v < q.Value
	case ">=":
		return v >= q.Value
	case "<=":
		return v <= q.Value
	default:
		return false
	}
}

func (q FieldQuery) String() string {
	return fmt.Sprintf("%s %s %g", q.Field, q.Operator, q.Value)
}

// ParseFieldQuery parses "field op value", e.g. "score >= 60". Whitespace
// around the operator is optional.
func ParseFieldQuery(expr string) (FieldQuery, error) {
	expr = strings.TrimSpace(expr)
	i := strings.IndexAny(expr, "=!<>")
	if i <= 0 {
		return FieldQuery{}, fmt.Errorf("invalid query %q: want field, operator and value", expr)
	}

	j := i
	for j < len(expr) && strings.ContainsRune("=!<>", rune(expr[j])) {
		j++
	}

	q := FieldQuery{
		Field:    strings.TrimSpace(expr[:i]),
		Operator: expr[i:j],
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(expr[j:]), 64)
	if err != nil {
		return FieldQuery{}, fmt.Errorf("invalid query %q: value is not a number", expr)
	}
	q.Value = v

	if err := q.Validate(); err != nil {
		return FieldQuery{}, err
	}
	if _, err := (StudentFieldExtractor{}).Extract(store.Student{}, q.Field); err != nil {
		return FieldQuery{}, err
	}
	return q, nil
}
