package codec

import (
	"fmt"
	"strings"
)

// Schema selects which fields a line carries.
type Schema int

const (
	// SchemaBase writes name, age, gender, score, id and registration time.
	SchemaBase Schema = iota
	// SchemaExtended adds scholarship and attendance.
	SchemaExtended
)

func (s Schema) String() string {
	switch s {
	case SchemaBase:
		return "base"
	case SchemaExtended:
		return "extended"
	default:
		return fmt.Sprintf("schema(%d)", int(s))
	}
}

// FieldCount returns the number of fields per line
func (s Schema) FieldCount() int {
	if s == SchemaExtended {
		return 8
	}
	return 6
}

// ParseSchema parses "base" or "extended"
func ParseSchema(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "base", "":
		return SchemaBase, nil
	case "extended":
		return SchemaExtended, nil
	default:
		return SchemaBase, fmt.Errorf("unknown schema: %q", name)
	}
}
