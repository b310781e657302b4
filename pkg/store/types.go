package store

import (
	"encoding/json"
	"strconv"
)

// MaxNameLength is the number of characters kept from a student name.
const MaxNameLength = 49

// Gender is persisted as its ordinal.
type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "gender(" + strconv.Itoa(int(g)) + ")"
	}
}

// Valid reports whether g is one of the known ordinals.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// IDKind tags which representation a StudentID carries
type IDKind uint8

const (
	IDUnset IDKind = iota
	IDInteger
	IDText
)

func (k IDKind) String() string {
	switch k {
	case IDInteger:
		return "integer"
	case IDText:
		return "text"
	default:
		return "unset"
	}
}

// StudentID is either an integer or a textual identifier. Kind is the
// discriminant; only the field matching Kind is meaningful.
type StudentID struct {
	Kind IDKind
	Int  int64
	Text string
}

// IntID returns an integer identifier. Zero is a valid integer id.
func IntID(v int64) StudentID {
	return StudentID{Kind: IDInteger, Int: v}
}

// TextID returns a textual identifier
func TextID(s string) StudentID {
	return StudentID{Kind: IDText, Text: s}
}

// IsSet reports whether the identifier carries a value
func (id StudentID) IsSet() bool {
	return id.Kind != IDUnset
}

func (id StudentID) String() string {
	switch id.Kind {
	case IDInteger:
		return strconv.FormatInt(id.Int, 10)
	case IDText:
		return id.Text
	default:
		return ""
	}
}

// MarshalJSON writes integer ids as numbers and text ids as strings.
func (id StudentID) MarshalJSON() ([]byte, error) {
	switch id.Kind {
	case IDInteger:
		return []byte(strconv.FormatInt(id.Int, 10)), nil
	case IDText:
		return json.Marshal(id.Text)
	default:
		return []byte("null"), nil
	}
}

// Status is the pass/fail tag computed from a pass mark. It lives beside
// the score and is not persisted by the codec.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusPass
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalJSON writes the status name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Student is one record in the roster. Scholarship and Attendance are only
// persisted by the extended schema.
type Student struct {
	Name             string    `json:"name" validate:"required,max=49"`
	Age              int       `json:"age" validate:"min=1,max=100"`
	Gender           Gender    `json:"gender" validate:"oneof=0 1"`
	Score            float64   `json:"score" validate:"finite,gte=0"`
	ID               StudentID `json:"id"`
	RegistrationTime int64     `json:"registration_time" validate:"gte=0"`
	Scholarship      float64   `json:"scholarship" validate:"finite,gte=0"`
	Attendance       uint32    `json:"attendance"`
	Status           Status    `json:"status"`
}

// Config holds configuration for a RecordStore
type Config struct {
	InitialCapacity int // Capacity allocated on first append (0 = DefaultInitialCapacity)
	MaxRecords      int // Upper bound on records held (0 = unbounded)
}

// DefaultInitialCapacity matches the ten-slot buffer the reader starts with.
const DefaultInitialCapacity = 10

// Errors
var (
	ErrCapacityExceeded = &StoreError{"record store capacity exceeded"}
	ErrInvalidStudent   = &StoreError{"invalid student"}
)

// StoreError represents a record store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
