package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/ssargent/roster/pkg/store"
)

// Errors
var (
	// ErrNoFile is returned when the record file is missing or cannot be opened.
	// An existing empty file is not an error.
	ErrNoFile = errors.New("record file not found")
	// ErrMalformedRecord marks a line whose leading prefix is incomplete or invalid.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnencodable is returned when a record holds a value the decoder
	// could not read back. Nothing is written in that case.
	ErrUnencodable = errors.New("record cannot be encoded")
)

// CheckRecord reports whether s survives an encode and decode under the
// codec's schema: gender must be 0 or 1 and the floats finite.
func (c *RecordCodec) CheckRecord(s store.Student) error {
	if !s.Gender.Valid() {
		return fmt.Errorf("%w: gender %d is not 0 or 1", ErrUnencodable, int(s.Gender))
	}
	if !isFinite(s.Score) {
		return fmt.Errorf("%w: score %v is not finite", ErrUnencodable, s.Score)
	}
	if c.schema == SchemaExtended && !isFinite(s.Scholarship) {
		return fmt.Errorf("%w: scholarship %v is not finite", ErrUnencodable, s.Scholarship)
	}
	return nil
}

// Check runs CheckRecord over every record in rs
func (c *RecordCodec) Check(rs *store.RecordStore) error {
	if rs == nil {
		return nil
	}
	for i, s := range rs.All() {
		if err := c.CheckRecord(s); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RecordCodec handles serialization and deserialization of student records
type RecordCodec struct {
	schema Schema
	logger *slog.Logger
}

// Option configures a RecordCodec
type Option func(*RecordCodec)

// WithLogger sets the logger used for per-field decode diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *RecordCodec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRecordCodec creates a new record codec for the given schema
func NewRecordCodec(schema Schema, opts ...Option) *RecordCodec {
	c := &RecordCodec{
		schema: schema,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schema returns the schema this codec reads and writes
func (c *RecordCodec) Schema() Schema {
	return c.schema
}

// AppendRecord appends the encoded line for s, including the trailing
// newline, to dst. It does not call CheckRecord.
func (c *RecordCodec) AppendRecord(dst []byte, s store.Student) []byte {
	dst = appendText(dst, store.NormalizeName(s.Name), false)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(s.Age), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(s.Gender), 10)
	dst = append(dst, ' ')
	dst = strconv.AppendFloat(dst, s.Score, 'f', 2, 64)
	dst = append(dst, ' ')

	switch s.ID.Kind {
	case store.IDInteger:
		dst = strconv.AppendInt(dst, s.ID.Int, 10)
	default:
		dst = appendText(dst, s.ID.Text, true)
	}

	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, s.RegistrationTime, 10)

	if c.schema == SchemaExtended {
		dst = append(dst, ' ')
		dst = strconv.AppendFloat(dst, s.Scholarship, 'f', 2, 64)
		dst = append(dst, ' ')
		dst = strconv.AppendUint(dst, uint64(s.Attendance), 10)
	}

	return append(dst, '\n')
}

// EncodeRecord returns the encoded line for a single student
func (c *RecordCodec) EncodeRecord(s store.Student) []byte {
	return c.AppendRecord(nil, s)
}

// Encode writes one line per record in store order. Every record is
// checked first; if any fails CheckRecord nothing is written.
func (c *RecordCodec) Encode(w io.Writer, rs *store.RecordStore) error {
	if err := c.Check(rs); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var buf []byte

	if rs != nil {
		for i, s := range rs.All() {
			buf = c.AppendRecord(buf[:0], s)
			if _, err := bw.Write(buf); err != nil {
				return fmt.Errorf("write record %d: %w", i, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}

// Decode reads records from r and appends them to dst. Decoding stops
// without error at the first line with a malformed prefix; the report says
// where. An error is returned only for read failures or when dst refuses a
// record, in which case dst keeps what was appended so far.
func (c *RecordCodec) Decode(r io.Reader, dst *store.RecordStore) (*Report, error) {
	d := c.NewDecoder(r)
	for d.Next() {
		if err := dst.Append(d.Record()); err != nil {
			return d.Report(), fmt.Errorf("append record from line %d: %w", d.Line(), err)
		}
	}
	return d.Report(), d.Err()
}

// DecodeLine decodes a single line without a trailing newline
func (c *RecordCodec) DecodeLine(line string) (store.Student, []Diagnostic, error) {
	return c.decodeLine(0, line)
}

func (c *RecordCodec) decodeLine(lineNo int, line string) (store.Student, []Diagnostic, error) {
	tz := newTokenizer(line)

	var prefix [4]token
	for i := range prefix {
		tok, ok := tz.Next()
		if !ok {
			return store.Student{}, nil, fmt.Errorf("%w: expected 4 leading fields, found %d", ErrMalformedRecord, i)
		}
		prefix[i] = tok
	}

	age, ok := prefix[1].asInt()
	if !ok {
		return store.Student{}, nil, fmt.Errorf("%w: age %q is not an integer", ErrMalformedRecord, prefix[1].raw)
	}
	gender, ok := prefix[2].asInt()
	if !ok || !store.Gender(gender).Valid() {
		return store.Student{}, nil, fmt.Errorf("%w: gender %q is not 0 or 1", ErrMalformedRecord, prefix[2].raw)
	}
	score, ok := prefix[3].asFloat()
	if !ok {
		return store.Student{}, nil, fmt.Errorf("%w: score %q is not a number", ErrMalformedRecord, prefix[3].raw)
	}

	s := store.Student{
		Name:   store.NormalizeName(prefix[0].text),
		Age:    age,
		Gender: store.Gender(gender),
		Score:  score,
	}

	var diags []Diagnostic
	fallback := func(field string, tok token, present bool, reason string) {
		d := Diagnostic{Line: lineNo, Field: field, Reason: reason}
		if present {
			d.Token = tok.raw
		}
		diags = append(diags, d)
	}

	// The identifier is classified before it is consumed: an integer token
	// is an integer id, anything else is read once as text.
	if tok, ok := tz.Peek(); !ok {
		s.ID = store.TextID("")
		fallback("id", tok, false, reasonMissing)
	} else if v, isInt := tok.asInt64(); isInt {
		tz.Next()
		s.ID = store.IntID(v)
	} else {
		tz.Next()
		s.ID = store.TextID(tok.text)
	}

	if tok, ok := tz.Next(); !ok {
		fallback("registration_time", tok, false, reasonMissing)
	} else if v, ok := tok.asInt64(); ok {
		s.RegistrationTime = v
	} else {
		fallback("registration_time", tok, true, reasonNotInteger)
	}

	if c.schema == SchemaExtended {
		if tok, ok := tz.Next(); !ok {
			fallback("scholarship", tok, false, reasonMissing)
		} else if v, ok := tok.asFloat(); ok {
			s.Scholarship = v
		} else {
			fallback("scholarship", tok, true, reasonNotNumber)
		}

		if tok, ok := tz.Next(); !ok {
			fallback("attendance", tok, false, reasonMissing)
		} else if v, ok := tok.asUint32(); ok {
			s.Attendance = v
		} else {
			fallback("attendance", tok, true, reasonNotUnsigned)
		}
	}

	if n := tz.Rest(); n > 0 {
		diags = append(diags, Diagnostic{
			Line:   lineNo,
			Field:  "trailing",
			Token:  strconv.Itoa(n),
			Reason: reasonTrailing,
		})
	}

	return s, diags, nil
}

// appendText writes s bare when it reads back as the same single token,
// otherwise as a quoted string. Identifiers are also quoted when they
// would read back as integers.
func appendText(dst []byte, s string, isID bool) []byte {
	if needsQuote(s, isID) {
		return strconv.AppendQuote(dst, s)
	}
	return append(dst, s...)
}

func needsQuote(s string, isID bool) bool {
	if s == "" || s[0] == '"' || strings.ContainsFunc(s, unicode.IsSpace) {
		return true
	}
	if isID {
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return true
		}
	}
	return false
}
