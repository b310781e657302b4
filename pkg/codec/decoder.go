package codec

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ssargent/roster/pkg/store"
)

const (
	reasonMissing     = "missing"
	reasonNotInteger  = "not an integer"
	reasonNotNumber   = "not a number"
	reasonNotUnsigned = "not an unsigned integer"
	reasonTrailing    = "unexpected trailing tokens"
)

// Diagnostic describes a field that fell back to a default during decode
type Diagnostic struct {
	Line   int    // 1-based line number (0 for DecodeLine)
	Field  string // Field name, e.g. "registration_time"
	Token  string // Offending token, empty when the field was missing
	Reason string
}

func (d Diagnostic) String() string {
	if d.Token == "" {
		return fmt.Sprintf("line %d: %s %s", d.Line, d.Field, d.Reason)
	}
	return fmt.Sprintf("line %d: %s %q %s", d.Line, d.Field, d.Token, d.Reason)
}

// Report summarises a decode
type Report struct {
	Records     int          // Records decoded
	BlankLines  int          // Blank lines skipped
	Diagnostics []Diagnostic // Per-field fallbacks
	Truncated   bool         // Decoding stopped at a malformed line
	StopLine    int          // Line that stopped decoding
	StopReason  string
}

// Decoder provides streaming access to the records of a roster file
type Decoder struct {
	codec  *RecordCodec
	reader *bufio.Reader
	line   int
	record store.Student
	report Report
	done   bool
	err    error
}

// NewDecoder creates a decoder reading from r
func (c *RecordCodec) NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		codec:  c,
		reader: bufio.NewReader(r),
	}
}

// Next advances to the next record. It returns false at end of input, at
// the first malformed line, or on a read error.
func (d *Decoder) Next() bool {
	for !d.done {
		raw, err := d.reader.ReadString('\n')
		if err != nil {
			d.done = true
			if err != io.EOF {
				d.err = fmt.Errorf("read line %d: %w", d.line+1, err)
				return false
			}
			if raw == "" {
				return false
			}
		}
		d.line++

		line := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(line) == "" {
			d.report.BlankLines++
			continue
		}

		student, diags, perr := d.codec.decodeLine(d.line, line)
		for _, diag := range diags {
			d.codec.logger.Warn("record field defaulted",
				slog.Int("line", diag.Line),
				slog.String("field", diag.Field),
				slog.String("token", diag.Token),
				slog.String("reason", diag.Reason))
		}
		d.report.Diagnostics = append(d.report.Diagnostics, diags...)

		if perr != nil {
			d.done = true
			d.report.Truncated = true
			d.report.StopLine = d.line
			d.report.StopReason = perr.Error()
			d.codec.logger.Warn("decoding stopped at malformed record",
				slog.Int("line", d.line),
				slog.String("error", perr.Error()))
			return false
		}

		d.record = student
		d.report.Records++
		return true
	}
	return false
}

// Record returns the record decoded by the last successful Next
func (d *Decoder) Record() store.Student {
	return d.record
}

// Line returns the line number of the last line read
func (d *Decoder) Line() int {
	return d.line
}

// Err returns the read error that ended decoding, if any. A malformed
// line is not an error.
func (d *Decoder) Err() error {
	return d.err
}

// Report returns a copy of the decode summary so far
func (d *Decoder) Report() *Report {
	r := d.report
	r.Diagnostics = append([]Diagnostic(nil), d.report.Diagnostics...)
	return &r
}
