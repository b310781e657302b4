// Package codec provides record serialization and deserialization for roster files.
//
// The codec package implements a line-oriented text format for persisting a
// store.RecordStore. It is the only place that knows how a student record
// looks on disk.
//
// # Record Format
//
// Each record is one newline-terminated line of space-separated fields:
//
//	<name> <age> <gender> <score> <id> <registration_time>[ <scholarship> <attendance>]
//
// Fields:
//   - name: the student name, at most 49 characters
//   - age: decimal integer
//   - gender: ordinal, 0 (male) or 1 (female)
//   - score: decimal with two fractional digits (%.2f)
//   - id: a decimal integer for integer identifiers, otherwise the text identifier
//   - registration_time: Unix seconds as a decimal integer
//   - scholarship: decimal with two fractional digits (extended schema only)
//   - attendance: unsigned decimal integer (extended schema only)
//
// There is no header and no record count. The caller chooses the Schema;
// base and extended files are not interchangeable.
//
// # Quoting
//
// A name that is empty, contains whitespace or starts with a double quote is
// written as a Go quoted string. A text identifier is quoted under the same
// rules and additionally when it would otherwise read back as an integer, so
// the identifier kind always survives a round trip:
//
//	Alice 20 0 88.50 1001 1700000000
//	"Mary Ann" 21 1 91.00 "0042" 1700000500
//	Bob 22 1 59.99 S42 0
//
// # Decoding
//
// Decoding reads one line at a time. The leading prefix (name, age, gender,
// score) must be complete and well formed; the first line where it is not
// ends decoding and that line and everything after it are discarded. Earlier
// records are kept. Blank lines are skipped.
//
// Fields after the prefix degrade one at a time: a missing or unparseable
// registration time becomes 0, missing extended fields become zero, and a
// missing identifier becomes the empty text identifier. Each such fallback is
// recorded as a Diagnostic in the Report and logged at warn level, and never
// stops the decode.
//
// # Usage
//
//	c := codec.NewRecordCodec(codec.SchemaBase)
//
//	if err := c.WriteFile("students.txt", rs); err != nil {
//	    return err
//	}
//
//	loaded, report, err := c.ReadFile("students.txt", store.Config{})
//	if errors.Is(err, codec.ErrNoFile) {
//	    // nothing saved yet
//	}
//
// # Thread Safety
//
// RecordCodec instances are immutable and safe for concurrent use. A Decoder
// is not.
package codec
