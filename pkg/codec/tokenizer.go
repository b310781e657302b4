package codec

import (
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// token is one field of a line. Quoted tokens have already been unquoted
// into text and never classify as numbers.
type token struct {
	raw    string
	text   string
	quoted bool
}

func (t token) asInt64() (int64, bool) {
	if t.quoted {
		return 0, false
	}
	v, err := strconv.ParseInt(t.raw, 10, 64)
	return v, err == nil
}

func (t token) asInt() (int, bool) {
	if t.quoted {
		return 0, false
	}
	v, err := strconv.ParseInt(t.raw, 10, strconv.IntSize)
	return int(v), err == nil
}

func (t token) asUint32() (uint32, bool) {
	if t.quoted {
		return 0, false
	}
	v, err := strconv.ParseUint(t.raw, 10, 32)
	return uint32(v), err == nil
}

func (t token) asFloat() (float64, bool) {
	if t.quoted {
		return 0, false
	}
	v, err := strconv.ParseFloat(t.raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// tokenizer splits a single line into tokens. Peek classifies the next
// token without consuming it, so a failed numeric read never has to rewind.
type tokenizer struct {
	line   string
	pos    int
	peeked *token
	next   int
}

func newTokenizer(line string) *tokenizer {
	return &tokenizer{line: line}
}

// Peek returns the next token without consuming it
func (t *tokenizer) Peek() (token, bool) {
	if t.peeked == nil {
		tok, end, ok := t.scan(t.pos)
		if !ok {
			return token{}, false
		}
		t.peeked = &tok
		t.next = end
	}
	return *t.peeked, true
}

// Next consumes and returns the next token
func (t *tokenizer) Next() (token, bool) {
	tok, ok := t.Peek()
	if !ok {
		return token{}, false
	}
	t.pos = t.next
	t.peeked = nil
	return tok, true
}

// Rest counts the tokens not yet consumed
func (t *tokenizer) Rest() int {
	n := 0
	pos := t.pos
	for {
		_, end, ok := t.scan(pos)
		if !ok {
			return n
		}
		n++
		pos = end
	}
}

func (t *tokenizer) scan(pos int) (token, int, bool) {
	for pos < len(t.line) {
		r, size := utf8.DecodeRuneInString(t.line[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	if pos >= len(t.line) {
		return token{}, pos, false
	}

	rest := t.line[pos:]
	if rest[0] == '"' {
		if prefix, err := strconv.QuotedPrefix(rest); err == nil {
			text, err := strconv.Unquote(prefix)
			if err == nil {
				return token{raw: prefix, text: text, quoted: true}, pos + len(prefix), true
			}
		}
	}

	end := pos
	for end < len(t.line) {
		r, size := utf8.DecodeRuneInString(t.line[end:])
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}
	raw := t.line[pos:end]
	return token{raw: raw, text: raw}, end, true
}
