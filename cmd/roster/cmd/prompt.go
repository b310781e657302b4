package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/store"
)

// errInputClosed is returned when input ends in the middle of a prompt
var errInputClosed = errors.New("input closed")

// prompter reads answers line by line
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
	now func() time.Time
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		in:  bufio.NewScanner(in),
		out: out,
		now: time.Now,
	}
}

// ask prints label and returns the trimmed answer
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// askUntil repeats the prompt until accept returns nil
func (p *prompter) askUntil(label string, accept func(string) error) error {
	for {
		answer, err := p.ask(label)
		if err != nil {
			return err
		}
		if err := accept(answer); err != nil {
			fmt.Fprintf(p.out, "Invalid input: %v. Please try again.\n", err)
			continue
		}
		return nil
	}
}

type promptStep struct {
	label  string
	accept func(string) error
}

// readStudent prompts for every field of schema
func (p *prompter) readStudent(schema codec.Schema) (store.Student, error) {
	var s store.Student

	steps := []promptStep{
		{"Name: ", func(v string) error {
			s.Name = store.NormalizeName(v)
			return store.ValidatePartial(s, "Name")
		}},
		{"Age (1-100): ", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New("age must be a whole number")
			}
			s.Age = n
			return store.ValidatePartial(s, "Age")
		}},
		{"Gender (0 = male, 1 = female): ", func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New("gender must be 0 or 1")
			}
			s.Gender = store.Gender(n)
			return store.ValidatePartial(s, "Gender")
		}},
		{"Score: ", func(v string) error {
			f, err := parseFinite(v)
			if err != nil {
				return errors.New("score must be a number")
			}
			s.Score = f
			return store.ValidatePartial(s, "Score")
		}},
		{"Student ID (integer, or text): ", func(v string) error {
			id, err := parseStudentID(v)
			if err != nil {
				return err
			}
			s.ID = id
			return nil
		}},
		{"Registration time (Unix seconds, blank for now): ", func(v string) error {
			if v == "" {
				s.RegistrationTime = p.now().Unix()
				return nil
			}
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return errors.New("registration time must be a whole number")
			}
			s.RegistrationTime = ts
			return store.ValidatePartial(s, "RegistrationTime")
		}},
	}

	if schema == codec.SchemaExtended {
		steps = append(steps,
			promptStep{"Scholarship (blank for 0): ", func(v string) error {
				if v == "" {
					s.Scholarship = 0
					return nil
				}
				f, err := parseFinite(v)
				if err != nil {
					return errors.New("scholarship must be a number")
				}
				s.Scholarship = f
				return store.ValidatePartial(s, "Scholarship")
			}},
			promptStep{"Attendance (blank for 0): ", func(v string) error {
				if v == "" {
					s.Attendance = 0
					return nil
				}
				n, err := strconv.ParseUint(v, 10, 32)
				if err != nil {
					return errors.New("attendance must be a whole number")
				}
				s.Attendance = uint32(n)
				return nil
			}},
		)
	}

	for _, step := range steps {
		if err := p.askUntil(step.label, step.accept); err != nil {
			return store.Student{}, err
		}
	}
	return s, nil
}

func parseFinite(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not finite", v)
	}
	return f, nil
}

// parseStudentID reads an integer id when the answer is a whole number and a
// text id otherwise. A leading '#' forces text, so "#42" stores "42".
func parseStudentID(v string) (store.StudentID, error) {
	if v == "" {
		return store.StudentID{}, errors.New("student id is required")
	}
	if strings.HasPrefix(v, "#") {
		return store.TextID(strings.TrimPrefix(v, "#")), nil
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return store.IntID(n), nil
	}
	return store.TextID(v), nil
}
