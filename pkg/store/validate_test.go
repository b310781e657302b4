package store

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validStudent() Student {
	return Student{
		Name:             "Alice",
		Age:              20,
		Gender:           GenderFemale,
		Score:            88.5,
		ID:               IntID(1001),
		RegistrationTime: 1700000000,
	}
}

func TestStudent_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Student)
		wantErr string
	}{
		{"valid", func(*Student) {}, ""},
		{"missing name", func(s *Student) { s.Name = "" }, "field Name is required"},
		{"name too long", func(s *Student) { s.Name = strings.Repeat("n", 50) }, "field Name must be at most 49"},
		{"age zero", func(s *Student) { s.Age = 0 }, "field Age must be at least 1"},
		{"age too high", func(s *Student) { s.Age = 101 }, "field Age must be at most 100"},
		{"bad gender", func(s *Student) { s.Gender = 2 }, "field Gender must be one of [0 1]"},
		{"negative score", func(s *Student) { s.Score = -1 }, "field Score must be at least 0"},
		{"infinite score", func(s *Student) { s.Score = math.Inf(1) }, "field Score must be a finite number"},
		{"NaN score", func(s *Student) { s.Score = math.NaN() }, "field Score must be a finite number"},
		{"infinite scholarship", func(s *Student) { s.Scholarship = math.Inf(1) }, "field Scholarship must be a finite number"},
		{"unset id", func(s *Student) { s.ID = StudentID{} }, "field ID is required"},
		{"zero integer id", func(s *Student) { s.ID = IntID(0) }, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validStudent()
			tc.mutate(&s)

			err := s.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidStudent)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidatePartial(t *testing.T) {
	s := Student{Age: 150}

	assert.Error(t, ValidatePartial(s, "Age"))
	assert.NoError(t, ValidatePartial(s, "Gender"))

	s.Score = math.Inf(1)
	assert.ErrorContains(t, ValidatePartial(s, "Score"), "finite")
}
