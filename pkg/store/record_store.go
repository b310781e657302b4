package store

import "unicode/utf8"

// RecordStore is an ordered, growable collection of students. Insertion
// order is preserved and duplicates are allowed. It is not safe for
// concurrent use.
type RecordStore struct {
	records []Student
	config  Config
}

// NewRecordStore creates an empty store. No memory is allocated until the
// first append.
func NewRecordStore(config Config) *RecordStore {
	if config.InitialCapacity <= 0 {
		config.InitialCapacity = DefaultInitialCapacity
	}
	return &RecordStore{config: config}
}

// Append adds a student to the end of the store, doubling the backing
// buffer when it is full. The name is truncated to MaxNameLength.
func (s *RecordStore) Append(student Student) error {
	if s.config.MaxRecords > 0 && len(s.records) >= s.config.MaxRecords {
		return ErrCapacityExceeded
	}
	if len(s.records) == cap(s.records) {
		s.grow()
	}

	student.Name = NormalizeName(student.Name)
	s.records = append(s.records, student)
	return nil
}

// grow doubles capacity, clamped to MaxRecords when one is configured
func (s *RecordStore) grow() {
	newCap := cap(s.records) * 2
	if newCap == 0 {
		newCap = s.config.InitialCapacity
	}
	if s.config.MaxRecords > 0 && newCap > s.config.MaxRecords {
		newCap = s.config.MaxRecords
	}

	buf := make([]Student, len(s.records), newCap)
	copy(buf, s.records)
	s.records = buf
}

// Len returns the number of records held
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Cap returns the capacity of the backing buffer. Cap() >= Len() always.
func (s *RecordStore) Cap() int {
	return cap(s.records)
}

// At returns the record at index i
func (s *RecordStore) At(i int) (Student, bool) {
	if i < 0 || i >= len(s.records) {
		return Student{}, false
	}
	return s.records[i], true
}

// All returns a copy of the records in insertion order
func (s *RecordStore) All() []Student {
	out := make([]Student, len(s.records))
	copy(out, s.records)
	return out
}

// Apply calls fn for each record in order, allowing in-place updates of
// derived fields such as Status.
func (s *RecordStore) Apply(fn func(*Student)) {
	for i := range s.records {
		fn(&s.records[i])
	}
}

// Clear releases the backing buffer
func (s *RecordStore) Clear() {
	s.records = nil
}

// NormalizeName truncates name to MaxNameLength characters.
func NormalizeName(name string) string {
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	n := 0
	for i := range name {
		if n == MaxNameLength {
			return name[:i]
		}
		n++
	}
	return name
}
