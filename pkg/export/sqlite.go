// Package export writes student records into a SQLite database so they can be
// queried with ordinary SQL tools.
package export

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/ssargent/roster/pkg/store"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS students (
		row_id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name              TEXT    NOT NULL,
		age               INTEGER NOT NULL,
		gender            INTEGER NOT NULL,
		score             REAL    NOT NULL,
		id_kind           TEXT    NOT NULL,
		student_id        TEXT    NOT NULL,
		registration_time INTEGER NOT NULL,
		scholarship       REAL    NOT NULL,
		attendance        INTEGER NOT NULL,
		status            TEXT    NOT NULL
	)
`

const insertStudent = `
	INSERT INTO students
		(name, age, gender, score, id_kind, student_id, registration_time, scholarship, attendance, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SQLiteExporter writes snapshots of the store into a students table
type SQLiteExporter struct {
	db *sql.DB
}

// NewSQLiteExporter opens the database at path and creates the table
func NewSQLiteExporter(path string) (*SQLiteExporter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("export: open db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("export: create table: %w", err)
	}

	return &SQLiteExporter{db: db}, nil
}

// Export replaces the table contents with students in one transaction and
// returns the number of rows written.
func (e *SQLiteExporter) Export(ctx context.Context, students []store.Student) (int64, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("export: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return 0, fmt.Errorf("export: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertStudent)
	if err != nil {
		return 0, fmt.Errorf("export: prepare: %w", err)
	}
	defer stmt.Close()

	var written int64
	for i := range students {
		s := &students[i]
		_, err := stmt.ExecContext(ctx,
			s.Name, s.Age, int(s.Gender), s.Score,
			s.ID.Kind.String(), s.ID.String(),
			s.RegistrationTime, s.Scholarship, s.Attendance,
			s.Status.String(),
		)
		if err != nil {
			return written, fmt.Errorf("export: insert row %d: %w", i, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("export: commit: %w", err)
	}
	return written, nil
}

// Count returns the number of exported rows
func (e *SQLiteExporter) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("export: count: %w", err)
	}
	return n, nil
}

// Close closes the database
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}
