package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/ssargent/roster/pkg/archive"
	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/store"
)

const noStudentData = "no student data: file missing or empty"

// writeStudents displays students in the requested format
func writeStudents(w io.Writer, format string, schema codec.Schema, students []store.Student) error {
	if format == "json" {
		return writeJSON(w, students)
	}
	return writeStudentsTable(w, schema, students)
}

// writeStudentsTable displays students in table format
func writeStudentsTable(w io.Writer, schema codec.Schema, students []store.Student) error {
	if len(students) == 0 {
		fmt.Fprintln(w, "No students found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	header := "#\tID\tNAME\tAGE\tGENDER\tSCORE\tREGISTERED\tSTATUS"
	if schema == codec.SchemaExtended {
		header += "\tSCHOLARSHIP\tATTENDANCE"
	}
	fmt.Fprintln(tw, header)

	for i, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%.2f\t%s\t%s",
			i+1,
			formatID(s.ID),
			s.Name,
			s.Age,
			s.Gender,
			s.Score,
			formatUnix(s.RegistrationTime),
			s.Status)
		if schema == codec.SchemaExtended {
			fmt.Fprintf(tw, "\t%.2f\t%d", s.Scholarship, s.Attendance)
		}
		fmt.Fprintln(tw)
	}

	return nil
}

// writeSnapshots displays archive entries in the requested format
func writeSnapshots(w io.Writer, format string, entries []archive.Entry) error {
	if format == "json" {
		return writeJSON(w, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No snapshots found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tCREATED\tBYTES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Size)
	}
	return nil
}

// writeReportWarnings prints what a decode skipped or defaulted
func writeReportWarnings(w io.Writer, report *codec.Report) {
	if report == nil {
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(w, "warning: %s\n", d)
	}
	if report.Truncated {
		fmt.Fprintf(w, "warning: stopped reading at line %d: %s\n", report.StopLine, report.StopReason)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// formatID marks text ids that would otherwise read as numbers
func formatID(id store.StudentID) string {
	switch id.Kind {
	case store.IDUnset:
		return "-"
	case store.IDText:
		if _, err := strconv.ParseInt(id.Text, 10, 64); err == nil || id.Text == "" {
			return strconv.Quote(id.Text)
		}
	}
	return id.String()
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}
