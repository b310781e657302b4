package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/query"
)

// exit is replaced in tests
var exit = os.Exit

const shellMenu = `
1. Add a student
2. Save students to file
3. Load students from file
4. Exit
5. Average score
6. Count attendance above threshold
7. Tag pass/fail
8. List students
Choose an option: `

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu for entering and saving records",
	Long: `Start an interactive menu for adding students, saving them to the data
file and loading them back. Records live in memory until saved; loading
replaces the in-memory records with the file contents.

Press Ctrl+C at any time to discard unsaved records and exit.

Example:
  roster shell --data-file ./students.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		out := cmd.OutOrStdout()
		a.session.WatchInterrupt(ctx, func(os.Signal) {
			fmt.Fprintln(out, "\nInterrupt received, exiting safely...")
			exit(130)
		})

		return runShell(a, newPrompter(cmd.InOrStdin(), out))
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// runShell loops over the menu until the user exits or input ends
func runShell(a *app, p *prompter) error {
	entered := 0
	for {
		choice, err := p.ask(shellMenu)
		if errors.Is(err, errInputClosed) {
			fmt.Fprintln(p.out, "\nExiting.")
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			student, err := p.readStudent(a.schema)
			if errors.Is(err, errInputClosed) {
				fmt.Fprintln(p.out, "\nExiting.")
				return nil
			}
			if err != nil {
				return err
			}
			n, err := a.session.Add(student)
			if err != nil {
				fmt.Fprintf(p.out, "Could not add student: %v\n", err)
				continue
			}
			entered++
			fmt.Fprintf(p.out, "Student added. Entry %d this session, %d records in memory.\n", entered, n)

		case "2":
			if err := a.session.Save(); err != nil {
				fmt.Fprintf(p.out, "Could not save: %v\n", err)
				continue
			}
			fmt.Fprintf(p.out, "Saved %d records to %s\n", a.session.Len(), a.session.Path())

		case "3":
			report, err := a.session.Load()
			if errors.Is(err, codec.ErrNoFile) {
				fmt.Fprintln(p.out, noStudentData)
				continue
			}
			if err != nil {
				fmt.Fprintf(p.out, "Could not load: %v\n", err)
				continue
			}
			writeReportWarnings(p.out, report)
			if report.Records == 0 {
				fmt.Fprintln(p.out, noStudentData)
				continue
			}
			fmt.Fprintf(p.out, "Loaded %d records from %s\n", report.Records, a.session.Path())

		case "4":
			fmt.Fprintln(p.out, "Exiting.")
			return nil

		case "5":
			avg, ok := query.AverageScore(a.session.Records())
			if !ok {
				fmt.Fprintln(p.out, "No students in memory.")
				continue
			}
			fmt.Fprintf(p.out, "Average score: %.2f\n", avg)

		case "6":
			threshold := a.cfg.Stats.AttendanceThreshold
			n := query.CountAttendanceAbove(a.session.Records(), threshold)
			fmt.Fprintf(p.out, "Students with attendance above %d: %d\n", threshold, n)

		case "7":
			passed, failed, err := a.session.TagPassFail(a.cfg.Stats.PassMark)
			if err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Pass mark %.2f: %d passed, %d failed\n", a.cfg.Stats.PassMark, passed, failed)

		case "8":
			if err := writeStudentsTable(p.out, a.schema, a.session.Records()); err != nil {
				return err
			}

		default:
			fmt.Fprintln(p.out, "Invalid choice, please try again.")
		}
	}
}
