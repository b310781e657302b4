package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/roster/pkg/query"
)

// statsResult is the json form of the stats command
type statsResult struct {
	Records             int      `json:"records"`
	AverageScore        *float64 `json:"average_score"`
	AttendanceThreshold uint32   `json:"attendance_threshold"`
	AttendanceAbove     int      `json:"attendance_above"`
	PassMark            float64  `json:"pass_mark"`
	Passed              int      `json:"passed"`
	Failed              int      `json:"failed"`
	Where               string   `json:"where,omitempty"`
	Matching            *int     `json:"matching,omitempty"`
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise scores and attendance",
	Long: `Print the average score, the number of students whose attendance is above
the threshold and the pass/fail split at the pass mark. Thresholds default to
the stats section of the config.

Examples:
  roster stats
  roster stats --pass-mark 50 --attendance-threshold 10
  roster stats --where "age < 21"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		passMark := a.cfg.Stats.PassMark
		if cmd.Flags().Changed("pass-mark") {
			passMark, _ = cmd.Flags().GetFloat64("pass-mark")
		}
		threshold := a.cfg.Stats.AttendanceThreshold
		if cmd.Flags().Changed("attendance-threshold") {
			threshold, _ = cmd.Flags().GetUint32("attendance-threshold")
		}

		var where *query.FieldQuery
		if expr, _ := cmd.Flags().GetString("where"); expr != "" {
			q, err := query.ParseFieldQuery(expr)
			if err != nil {
				return err
			}
			where = &q
		}

		if err := loadRecords(cmd, a); err != nil {
			return err
		}

		passed, failed, err := a.session.TagPassFail(passMark)
		if err != nil {
			return err
		}
		students := a.session.Records()

		result := statsResult{
			Records:             len(students),
			AttendanceThreshold: threshold,
			AttendanceAbove:     query.CountAttendanceAbove(students, threshold),
			PassMark:            passMark,
			Passed:              passed,
			Failed:              failed,
		}
		if avg, ok := query.AverageScore(students); ok {
			result.AverageScore = &avg
		}
		if where != nil {
			n, err := query.NewEngine(query.StudentFieldExtractor{}).Count(students, *where)
			if err != nil {
				return err
			}
			result.Where = where.String()
			result.Matching = &n
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "json" {
			return writeJSON(cmd.OutOrStdout(), result)
		}

		if result.Records == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), noStudentData)
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer tw.Flush()
		fmt.Fprintf(tw, "Records:\t%d\n", result.Records)
		fmt.Fprintf(tw, "Average score:\t%.2f\n", *result.AverageScore)
		fmt.Fprintf(tw, "Attendance above %d:\t%d\n", threshold, result.AttendanceAbove)
		fmt.Fprintf(tw, "Passed (>= %.2f):\t%d\n", passMark, passed)
		fmt.Fprintf(tw, "Failed:\t%d\n", failed)
		if where != nil {
			fmt.Fprintf(tw, "Matching %s:\t%d\n", result.Where, *result.Matching)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Float64("pass-mark", 0, "minimum passing score (default from config)")
	statsCmd.Flags().Uint32("attendance-threshold", 0, "count students with attendance above this (default from config)")
	statsCmd.Flags().String("where", "", `count students matching "field op value"`)
}
