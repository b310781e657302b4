package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/roster/pkg/store"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a student and save the data file",
	Long: `Load the data file, append one student and save it again.

The id is stored as an integer when it is a whole number and as text
otherwise; prefix it with '#' to force text.

Examples:
  roster add --name Alice --age 20 --gender 1 --score 85.5 --id 1
  roster add --name "Bob Stone" --age 22 --gender 0 --score 59.99 --id S42 --registered 1700000000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		age, _ := cmd.Flags().GetInt("age")
		gender, _ := cmd.Flags().GetInt("gender")
		rawScore, _ := cmd.Flags().GetString("score")
		rawID, _ := cmd.Flags().GetString("id")
		registered, _ := cmd.Flags().GetInt64("registered")
		rawScholarship, _ := cmd.Flags().GetString("scholarship")
		attendance, _ := cmd.Flags().GetUint32("attendance")

		score, err := parseFinite(rawScore)
		if err != nil {
			return fmt.Errorf("invalid --score: %w", err)
		}
		scholarship, err := parseFinite(rawScholarship)
		if err != nil {
			return fmt.Errorf("invalid --scholarship: %w", err)
		}
		id, err := parseStudentID(rawID)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("registered") {
			registered = time.Now().Unix()
		}

		if err := loadRecords(cmd, a); err != nil {
			return err
		}

		n, err := a.session.Add(store.Student{
			Name:             name,
			Age:              age,
			Gender:           store.Gender(gender),
			Score:            score,
			ID:               id,
			RegistrationTime: registered,
			Scholarship:      scholarship,
			Attendance:       attendance,
		})
		if err != nil {
			return err
		}

		if err := a.session.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d records in %s)\n", store.NormalizeName(name), n, a.session.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().String("name", "", "student name (required)")
	addCmd.Flags().Int("age", 0, "age in years, 1-100 (required)")
	addCmd.Flags().Int("gender", 0, "0 = male, 1 = female")
	addCmd.Flags().String("score", "0", "score, a finite number")
	addCmd.Flags().String("id", "", "student id (required)")
	addCmd.Flags().Int64("registered", 0, "registration time in Unix seconds (default now)")
	addCmd.Flags().String("scholarship", "0", "scholarship amount (extended schema)")
	addCmd.Flags().Uint32("attendance", 0, "attendance count (extended schema)")
	for _, flag := range []string{"name", "age", "id"} {
		if err := addCmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
}
