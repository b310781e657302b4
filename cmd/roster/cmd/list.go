package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the students in the data file",
	Long: `List every student in the data file in file order.

Examples:
  roster list
  roster list --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if err := loadRecords(cmd, a); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return writeStudents(cmd.OutOrStdout(), format, a.schema, a.session.Records())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
