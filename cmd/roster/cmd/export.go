package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the data file to SQLite",
	Long: `Write every student in the data file to the students table of a SQLite
database, replacing rows from earlier exports.

Example:
  roster export --sqlite ./roster.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("sqlite")
		if path == "" {
			return errors.New("--sqlite is required")
		}

		if err := loadRecords(cmd, a); err != nil {
			return err
		}

		exporter, err := container.GetExporterFactory()(path)
		if err != nil {
			return err
		}
		defer exporter.Close()

		n, err := a.session.Export(cmd.Context(), exporter)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", n, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("sqlite", "", "path of the SQLite database to write")
}
