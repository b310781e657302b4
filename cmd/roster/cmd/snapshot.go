package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/roster/pkg/archive"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Archive the current data file",
	Long: `Store the current contents of the data file in the snapshot archive.
The archive directory is set by archive.dir in the config.

Example:
  roster snapshot`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}
		if err := loadRecords(cmd, a); err != nil {
			return err
		}

		arc, err := openArchive(a)
		if err != nil {
			return err
		}
		defer arc.Close()

		entry, err := a.session.Snapshot(arc)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s stored (%d records, %d bytes)\n", entry.ID, a.session.Len(), entry.Size)
		return nil
	},
}

// snapshotsCmd represents the snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List archived snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		arc, err := openArchive(a)
		if err != nil {
			return err
		}
		defer arc.Close()

		entries, err := arc.List()
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return writeSnapshots(cmd.OutOrStdout(), format, entries)
	},
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Replace the data file with an archived snapshot",
	Long: `Load the snapshot with the given id and write it over the data file.

Example:
  roster restore 2Fqj8X1nBq5rZ4mWkP0sE3vT9aL`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		id, err := archive.ParseID(args[0])
		if err != nil {
			return err
		}

		arc, err := openArchive(a)
		if err != nil {
			return err
		}
		defer arc.Close()

		report, err := a.session.Restore(arc, id)
		if err != nil {
			return err
		}
		writeReportWarnings(cmd.ErrOrStderr(), report)

		if err := a.session.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d records from %s into %s\n", a.session.Len(), id, a.session.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(restoreCmd)
}

func openArchive(a *app) (*archive.Archive, error) {
	return container.GetArchiveOpener()(a.cfg.Archive.Dir)
}
