package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/roster/pkg/config"
)

// configCmd groups config subcommands. They do not open a session.
var configCmd = &cobra.Command{
	Use:                "config",
	Short:              "Manage the roster configuration",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with default values.

Examples:
  roster config init
  roster config init --path ./roster.yaml --data-file ./students.txt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")
		dataFile, _ := cmd.Flags().GetString("data-file")

		if path == "" {
			path = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(path) && !force {
			return fmt.Errorf("config already exists at %s, use --force to overwrite", path)
		}

		if _, err := config.BootstrapConfig(path, dataFile); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the config file, environment
variables and flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().String("path", "", "where to write the config (default ~/.config/roster/config.yaml)")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing config")
}
