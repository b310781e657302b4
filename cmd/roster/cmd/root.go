/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/roster/pkg/codec"
	"github.com/ssargent/roster/pkg/config"
	"github.com/ssargent/roster/pkg/di"
	"github.com/ssargent/roster/pkg/metrics"
	"github.com/ssargent/roster/pkg/session"
	"github.com/ssargent/roster/pkg/store"
)

type contextKey string

const appKey contextKey = "app"

// app is the per-run state built by the root command
type app struct {
	cfg     *config.Config
	schema  codec.Schema
	logger  *slog.Logger
	metrics *metrics.Metrics
	session *session.Session
	closed  bool
}

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "Roster - student record manager",
	Long: `Roster keeps student records in a plain text file, one record per line.

Records can be entered interactively, listed, summarised, archived as
snapshots and exported to SQLite.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

// run executes rootCmd and tears the session down, including after a
// failed command.
func run(ctx context.Context) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if cmd == nil {
		return err
	}
	if terr := teardownApp(cmd); terr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", terr)
		err = errors.Join(err, terr)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default ~/.config/roster/config.yaml)")
	rootCmd.PersistentFlags().StringP("data-file", "f", "", "student data file (overrides config)")
	rootCmd.PersistentFlags().String("schema", "", "record schema: base or extended (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringP("format", "o", "table", "output format (table or json)")
}

// resolveConfig loads the config named by --config, then the default config
// file if present, then the environment alone, and applies flag overrides.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	switch {
	case configPath != "":
		cfg, err = config.LoadConfig(configPath)
	case config.ConfigExists(config.GetDefaultConfigPath()):
		cfg, err = config.LoadConfig(config.GetDefaultConfigPath())
	default:
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("data-file"); v != "" {
		cfg.DataFile = v
	}
	if v, _ := cmd.Flags().GetString("schema"); v != "" {
		cfg.Schema = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupApp(cmd *cobra.Command, args []string) error {
	if container == nil {
		return errors.New("dependency container not initialized")
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	schema, err := codec.ParseSchema(cfg.Schema)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())
	m := container.GetMetricsFactory()()
	rc := container.GetCodecFactory()(schema, logger)

	sess := session.New(cfg.DataFile, rc,
		session.WithStoreConfig(store.Config{
			InitialCapacity: cfg.Store.InitialCapacity,
			MaxRecords:      cfg.Store.MaxRecords,
		}),
		session.WithMetrics(m),
		session.WithLogger(logger),
	)

	logger.Debug("session ready",
		slog.String("data_file", cfg.DataFile),
		slog.String("schema", schema.String()))

	cmd.SetContext(context.WithValue(cmd.Context(), appKey, &app{
		cfg:     cfg,
		schema:  schema,
		logger:  logger,
		metrics: m,
		session: sess,
	}))
	return nil
}

// teardownApp writes the metrics textfile and closes the session. It is a
// no-op when setup never ran or the app was already torn down.
func teardownApp(cmd *cobra.Command) error {
	a, err := appFrom(cmd)
	if err != nil || a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if path := a.cfg.Metrics.TextfilePath; path != "" {
		a.metrics.SetStoreSize(a.session.Len())
		if err := a.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, a.session.Close())
	return errors.Join(errs...)
}

func appFrom(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("session not found in context")
	}
	a, ok := ctx.Value(appKey).(*app)
	if !ok {
		return nil, errors.New("session not found in context")
	}
	return a, nil
}

// loadRecords reads the data file into the session. A missing file leaves
// the session empty.
func loadRecords(cmd *cobra.Command, a *app) error {
	report, err := a.session.Load()
	if errors.Is(err, codec.ErrNoFile) {
		a.logger.Info("no data file, starting empty", slog.String("path", a.cfg.DataFile))
		return nil
	}
	if err != nil {
		return err
	}
	writeReportWarnings(cmd.ErrOrStderr(), report)
	return nil
}
