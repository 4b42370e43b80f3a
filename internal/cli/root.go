package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/seorec/internal/config"
	"github.com/roach88/seorec/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// Config is loaded in PersistentPreRunE with flag overrides applied.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the seorec CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "seorec",
		Short:         "seorec - SEO recommendation store",
		Long:          "Persist and read SEO recommendations for site analyses in a local SQLite database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultOutputFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default .seorec.yaml in . or $HOME)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database file (overrides database.path)")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewAnalysisCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load reads the config file and environment, then applies explicit flags.
func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	if cmd.Flags().Changed("format") {
		cfg.Output.Format = o.Format
	}
	if !isValidFormat(cfg.Output.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", cfg.Output.Format, ValidFormats))
	}
	o.Format = cfg.Output.Format

	if o.Database != "" {
		cfg.Database.Path = o.Database
	}

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	o.Config = cfg
	return nil
}

// formatter builds an OutputFormatter bound to the command's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openStore opens the configured database, creating it when missing.
func (o *RootOptions) openStore() (*store.Store, error) {
	s, err := store.Open(o.Config.Database.Path, o.storeOptions()...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return s, nil
}

// openReadOnly opens an existing database without creating, migrating or
// otherwise writing to it.
func (o *RootOptions) openReadOnly() (*store.Store, error) {
	if err := o.requireDatabase(); err != nil {
		return nil, err
	}
	s, err := store.OpenReadOnly(o.Config.Database.Path,
		store.WithBusyTimeout(o.Config.Database.BusyTimeout),
		store.WithLogger(o.Logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return s, nil
}

func (o *RootOptions) storeOptions() []store.Option {
	return []store.Option{
		store.WithBusyTimeout(o.Config.Database.BusyTimeout),
		store.WithSchemaGuard(o.Config.Writer.SchemaGuard),
		store.WithLogger(o.Logger),
	}
}

// requireDatabase fails when the configured database file does not exist.
// Read commands use it so a typo in --db does not create an empty file.
func (o *RootOptions) requireDatabase() error {
	if _, err := os.Stat(o.Config.Database.Path); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
