package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// InitResult is the outcome of the init command.
type InitResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
}

func (r InitResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Database ready: %s (schema version %d)\n", r.Path, r.SchemaVersion)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or migrate the database",
		Long: `Create the SQLite database if it does not exist and bring its schema
up to the current version. Running init on an up-to-date file is a no-op.

Example:
  seorec init --db ./seorec.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	version, err := st.SchemaVersion(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "read schema version", err)
	}

	return opts.formatter(cmd).Success(InitResult{Path: st.Path(), SchemaVersion: version})
}
