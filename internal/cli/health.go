package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/seorec/internal/health"
)

// HealthResult is the outcome of the health probe.
type HealthResult struct {
	Path string `json:"path"`
	health.Report
	Problem string `json:"error,omitempty"`
}

func (r HealthResult) renderText(w io.Writer) {
	if r.Healthy {
		fmt.Fprintf(w, "%s: healthy (schema version %d)\n", r.Path, r.SchemaVersion)
		return
	}
	fmt.Fprintf(w, "%s: unhealthy: %s\n", r.Path, r.Problem)
	if len(r.MissingColumns) > 0 {
		fmt.Fprintf(w, "Missing columns: %v\n", r.MissingColumns)
	}
}

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the database is safe to read",
		Long: `Run the read-path health probe against an existing database. The file is
opened read-only and is never created or migrated.

Checks, in order: connectivity, integrity, schema version, recommendations
table, required columns.

Exit codes:
  0 - Healthy
  1 - Unhealthy
  2 - Database missing or cannot be opened`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openReadOnly()
			if err != nil {
				return err
			}
			defer st.Close()

			rep := st.Health(cmd.Context())
			res := HealthResult{Path: st.Path(), Report: rep}
			if err := rep.Error(); err != nil {
				res.Problem = err.Error()
			}
			if err := rootOpts.formatter(cmd).Success(res); err != nil {
				return err
			}
			if !rep.Healthy {
				return NewExitError(ExitFailure, res.Problem)
			}
			return nil
		},
	}
}
