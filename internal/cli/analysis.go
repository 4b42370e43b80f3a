package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/seorec/internal/store"
)

// AnalysisResult describes one analysis row.
type AnalysisResult struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

func (r AnalysisResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Analysis %d: %s\n", r.ID, r.URL)
	if !r.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created: %s\n", r.CreatedAt.Format(time.RFC3339))
	}
}

// NewAnalysisCommand creates the analysis command group.
func NewAnalysisCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Manage analyses",
		Long:  "Analyses own recommendation sets. An analysis must exist before recommendations can be saved for it.",
	}

	cmd.AddCommand(newAnalysisCreateCommand(rootOpts))
	cmd.AddCommand(newAnalysisShowCommand(rootOpts))

	return cmd
}

func newAnalysisCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an analysis",
		Long: `Create an analysis row and print its id.

Example:
  seorec analysis create --url https://example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			id, err := st.CreateAnalysis(cmd.Context(), url)
			if err != nil {
				return WrapExitError(ExitFailure, "create analysis", err)
			}
			return rootOpts.formatter(cmd).Success(AnalysisResult{ID: id, URL: url})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "analyzed URL")

	return cmd
}

func newAnalysisShowCommand(rootOpts *RootOptions) *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show an analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openReadOnly()
			if err != nil {
				return err
			}
			defer st.Close()

			out := rootOpts.formatter(cmd)
			a, err := st.ReadAnalysis(cmd.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				_ = out.Error(ErrCodeNotFound, fmt.Sprintf("analysis %d not found", id), nil)
				return NewExitError(ExitFailure, fmt.Sprintf("analysis %d not found", id))
			}
			if err != nil {
				return WrapExitError(ExitFailure, "read analysis", err)
			}
			return out.Success(AnalysisResult{ID: a.ID, URL: a.URL, CreatedAt: a.CreatedAt})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "analysis id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
