package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/persist"
)

// ShowResult is the recommendation graph of one analysis.
type ShowResult struct {
	AnalysisID      string                 `json:"analysis_id"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

func (r ShowResult) renderText(w io.Writer) {
	if len(r.Recommendations) == 0 {
		fmt.Fprintf(w, "No recommendations for analysis %s\n", r.AnalysisID)
		return
	}
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "[%s] %s (%s) #%d %s\n", rec.Priority, rec.Title, rec.Status, rec.ID, rec.RecID)
		for _, a := range rec.Actions {
			fmt.Fprintf(w, "  %d. %s\n", a.Step, a.ActionText)
		}
		if !rec.Example.IsEmpty() {
			fmt.Fprintf(w, "  before: %s\n  after:  %s\n", rec.Example.BeforeExample, rec.Example.AfterExample)
		}
		for _, res := range rec.Resources {
			fmt.Fprintf(w, "  - %s <%s>\n", res.Title, res.URL)
		}
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var analysis string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the recommendations of an analysis",
		Long: `Print the stored recommendations of an analysis, highest priority first,
with their actions, example and resources.

The file is opened read-only: it is never created, migrated or modified. An
unknown analysis, a malformed id or a database without a readable
recommendations table prints an empty list. A database file that does not
exist is a command error.

Example:
  seorec show --analysis 3 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rootOpts.openReadOnly()
			if err != nil {
				return err
			}
			defer st.Close()

			recs := persist.GetRecommendationsForInput(cmd.Context(), st.DB(), analysis,
				persist.WithLogger(rootOpts.Logger))
			return rootOpts.formatter(cmd).Success(ShowResult{AnalysisID: analysis, Recommendations: recs})
		},
	}

	cmd.Flags().StringVar(&analysis, "analysis", "", "analysis id (required)")
	_ = cmd.MarkFlagRequired("analysis")

	return cmd
}
