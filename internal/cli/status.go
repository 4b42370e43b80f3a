package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/store"
)

// StatusResult is the outcome of a status change.
type StatusResult struct {
	ID     int64        `json:"id"`
	Status model.Status `json:"status"`
}

func (r StatusResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Recommendation %d is now %s\n", r.ID, r.Status)
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		id     int64
		status string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Set the status of a recommendation",
		Long: fmt.Sprintf(`Set the lifecycle status of one stored recommendation by its row id.

Valid statuses: %s

Example:
  seorec status --id 12 --set completed`, joinStatuses()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			next := model.Status(status)
			if !next.Valid() {
				msg := fmt.Sprintf("invalid status %q: must be one of %s", status, joinStatuses())
				_ = out.Error(ErrCodeInvalidInput, msg, nil)
				return NewExitError(ExitCommandError, msg)
			}

			if err := rootOpts.requireDatabase(); err != nil {
				return err
			}
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			err = st.UpdateRecommendationStatus(cmd.Context(), id, next)
			if errors.Is(err, store.ErrNotFound) {
				msg := fmt.Sprintf("recommendation %d not found", id)
				_ = out.Error(ErrCodeNotFound, msg, nil)
				return NewExitError(ExitFailure, msg)
			}
			if err != nil {
				_ = out.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitFailure, "update status", err)
			}
			return out.Success(StatusResult{ID: id, Status: next})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "recommendation row id (required)")
	cmd.Flags().StringVar(&status, "set", "", "new status (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func joinStatuses() string {
	all := model.AllStatuses()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
