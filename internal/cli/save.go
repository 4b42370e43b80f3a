package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/seorec/internal/model"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	AnalysisID int64
}

// SaveResult is the outcome of a successful save.
type SaveResult struct {
	AnalysisID int64 `json:"analysis_id"`
	Saved      int   `json:"saved"`
}

func (r SaveResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "Saved %d recommendation(s) for analysis %d\n", r.Saved, r.AnalysisID)
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <payload-file>",
		Short: "Replace the recommendations of an analysis",
		Long: `Replace every stored recommendation of an analysis with the set in a
payload file. The payload is YAML or JSON with a top-level "recommendations"
list. Use "-" to read from stdin.

The save is all-or-nothing: on any error nothing is written and the previous
set stays in place. An empty list is accepted and leaves stored rows untouched.

Exit codes:
  0 - Saved
  1 - Refused (unknown analysis, validation, schema drift, transaction)
  2 - Command error (unreadable payload, database unreachable)

Examples:
  seorec save --analysis 3 recs.yaml
  cat recs.json | seorec save --analysis 3 - --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.AnalysisID, "analysis", 0, "analysis id (required)")
	_ = cmd.MarkFlagRequired("analysis")

	return cmd
}

func runSave(opts *SaveOptions, source string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	payload, err := readPayload(source, cmd.InOrStdin())
	if err != nil {
		_ = out.Error(ErrCodeInvalidInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read payload", err)
	}
	out.VerboseLog("payload: %d recommendation(s) from %s", len(payload.Recommendations), source)

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SaveRecommendations(cmd.Context(), opts.AnalysisID, payload)
	if err != nil {
		return out.PersistError(err)
	}

	return out.Success(SaveResult{AnalysisID: opts.AnalysisID, Saved: saved})
}

// readPayload decodes a payload file, or stdin when source is "-".
// Unknown keys are rejected so typos do not silently drop fields.
func readPayload(source string, stdin io.Reader) (model.Payload, error) {
	var data []byte
	var err error
	if source == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return model.Payload{}, fmt.Errorf("read %s: %w", source, err)
	}

	var payload model.Payload
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Payload{}, fmt.Errorf("decode %s: empty payload", source)
		}
		return model.Payload{}, fmt.Errorf("decode %s: %w", source, err)
	}
	return payload, nil
}
