package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/seorec/internal/harness"
)

// TestResult wraps the suite summary for output.
type TestResult struct {
	*harness.SuiteResult
}

func (r TestResult) renderText(w io.Writer) {
	for _, f := range r.Failures {
		fmt.Fprintf(w, "FAIL %s (%s)\n", f.Scenario, f.Path)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "%d passed, %d failed, %d total\n", r.Passed, r.Failed, r.TotalScenarios)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run persistence scenarios",
		Long: `Run YAML persistence scenarios against a scratch database.

Each scenario creates its analyses in a fresh temporary store, executes its
save, read and status steps, checks each step's expectations and then the
final assertions. The configured database is never touched.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (path not found)

Examples:
  seorec test ./scenarios
  seorec test ./scenarios/replace.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(rootOpts, args[0], cmd)
		},
	}
}

func runTests(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	suite, err := harness.RunSuite(path)
	var notFound *harness.ScenarioNotFoundError
	if errors.As(err, &notFound) {
		_ = out.Error(ErrCodeNotFound, notFound.Error(), nil)
		return WrapExitError(ExitCommandError, "scenarios not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "run scenarios", err)
	}
	out.VerboseLog("ran %d scenario(s) from %s", suite.TotalScenarios, path)

	if err := out.Success(TestResult{SuiteResult: suite}); err != nil {
		return err
	}
	if suite.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", suite.Failed, suite.TotalScenarios))
	}
	return nil
}
