package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sheetwork/internal/harness"
)

// RunResult is the JSON payload of a scenario run.
type RunResult struct {
	Scenario string                `json:"scenario"`
	Writes   []harness.WriteRecord `json:"writes"`
	Failures []string              `json:"failures,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a sheet event scenario",
		Long: `Run a scripted sheet scenario against an in-memory host store.

Fires the scenario's events in order, prints every batched host write,
and checks the scenario's expected final attributes. Deterministic row
ids and a manual clock make runs reproducible.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(rootOpts, args[0], cmd)
		},
	}
}

func runScenario(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		if outErr := formatter.Error("INVALID_SCENARIO", err.Error()); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "cannot load scenario", err)
	}

	formatter.VerboseLog("Running scenario %q (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		if outErr := formatter.Error("RUN_FAILED", err.Error()); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "scenario run failed", err)
	}

	failures := checkExpectations(scenario, result)

	if opts.Format == "json" {
		if err := formatter.Success(RunResult{
			Scenario: scenario.Name,
			Writes:   result.Trace,
			Failures: failures,
		}); err != nil {
			return err
		}
	} else {
		printTextResult(formatter, scenario, result, failures)
	}

	if len(failures) > 0 {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d expectation(s) failed", len(failures)), nil)
	}
	return nil
}

func checkExpectations(scenario *harness.Scenario, result *harness.Result) []string {
	keys := make([]string, 0, len(scenario.Expect))
	for k := range scenario.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var failures []string
	for _, k := range keys {
		want := scenario.Expect[k]
		if got := result.Final[k]; got != want {
			failures = append(failures, fmt.Sprintf("%s: got %q, want %q", k, got, want))
		}
	}
	return failures
}

func printTextResult(f *OutputFormatter, scenario *harness.Scenario, result *harness.Result, failures []string) {
	fmt.Fprintf(f.Writer, "scenario: %s\n", scenario.Name)
	for i, rec := range result.Trace {
		mode := "change"
		if rec.Silent {
			mode = "silent"
		}
		keys := make([]string, 0, len(rec.Values))
		for k := range rec.Values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(f.Writer, "write %d (%s, %d keys):\n", i+1, mode, len(rec.Values))
		for _, k := range keys {
			fmt.Fprintf(f.Writer, "  %s = %s\n", k, rec.Values[k])
		}
	}
	if len(failures) == 0 {
		fmt.Fprintln(f.Writer, strings.TrimSpace(fmt.Sprintf("ok (%d writes)", len(result.Trace))))
		return
	}
	for _, failure := range failures {
		fmt.Fprintf(f.Writer, "FAIL %s\n", failure)
	}
}
