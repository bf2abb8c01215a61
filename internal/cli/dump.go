package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sheetwork/internal/host"
)

// DumpAttribute is one attribute in JSON dump output.
type DumpAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "dump <sheet.db>",
		Short:         "Dump attributes from a persisted sheet store",
		Long:          "List every attribute in a SQLite-backed sheet store, in insertion order.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(rootOpts, args[0], cmd)
		},
	}
}

func runDump(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := host.OpenSQLite(path)
	if err != nil {
		if outErr := formatter.Error("OPEN_FAILED", err.Error()); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "cannot open store", err)
	}
	defer store.Close()

	attrs, err := store.All(cmd.Context())
	if err != nil {
		if outErr := formatter.Error("DUMP_FAILED", err.Error()); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "cannot dump store", err)
	}

	formatter.VerboseLog("Dumped %d attribute(s) from %s", len(attrs), path)

	if opts.Format == "json" {
		out := make([]DumpAttribute, len(attrs))
		for i, kv := range attrs {
			out[i] = DumpAttribute{Key: kv[0], Value: kv[1]}
		}
		return formatter.Success(out)
	}

	for _, kv := range attrs {
		fmt.Fprintf(formatter.Writer, "%s = %s\n", kv[0], kv[1])
	}
	return nil
}
