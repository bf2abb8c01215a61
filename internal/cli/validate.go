package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sheetwork/internal/sheetdef"
)

// ValidationResult holds validation results for JSON output.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version,omitempty"`
	Fields   int    `json:"fields"`
	Sections int    `json:"sections"`
	Error    string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <definition.cue>",
		Short: "Validate a CUE sheet definition",
		Long: `Validate a sheet definition without running anything.

Checks CUE syntax, required fields, the section-name grammar, and that
seed rows only reference declared sections.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, err := sheetdef.Load(path)
	if err != nil {
		if outErr := formatter.Error("INVALID_DEFINITION", err.Error()); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "definition invalid", err)
	}

	formatter.VerboseLog("Loaded definition %q from %s", def.Name, path)

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			Name:     def.Name,
			Version:  def.Version,
			Fields:   len(def.Fields),
			Sections: len(def.Sections),
		})
	}
	return formatter.Success(fmt.Sprintf("%s v%s: valid (%d fields, %d sections)",
		def.Name, def.Version, len(def.Fields), len(def.Sections)))
}
