package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/burnish-io/burnish"
)

type applyOptions struct {
	rulesFile string
	sheet     string
	raw       bool
	workers   int
	suffix    string
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply --rules <file> <pattern>",
		Short: "Apply a rule file to every matching table file",
		Long: `Apply loads an ordered rule chain from a YAML or JSON rule file and
runs it over every table file the pattern matches. Patterns support
globbing plus brace alternatives, e.g. "data/*.{csv,tsv}".

Each input produces a sibling output file named with the suffix inserted
before the extension ("people.csv" -> "people.burnished.csv").`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.rulesFile, "rules", "", "rule file to apply (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "table name within multi-table files (SQLite)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "read every cell as text, skipping type inference")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel file workers (0 = CPU count)")
	cmd.Flags().StringVar(&opts.suffix, "suffix", burnish.DefaultSuffix, "inserted before the extension of each output name")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

type applyResult struct {
	Pipeline string   `json:"pipeline"`
	UID      string   `json:"uid"`
	Outputs  []string `json:"outputs"`
}

func runApply(rootOpts *RootOptions, opts *applyOptions, pattern string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	p, env, err := LoadRuleFile(opts.rulesFile)
	if err != nil {
		return exitWithLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d rule(s) from %s", len(env.Rules), opts.rulesFile)

	applyOpts := []burnish.ApplyOption{
		burnish.Workers(opts.workers),
		burnish.NameFunc(suffixNamer(opts.suffix)),
	}
	if opts.sheet != "" {
		applyOpts = append(applyOpts, burnish.Sheet(opts.sheet))
	}
	if opts.raw {
		applyOpts = append(applyOpts, burnish.RawCells())
	}

	outs, err := p.ApplyGlob(cmd.Context(), pattern, applyOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeApplyFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "apply failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(applyResult{Pipeline: p.Name(), UID: p.UID(), Outputs: outs})
	}
	if len(outs) == 0 {
		fmt.Fprintf(formatter.Writer, "No files match %s\n", pattern)
		return nil
	}
	for _, out := range outs {
		fmt.Fprintln(formatter.Writer, out)
	}
	return nil
}

// suffixNamer builds the output naming policy for a suffix flag value.
func suffixNamer(suffix string) func(string) string {
	return func(from string) string {
		ext := filepath.Ext(from)
		return strings.TrimSuffix(from, ext) + suffix + ext
	}
}

// exitWithLoadError renders a loader error and converts it to the right
// exit code: schema and rule problems are failures, everything else is a
// command error.
func exitWithLoadError(formatter *OutputFormatter, err error) error {
	le, ok := err.(*LoadError)
	if !ok {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "loading rules", err)
	}
	_ = formatter.Error(le.Code, le.Message, nil)
	switch le.Code {
	case ErrCodeSchema, ErrCodeBadRule:
		return NewExitError(ExitFailure, le.Message)
	default:
		return NewExitError(ExitCommandError, le.Message)
	}
}
