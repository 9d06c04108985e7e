package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/burnish-io/burnish"
)

// NewRulesCommand creates the rules command group.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate rule files",
	}
	cmd.AddCommand(newRulesShowCommand(rootOpts))
	cmd.AddCommand(newRulesValidateCommand(rootOpts))
	return cmd
}

type rulesShowResult struct {
	Name  string              `json:"name"`
	UID   string              `json:"uid"`
	Rules []burnish.RuleEntry `json:"rules"`
}

func newRulesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <rule-file>",
		Short:         "Show the rule chain a file describes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			p, _, err := LoadRuleFile(args[0])
			if err != nil {
				return exitWithLoadError(formatter, err)
			}

			env := p.Export()
			if formatter.Format == "json" {
				return formatter.Success(rulesShowResult{Name: env.Name, UID: env.UID, Rules: env.Rules})
			}

			fmt.Fprintf(formatter.Writer, "%s\n", p)
			fmt.Fprintf(formatter.Writer, "uid: %s\n\n", env.UID)
			for i, entry := range env.Rules {
				fmt.Fprintf(formatter.Writer, "%3d. %s", i+1, entry.Rule)
				if len(entry.Params) > 0 {
					fmt.Fprintf(formatter.Writer, " %v", entry.Params)
				}
				fmt.Fprintln(formatter.Writer)
			}
			return nil
		},
	}
}

func newRulesValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <rule-file>",
		Short:         "Validate a rule file without applying it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			p, env, err := LoadRuleFile(args[0])
			if err != nil {
				return exitWithLoadError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]any{
					"valid": true,
					"rules": len(env.Rules),
					"uid":   p.UID(),
				})
			}
			fmt.Fprintf(formatter.Writer, "✓ %s: %d rule(s), uid %s\n", args[0], len(env.Rules), p.UID())
			return nil
		},
	}
}
