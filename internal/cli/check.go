package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/picofix/pkg/config"
)

func newCheckCommand() *cobra.Command {
	var cfg config.Config
	flags := &fixFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report PICO-8 constructs without rewriting anything",
		Long: `Check Lua files for PICO-8 dialect constructs without modifying them.

Equivalent to "picofix fix" with writing disabled, except the exit code is
nonzero when any construct is found. Useful in CI to verify that a tree
contains no unconverted PICO-8 shorthand.

Examples:
  picofix check                  # Check current directory
  picofix check carts/           # Check a directory
  picofix check --format json    # Machine-readable verdict`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args, &cfg, flags, true)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, diff")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringVar(&flags.dialect, "dialect", "pico8", "input dialect: pico8, lua")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")

	return cmd
}
