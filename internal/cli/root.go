// Package cli provides the Cobra command structure for picofix.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/picofix/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root picofix command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "picofix",
		Short: "A source-to-source fixer for PICO-8 flavored Lua",
		Long: `picofix parses PICO-8 flavored Lua and rewrites it into standard Lua.

It translates the PICO-8 dialect's shorthand constructs in place: the "!="
operator becomes "~=", compound reassignments like "a += 1" expand to plain
assignments, and the short _update60 stub gets its missing body spliced in.
Single-line if statements without "then" are reported but left unchanged.
picofix validates its own output by re-parsing, supports dry-run diffs, and
can create backups before rewriting files in place.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newFixCommand())
	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newRestoreCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
