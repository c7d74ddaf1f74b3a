package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/spf13/cobra"

	"github.com/yaklabco/picofix/internal/configloader"
	"github.com/yaklabco/picofix/internal/logging"
	"github.com/yaklabco/picofix/pkg/config"
	"github.com/yaklabco/picofix/pkg/fixer"
	"github.com/yaklabco/picofix/pkg/fsutil"
	"github.com/yaklabco/picofix/pkg/reporter"
	"github.com/yaklabco/picofix/pkg/runner"
)

// ErrIssuesFound is returned when the run hit parse failures or, in
// strict/check mode, left fixes unwritten. It signals the exit code
// without being logged as a command failure.
var ErrIssuesFound = errors.New("issues found")

type fixFlags struct {
	format     string
	dialect    string
	output     string
	ignore     []string
	strict     bool
	noContext  bool
	compact    bool
	cpuprofile string
	memprofile string
	traceFile  string
}

func newFixCommand() *cobra.Command {
	var cfg config.Config
	flags := &fixFlags{}

	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Rewrite PICO-8 Lua files into standard Lua",
		Long:  fixLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args, &cfg, flags, false)
		},
	}

	addFixFlags(cmd, &cfg, flags)

	return cmd
}

const fixLongDescription = `Rewrite PICO-8 flavored Lua files into standard Lua.

By default, scans all .lua and .p8 files in the current directory and
subdirectories and reports the dialect constructs it finds without touching
any file. Use --write to rewrite files in place, or --dry-run to preview
the changes as a diff.

Examples:
  picofix fix                    # Report findings in current directory
  picofix fix carts/             # Scan a directory
  picofix fix main.lua           # Scan a single file
  picofix fix --write            # Rewrite files in place
  picofix fix --dry-run          # Show rewrites without applying
  picofix fix -o - main.lua      # Print the fixed source to stdout
  picofix fix --format json      # Output as JSON for CI
  picofix fix --dialect lua      # Canonical Lua only, no extensions`

func runFix(cmd *cobra.Command, args []string, cfg *config.Config, flags *fixFlags, forceCheck bool) error {
	logger := logging.Default()

	stopProfiling, err := startProfiling(flags)
	if err != nil {
		return err
	}
	defer stopProfiling()

	// Map string flags to typed config values.
	// Only set values that were explicitly provided via CLI flags.
	cfg.Format = config.OutputFormat(flags.format)
	if cmd.Flags().Changed("dialect") {
		cfg.Dialect = config.Dialect(flags.dialect)
	}
	cfg.Ignore = flags.ignore

	if forceCheck {
		cfg.Write = false
		cfg.DryRun = false
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logger)

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	// Get working directory for config discovery.
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	// Load and merge configuration.
	loadOpts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	}

	loadResult, err := configloader.Load(ctx, loadOpts)
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	finalCfg := loadResult.Config

	// Log warnings from config loading.
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	logger.Debug("configuration loaded",
		logging.FieldDialect, finalCfg.Dialect,
		logging.FieldWrite, finalCfg.Write,
		logging.FieldDryRun, finalCfg.DryRun,
		logging.FieldJobs, finalCfg.Jobs,
	)

	// Create the fixer and the safety pipeline around it.
	f, err := fixer.New(fixer.Options{Pico8: finalCfg.Dialect == config.DialectPico8})
	if err != nil {
		return fmt.Errorf("create fixer: %w", err)
	}

	pipeline := fixer.NewPipeline(f)

	// Single-file redirection mode: fix one file and write the result
	// somewhere else, leaving the input untouched.
	if flags.output != "" {
		if finalCfg.Write || finalCfg.DryRun {
			return errors.New("--output cannot be combined with --write or --dry-run")
		}
		if len(args) != 1 {
			return errors.New("--output requires exactly one input file")
		}
		return writeFixedOutput(ctx, cmd, pipeline, args[0], flags.output)
	}

	fixRunner := runner.New(pipeline)

	runOpts := runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		Extensions:   runner.DefaultExtensions(),
		ExcludeGlobs: finalCfg.Ignore,
		Jobs:         finalCfg.Jobs,
		Pipeline:     fixer.PipelineOptionsFromConfig(finalCfg),
	}

	logger.Debug("starting fix run",
		logging.FieldPaths, runOpts.Paths,
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := fixRunner.Run(ctx, runOpts)
	if err != nil {
		return errors.Join(errors.New("fix run failed"), err)
	}

	// Get color mode from persistent flag.
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	// Parse output format.
	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       colorMode,
		ShowContext: !flags.noContext,
		ShowSummary: true,
		GroupByFile: true,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	// Determine exit code based on result.
	exitCode := ExitCodeFromResult(result, forceCheck || flags.strict)
	if exitCode != ExitSuccess {
		return ErrIssuesFound
	}

	return nil
}

func addFixFlags(cmd *cobra.Command, cfg *config.Config, flags *fixFlags) {
	cmd.Flags().BoolVarP(&cfg.Write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "show rewrites without applying them")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, diff")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation when writing")
	cmd.Flags().StringVar(&flags.dialect, "dialect", "pico8", "input dialect: pico8, lua")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "",
		"write the fixed content of a single file to this path (- for stdout)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit nonzero when unwritten fixes remain")
	cmd.Flags().BoolVar(&flags.noContext, "no-context", false, "hide source line context in output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")

	// Profiling flags.
	cmd.Flags().StringVar(&flags.cpuprofile, "cpuprofile", "", "write CPU profile to file")
	cmd.Flags().StringVar(&flags.memprofile, "memprofile", "", "write memory profile to file")
	cmd.Flags().StringVar(&flags.traceFile, "trace", "", "write execution trace to file")
}

// writeFixedOutput fixes a single file and writes the canonical content to
// outPath, or to the command's stdout when outPath is "-".
func writeFixedOutput(ctx context.Context, cmd *cobra.Command, pipeline *fixer.Pipeline, path, outPath string) error {
	pr, err := pipeline.ProcessFile(ctx, path, fixer.DefaultPipelineOptions())
	if err != nil {
		return err
	}
	if pr.Skipped {
		return fmt.Errorf("skipped %s: %s", path, pr.SkipReason)
	}

	if outPath == "-" {
		if _, err := cmd.OutOrStdout().Write(pr.Output); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if err := fsutil.WriteAtomic(ctx, outPath, pr.Output, pr.OriginalInfo.Mode); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	return nil
}

// startProfiling starts any requested profilers and returns a stop function.
// The stop function is safe to call even when nothing was started.
func startProfiling(flags *fixFlags) (func(), error) {
	var stops []func()

	if flags.cpuprofile != "" {
		f, err := os.Create(flags.cpuprofile)
		if err != nil {
			return nil, fmt.Errorf("create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("start CPU profile: %w", err)
		}
		stops = append(stops, func() {
			pprof.StopCPUProfile()
			f.Close()
		})
	}

	if flags.traceFile != "" {
		f, err := os.Create(flags.traceFile)
		if err != nil {
			return nil, fmt.Errorf("create trace file: %w", err)
		}
		if err := trace.Start(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("start trace: %w", err)
		}
		stops = append(stops, func() {
			trace.Stop()
			f.Close()
		})
	}

	memprofile := flags.memprofile

	return func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
		if memprofile != "" {
			f, err := os.Create(memprofile)
			if err != nil {
				logging.Default().Error("create memory profile", logging.FieldError, err)
				return
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				logging.Default().Error("write memory profile", logging.FieldError, err)
			}
		}
	}, nil
}
