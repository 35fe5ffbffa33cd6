// Package cli provides the command-line interface for ng-annotate.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sod/ng-annotate-patched/internal/cli/config"
	"github.com/sod/ng-annotate-patched/internal/engine"
	"github.com/sod/ng-annotate-patched/internal/pipeline"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const usageHeader = `ng-annotate v%s

provide - instead of <file> to read from stdin
use -a and -r together to remove and add (rebuild) annotations in one go`

// NewRootCmd creates the root command. start is the process start time
// reported by --stats.
func NewRootCmd(start time.Time) *cobra.Command {
	var (
		list    bool
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:     "ng-annotate [flags] <file>",
		Short:   "Add, remove and rebuild AngularJS dependency injection annotations",
		Long:    fmt.Sprintf(usageHeader, Version),
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := config.GetLogger(cmd.Context())
			return pipeline.Run(pipeline.Options{
				Args:   args,
				Flags:  cmd.Flags(),
				List:   list,
				Stdin:  cmd.InOrStdin(),
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
				Engine: engine.New(logger),
				Logger: logger,
				Start:  start,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} v{{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &pipeline.UsageError{Message: "error: " + err.Error()}
	})

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&list, "list", false, "list all optional names")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output on stderr")
	rootCmd.Flags().SortFlags = false

	return rootCmd
}

// Execute runs the root command against the process arguments and returns
// the exit code.
func Execute(start time.Time) int {
	return execute(NewRootCmd(start))
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	w := cmd.ErrOrStderr()
	var usage *pipeline.UsageError
	if errors.As(err, &usage) {
		_, _ = io.WriteString(w, cmd.UsageString())
	}
	if msg := err.Error(); msg != "" {
		_, _ = diagnostic(w).Fprintln(w, msg)
	}
	return 1
}

// newLogger returns a debug text logger on w when verbose is set and a
// discard logger otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// diagnostic returns the color used for fatal messages on w. Colors are
// only emitted when w is a terminal.
func diagnostic(w io.Writer) *color.Color {
	c := color.New(color.FgRed)
	if isTerminal(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}

