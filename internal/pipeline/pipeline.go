// Package pipeline sequences a single ng-annotate run: acquire input,
// resolve configuration, load plugins, invoke the engine once and dispatch
// the result. Every failure is terminal and returned as an error.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/sod/ng-annotate-patched/internal/cli/config"
	"github.com/sod/ng-annotate-patched/internal/engine"
	"github.com/sod/ng-annotate-patched/internal/plugin"
	"github.com/sod/ng-annotate-patched/internal/source"
)

// Options holds everything a run needs.
type Options struct {
	// Args are the positional arguments; exactly one input target is required.
	Args []string
	// Flags are the parsed command-line flags.
	Flags *pflag.FlagSet
	// List prints the optional feature names and skips everything else.
	List bool
	// Dir is where the config file is looked up. Empty means the working directory.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Engine performs the transformation.
	Engine engine.Transformer
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
	// Start is the process start time used by the stats report.
	Start time.Time
	// Now is the clock (optional, defaults to time.Now).
	Now func() time.Time
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Start.IsZero() {
		o.Start = o.Now()
	}
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	if o.Stderr == nil {
		o.Stderr = io.Discard
	}
	if o.Engine == nil {
		o.Engine = engine.New(o.Logger)
	}
}

// Run executes the pipeline.
func Run(opts Options) error {
	opts.defaults()
	logger := opts.Logger

	if opts.List {
		return runList(opts)
	}

	if len(opts.Args) != 1 {
		return &UsageError{Message: "error: no input file provided"}
	}
	target := opts.Args[0]

	if err := config.ValidateFlags(opts.Flags); err != nil {
		return &UsageError{Message: err.Error()}
	}

	flat, err := config.Load(config.Options{Dir: opts.Dir, Flags: opts.Flags, Logger: logger})
	if err != nil {
		return err
	}

	src, err := source.Read(target, opts.Stdin)
	if err != nil {
		return err
	}
	logger.Debug("read input", slog.String("target", target), slog.Int("bytes", len(src)))

	modules, err := plugin.NewLoader(logger).LoadAll(flat.Plugin)
	if err != nil {
		return err
	}
	plugins := make([]engine.Plugin, len(modules))
	for i, m := range modules {
		plugins[i] = m
	}

	rc := config.Derive(flat, target, plugins)

	runStart := opts.Now()
	res := opts.Engine.Transform(src, rc)
	runEnd := opts.Now()
	logger.Debug("engine finished", slog.Duration("elapsed", runEnd.Sub(runStart)))

	if res.HasErrors() {
		return &TransformError{Messages: res.Errors}
	}

	if rc.Stats && res.Stats != nil {
		report := NewReport(opts.Start, opts.Now(), runStart, runEnd, res.Stats)
		if err := report.Write(opts.Stderr); err != nil {
			return fmt.Errorf("error: failed to write stats: %w", err)
		}
	}

	return dispatch(res, rc, opts.Stdout, logger)
}

// runList prints the engine's optional feature names, one per line.
func runList(opts Options) error {
	res := opts.Engine.Transform("", &engine.Config{List: true})
	if res.HasErrors() {
		return &TransformError{Messages: res.Errors}
	}
	if len(res.List) == 0 {
		return nil
	}
	_, err := io.WriteString(opts.Stdout, strings.Join(res.List, "\n")+"\n")
	return err
}

// dispatch writes the transformed source to the output file or stdout.
// An empty result writes nothing.
func dispatch(res *engine.Result, rc *engine.Config, stdout io.Writer, logger *slog.Logger) error {
	if res.Src == nil || *res.Src == "" {
		logger.Debug("no output produced")
		return nil
	}

	if rc.Output != "" {
		if err := os.WriteFile(rc.Output, []byte(*res.Src), 0o644); err != nil { //nolint:gosec // G306: output is a regular source file
			return &WriteError{Path: rc.Output, Err: err}
		}
		logger.Debug("wrote output", slog.String("path", rc.Output))
		return nil
	}

	_, err := io.WriteString(stdout, *res.Src)
	return err
}
