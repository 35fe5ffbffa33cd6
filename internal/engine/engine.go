// Package engine adds and removes AngularJS dependency injection annotations.
//
// The engine validates the source with esbuild's JavaScript parser, then
// rewrites recognized registration call sites on a token stream so that all
// untouched text is preserved byte for byte.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
)

// Engine implements Transformer.
type Engine struct {
	logger *slog.Logger
	now    func() time.Time

	parserOnce   sync.Once
	parseOpts    api.TransformOptions
	requireStart time.Time
	requireEnd   time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for statistics.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine. A nil logger discards output.
func New(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transform annotates src according to cfg.
func (e *Engine) Transform(src string, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.List {
		return &Result{List: OptionalNames()}
	}

	opts, errs := e.validate(cfg)
	if len(errs) > 0 {
		return errorResult(errs...)
	}

	var short *regexp.Regexp
	if cfg.Regexp != "" {
		re, err := regexp.Compile(cfg.Regexp)
		if err != nil {
			return errorResult(fmt.Sprintf("error: invalid regexp %q: %v", cfg.Regexp, err))
		}
		short = re
	}

	e.initParser()
	parseStart := e.now()
	parsed := api.Transform(src, e.parseOpts)
	parseEnd := e.now()

	if len(parsed.Errors) > 0 {
		msgs := []string{"error: couldn't process source due to parse error"}
		for _, m := range parsed.Errors {
			msgs = append(msgs, formatMessage(m))
		}
		return errorResult(msgs...)
	}

	an := newAnnotator(src, cfg, short, opts)
	out, errs := an.run()
	if len(errs) > 0 {
		return errorResult(errs...)
	}

	if cfg.Map != nil {
		out += inlineSourceMap(src, out, an.origins, cfg.Map)
	}

	e.logger.Debug("transform complete",
		slog.Bool("add", cfg.Add),
		slog.Bool("remove", cfg.Remove),
		slog.Int("plugins", len(cfg.Plugins)),
		slog.Duration("parse", parseEnd.Sub(parseStart)))

	res := &Result{Src: &out}
	if cfg.Stats {
		res.Stats = &Stats{
			ParserRequireStart: e.requireStart,
			ParserRequireEnd:   e.requireEnd,
			ParserParseStart:   parseStart,
			ParserParseEnd:     parseEnd,
		}
	}
	return res
}

// validate checks the parts of cfg the engine rejects outright and returns
// the enabled optionals.
func (e *Engine) validate(cfg *Config) ([]optional, []string) {
	var errs []string
	var opts []optional
	for _, name := range cfg.Enable {
		o, ok := findOptional(name)
		if !ok {
			errs = append(errs, fmt.Sprintf("error: found no optional named %s", name))
			continue
		}
		opts = append(opts, o)
	}
	for _, r := range cfg.Rename {
		if r.To == nil {
			errs = append(errs, fmt.Sprintf("error: rename %q is missing a replacement name", r.From))
		}
	}
	return opts, errs
}

// initParser prepares the esbuild options once per engine and records how
// long that took.
func (e *Engine) initParser() {
	e.parserOnce.Do(func() {
		e.requireStart = e.now()
		e.parseOpts = api.TransformOptions{
			Loader:   api.LoaderJS,
			Format:   api.FormatDefault,
			Target:   api.ESNext,
			LogLevel: api.LogLevelSilent,
		}
		e.requireEnd = e.now()
	})
}

func formatMessage(m api.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s (%d:%d)", m.Text, m.Location.Line, m.Location.Column)
}
