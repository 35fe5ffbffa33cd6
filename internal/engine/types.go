package engine

import "time"

// Transformer is the annotation engine contract used by the CLI pipeline.
// Transform is called once per run; a non-empty Result.Errors always
// takes precedence over Result.Src.
type Transformer interface {
	Transform(src string, cfg *Config) *Result
}

// Plugin extends call-site recognition. Handles are consulted in the order
// they were configured.
type Plugin interface {
	// Name identifies the plugin in logs and error messages.
	Name() string
	// Match reports whether <receiver>.<method>("name", fn) is an injectable
	// registration site.
	Match(method string) (bool, error)
}

// Config is the fully resolved run configuration handed to the engine.
type Config struct {
	// Add inserts annotations where missing.
	Add bool
	// Remove strips existing annotations.
	Remove bool
	// Output is the destination path (empty writes to stdout).
	Output string
	// Regexp enables short-form detection: myMod.controller(...) iff myMod matches.
	Regexp string
	// SingleQuotes selects ' instead of " for generated string literals.
	SingleQuotes bool
	// Rename holds old/new name pairs, nil when no renaming was requested.
	Rename []RenameRule
	// Plugins are the loaded plugin handles, in input order.
	Plugins []Plugin
	// Enable lists optional features by name (set semantics).
	Enable []string
	// InFile is the input path, empty when reading standard input.
	InFile string
	// Map requests an inline sourcemap when non-nil.
	Map *SourceMapConfig
	// Stats requests timing statistics in the result.
	Stats bool
	// List asks only for the optional feature names.
	List bool
}

// RenameRule renames a declaration and its annotated references.
type RenameRule struct {
	From string
	// To is nil when the rename list had an odd number of names.
	To *string
}

// SourceMapConfig controls sourcemap generation.
type SourceMapConfig struct {
	Inline     bool
	SourceRoot string
	InFile     string
}

// Result is the outcome of a single Transform call.
type Result struct {
	Src    *string
	Errors []string
	List   []string
	Stats  *Stats
}

// Stats bounds the parser phases inside a Transform call.
type Stats struct {
	ParserRequireStart time.Time
	ParserRequireEnd   time.Time
	ParserParseStart   time.Time
	ParserParseEnd     time.Time
}

// HasErrors reports whether the engine rejected the input.
func (r *Result) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

func errorResult(msgs ...string) *Result {
	return &Result{Errors: msgs}
}
