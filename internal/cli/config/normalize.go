package config

import (
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/sod/ng-annotate-patched/internal/engine"
	"github.com/sod/ng-annotate-patched/internal/source"
)

// NormalizeList turns a scalar or collection config value into a string
// slice. A single value becomes a one-element slice; empty strings are dropped.
func NormalizeList(v interface{}) []string {
	if v == nil {
		return nil
	}
	var items []string
	if err := mapstructure.WeakDecode(v, &items); err != nil {
		return nil
	}
	out := items[:0]
	for _, s := range items {
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Unique drops repeated entries, keeping the first occurrence.
func Unique(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ParseRename parses "old1 new1 old2 new2 ..." into rename rules, two
// names per rule. It returns nil for blank input. With an odd number of
// names the last rule has a nil To.
func ParseRename(s string) []engine.RenameRule {
	names := strings.Fields(s)
	if len(names) == 0 {
		return nil
	}
	rules := make([]engine.RenameRule, 0, (len(names)+1)/2)
	for i := 0; i < len(names); i += 2 {
		rule := engine.RenameRule{From: names[i]}
		if i+1 < len(names) {
			to := names[i+1]
			rule.To = &to
		}
		rules = append(rules, rule)
	}
	return rules
}

// Derive builds the engine configuration for input target from the merged
// flat config and the loaded plugins.
func Derive(c *Config, target string, plugins []engine.Plugin) *engine.Config {
	rc := &engine.Config{
		Add:          c.Add,
		Remove:       c.Remove,
		Output:       c.Output,
		Regexp:       c.Regexp,
		SingleQuotes: c.SingleQuotes,
		Rename:       ParseRename(c.Rename),
		Plugins:      plugins,
		Enable:       Unique(c.Enable),
		Stats:        c.Stats,
	}

	if !source.IsStdin(target) {
		rc.InFile = target
	}

	if c.Sourcemap {
		rc.Map = &engine.SourceMapConfig{
			Inline:     true,
			SourceRoot: c.SourceRoot,
			InFile:     rc.InFile,
		}
	}

	return rc
}
