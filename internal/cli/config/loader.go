package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// flagKeys maps flag names whose config key differs from the flag name.
// The CLI spells the output flag --output/-o, config files use "o".
var flagKeys = map[string]string{
	"output": KeyOutput,
}

// Options controls Load.
type Options struct {
	// Dir is searched for the config file. Empty means the working directory.
	Dir string
	// Flags are the parsed command-line flags. Only flags the user set are applied.
	Flags *pflag.FlagSet
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Load merges defaults, config file, environment and flags into a Config.
// A missing or unparseable config file is treated as empty.
func Load(opts Options) (*Config, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		KeyAdd:          false,
		KeyRemove:       false,
		KeyOutput:       "",
		KeyRegexp:       "",
		KeyRename:       "",
		KeySingleQuotes: false,
		KeyStats:        false,
		KeySourcemap:    false,
		KeySourceRoot:   "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileUsed := loadConfigFile(k, opts.Dir, logger)

	// 3. Environment variables (NG_ANNOTATE_ prefix)
	// Transform: NG_ANNOTATE_SINGLE_QUOTES -> single_quotes
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := f.Name
			if mapped, ok := flagKeys[key]; ok {
				key = mapped
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := &Config{
		Add:          k.Bool(KeyAdd),
		Remove:       k.Bool(KeyRemove),
		Output:       k.String(KeyOutput),
		Regexp:       k.String(KeyRegexp),
		Rename:       k.String(KeyRename),
		SingleQuotes: k.Bool(KeySingleQuotes),
		Plugin:       NormalizeList(k.Get(KeyPlugin)),
		Enable:       Unique(NormalizeList(k.Get(KeyEnable))),
		Stats:        k.Bool(KeyStats),
		Sourcemap:    k.Bool(KeySourcemap),
		SourceRoot:   k.String(KeySourceRoot),
		FileUsed:     fileUsed,
	}

	logger.Debug("resolved config",
		slog.String("file", fileUsed),
		slog.Bool("add", cfg.Add),
		slog.Bool("remove", cfg.Remove),
		slog.Any("plugins", cfg.Plugin),
		slog.Any("enable", cfg.Enable))

	return cfg, nil
}

// loadConfigFile merges the first config file found in dir into k and
// returns its path. Read and parse failures are logged and ignored.
func loadConfigFile(k *koanf.Koanf, dir string, logger *slog.Logger) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		var parser koanf.Parser = json.Parser()
		if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
			parser = yaml.Parser()
		}

		if err := k.Load(file.Provider(path), parser); err != nil {
			logger.Debug("ignoring unreadable config file", slog.String("path", path), slog.Any("error", err))
			return ""
		}
		return path
	}
	return ""
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}
