// Package config resolves the ng-annotate run configuration.
//
// Values are layered with koanf in increasing precedence: built-in defaults,
// the ng-annotate-config.json file in the working directory, NG_ANNOTATE_*
// environment variables and finally the command-line flags the user actually
// set. A later layer only overrides keys it provides.
package config

// Config file names searched in the working directory, in order.
var ConfigFileNames = []string{
	"ng-annotate-config.json",
	"ng-annotate-config.yaml",
	"ng-annotate-config.yml",
}

// EnvPrefix is the prefix of environment variables mapped onto config keys,
// e.g. NG_ANNOTATE_SINGLE_QUOTES -> single_quotes.
const EnvPrefix = "NG_ANNOTATE_"

// Flat config keys shared by the config file, environment and flags.
const (
	KeyAdd          = "add"
	KeyRemove       = "remove"
	KeyOutput       = "o"
	KeyRegexp       = "regexp"
	KeyRename       = "rename"
	KeySingleQuotes = "single_quotes"
	KeyPlugin       = "plugin"
	KeyEnable       = "enable"
	KeyStats        = "stats"
	KeySourcemap    = "sourcemap"
	KeySourceRoot   = "sourceroot"
)

// Config is the merged flat configuration before derivation.
type Config struct {
	Add          bool
	Remove       bool
	Output       string
	Regexp       string
	Rename       string
	SingleQuotes bool
	Plugin       []string
	Enable       []string
	Stats        bool
	Sourcemap    bool
	SourceRoot   string

	// FileUsed is the config file that was merged, empty when none was.
	FileUsed string
}
