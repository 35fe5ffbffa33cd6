package config

import (
	"errors"

	"github.com/spf13/pflag"
)

// ErrNoMode is returned when neither add nor remove was requested.
var ErrNoMode = errors.New("error: missing option --add and/or --remove")

// ValidateFlags checks that the command line requests at least one of
// --add or --remove. The config file and environment cannot supply the
// mode on their own.
func ValidateFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return ErrNoMode
	}
	for _, name := range []string{KeyAdd, KeyRemove} {
		if on, err := fs.GetBool(name); err == nil && on {
			return nil
		}
	}
	return ErrNoMode
}
