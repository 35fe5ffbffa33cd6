// Package source acquires the JavaScript text to annotate.
package source

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Stdin is the input target that selects standard input.
const Stdin = "-"

// NotFoundError reports a missing input file.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("error: file not found %s", e.Path)
}

// IsStdin reports whether target selects standard input.
func IsStdin(target string) bool {
	return target == Stdin
}

// Read returns the full text of target: stdin when target is "-",
// otherwise the named file.
func Read(target string, stdin io.Reader) (string, error) {
	if IsStdin(target) {
		if stdin == nil {
			return "", nil
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("error: failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &NotFoundError{Path: target}
		}
		return "", fmt.Errorf("error: %w", err)
	}

	data, err := os.ReadFile(target) //nolint:gosec // G304: input path is supplied by the user
	if err != nil {
		return "", fmt.Errorf("error: %w", err)
	}
	return string(data), nil
}
