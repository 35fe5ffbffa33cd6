package pipeline

import "strings"

// UsageError reports malformed or missing command-line arguments. The CLI
// prints the usage text along with the message.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// TransformError carries the messages the engine rejected the input with.
type TransformError struct {
	Messages []string
}

func (e *TransformError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// WriteError reports a failure writing the output file.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }
