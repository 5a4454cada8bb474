package core

import (
	"fmt"
	"io"
)

// ErrorReporter prints a diagnostic for the command at index. argv may be
// empty for errors that aren't tied to a single command.
type ErrorReporter func(name string, index int, argv []string, msg string)

// NewErrorReporter creates an ErrorReporter that writes to w in the form
// "name: index: command: message".
func NewErrorReporter(w io.Writer) ErrorReporter {
	return func(name string, index int, argv []string, msg string) {
		if len(argv) == 0 {
			fmt.Fprintf(w, "%s: %d: %s\n", name, index, msg)
			return
		}
		fmt.Fprintf(w, "%s: %d: %s: %s\n", name, index, argv[0], msg)
	}
}
