package cnab

import (
	"fmt"
	"strings"
)

// StructuralError reports a line that breaks the shape of the file: wrong
// length or bytes outside printable ASCII. Line 0 means the violation applies
// to the file as a whole.
type StructuralError struct {
	Line    int
	Message string
}

func (e StructuralError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ContentError reports a well-shaped line whose field values are invalid.
type ContentError struct {
	Line    int
	Field   string
	Message string
}

func (e ContentError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Message)
}

// ContentErrors collects every content violation found in a file so the
// rejection reason can name them all, not just the first.
type ContentErrors []ContentError

func (es ContentErrors) Error() string {
	return es.Summary()
}

// Summary joins all violations into a single human-readable reason.
func (es ContentErrors) Summary() string {
	if len(es) == 0 {
		return ""
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
