package parser

import (
	"errors"
	"fmt"

	"github.com/siherrmann/lexgrapher/model"
)

// ErrMissingAncestor is returned when a line opens a record whose required ancestor is not open.
var ErrMissingAncestor = errors.New("missing ancestor")

// LineError describes a structural error on a single input line.
type LineError struct {
	// Line is the 1-based line number, counting skipped blank lines.
	Line int
	// Text is the trimmed line.
	Text string
	// Kind is the record kind the line tried to open.
	Kind model.Kind
	// Missing is the ancestor kind that was not open.
	Missing model.Kind
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s without an open %s: %q", e.Line, e.Kind, e.Missing, e.Text)
}

func (e *LineError) Unwrap() error {
	return ErrMissingAncestor
}
