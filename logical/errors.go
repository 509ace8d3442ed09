package logical

import (
	"fmt"

	"github.com/poiesic/conformit/core"
)

// ParseError describes malformed logical-template text.
// It matches core.ErrParse with errors.Is.
type ParseError struct {
	Pos     int
	Message string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", core.ErrParse, e.Pos, e.Message)
}

// Unwrap returns core.ErrParse.
func (e *ParseError) Unwrap() error {
	return core.ErrParse
}
