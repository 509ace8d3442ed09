package ecl

import (
	"fmt"

	"github.com/poiesic/conformit/core"
)

// ErrInvalidTemplate is returned when a template cannot be compiled.
var ErrInvalidTemplate = fmt.Errorf("ecl: %w", core.ErrInvalidTemplate)

// UnresolvedSlotError reports a slot reference with no declared binding.
type UnresolvedSlotError struct {
	Name string
}

func (e *UnresolvedSlotError) Error() string {
	return fmt.Sprintf("unresolved slot reference %q", e.Name)
}
