package bill

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no bill record matches a business id.
var ErrNotFound = errors.New("bill not found")

// ValidationError indicates a structurally invalid bill request. It is
// surfaced to the caller as a 400 with the reason; nothing is persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RenderError indicates a per-request rendering failure. The persisted
// record is unaffected: if persistence already succeeded, the bill stays
// durable even when its render fails.
type RenderError struct {
	Format Format
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s document: %s", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
