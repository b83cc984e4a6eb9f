package fields

import (
	"fmt"
	"reflect"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNotFieldBearing is returned for types no adapter supports. It means
	// "not applicable", not failure.
	ErrNotFieldBearing = errors.Base("not a field-bearing type")

	// ErrExtraction is the cause shared by all ExtractionError values.
	ErrExtraction = errors.Base("field extraction failed")
)

// ExtractionError reports a type that an adapter claimed but could not
// read, typically because a declaration is malformed.
type ExtractionError struct {
	Type       reflect.Type
	Convention Convention
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrExtraction, e.Type, e.Convention, e.Err)
}

// Unwrap exposes both ErrExtraction and the underlying cause.
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}
