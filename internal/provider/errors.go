package provider

import (
	"errors"
	"fmt"
)

// ErrUnclassifiable is the sentinel for listing entries that cannot be mapped
// to an extractor identity. These are warnings, not faults: the entry is
// skipped and the run continues.
var ErrUnclassifiable = errors.New("unclassifiable item")

// UnclassifiableError carries the offending entry for logging.
type UnclassifiableError struct {
	Entry  map[string]any
	Reason string
}

func (e *UnclassifiableError) Error() string {
	return fmt.Sprintf("unclassifiable item (%s)", e.Reason)
}

func (e *UnclassifiableError) Unwrap() error { return ErrUnclassifiable }

// FetchError marks a transient provider failure during listing or download.
// It isolates the affected source or video; it never aborts a whole run.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("provider fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether an error is a provider fault that should be
// retried on a later run rather than surfaced as an input error.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
