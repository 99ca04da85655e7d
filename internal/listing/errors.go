package listing

import (
	"errors"
	"fmt"
)

// ErrMissingMarker is reported when a page claims more results but carries
// no continuation marker to fetch them with.
var ErrMissingMarker = errors.New("truncated page without continuation marker")

// ListingError reports a failed page request. Entries from earlier pages of
// the same listing are discarded by the lister.
type ListingError struct {
	Prefix string
	Page   int
	Err    error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("listing %q failed at page %d: %v", e.Prefix, e.Page, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}
