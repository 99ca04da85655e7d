package reconcile

import (
	"errors"
	"fmt"
)

// ErrPathEscape is returned when a target path resolves outside the base
// directory.
var ErrPathEscape = errors.New("path escapes base directory")

// ErrTargetClaimed is returned when an entry maps onto a path another entry
// of the same plan already resolved to, and no alternate name was given.
var ErrTargetClaimed = errors.New("target path already planned by another entry")

// ErrDownloadUnsupported is returned when a delete-only planner is asked for
// a download plan.
var ErrDownloadUnsupported = errors.New("planner has no local storage or decision source")

// EntryError records a failure that affected a single selected key or
// expanded entry. It never aborts the rest of the plan.
type EntryError struct {
	Key        string `json:"key"`
	TargetPath string `json:"target_path,omitempty"`
	Err        error  `json:"-"`
}

func (e *EntryError) Error() string {
	if e.TargetPath != "" {
		return fmt.Sprintf("%s -> %s: %v", e.Key, e.TargetPath, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Key, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
