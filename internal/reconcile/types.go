// Package reconcile decides, for every remote object selected for sync, whether
// it must be fetched, can reuse an existing local file, or is skipped.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"s3sync/internal/listing"
)

// Decision is the answer of a decision source to a conflict.
// The zero value is DecisionSkip, so a dismissed prompt skips.
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionOverwrite
	DecisionRename
)

func (d Decision) String() string {
	switch d {
	case DecisionOverwrite:
		return "overwrite"
	case DecisionRename:
		return "rename"
	default:
		return "skip"
	}
}

// ParseDecision parses the textual form produced by Decision.String.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite":
		return DecisionOverwrite, nil
	case "rename":
		return DecisionRename, nil
	case "skip":
		return DecisionSkip, nil
	}
	return DecisionSkip, fmt.Errorf("unknown conflict decision %q", s)
}

// Outcome is the final per-entry result of reconciliation.
type Outcome int

const (
	OutcomeSkip Outcome = iota
	OutcomeFetch
	OutcomeReuse
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFetch:
		return "fetch"
	case OutcomeReuse:
		return "reuse"
	default:
		return "skip"
	}
}

// Mode selects what a plan is built for.
type Mode int

const (
	ModeDownload Mode = iota
	ModeDelete
)

func (m Mode) String() string {
	if m == ModeDelete {
		return "delete"
	}
	return "download"
}

// ConflictRequest is raised when TargetPath exists locally and is not
// provably the same file as Entry.
type ConflictRequest struct {
	Entry      listing.ObjectEntry
	TargetPath string
}

// RenameRequest asks for an alternate file name for Entry.
type RenameRequest struct {
	Entry             listing.ObjectEntry
	CurrentTargetPath string
	SuggestedName     string
}

// Decider is the external decision source. Each call blocks until answered.
// ChooseRename returns ok=false when the user cancels.
type Decider interface {
	DecideConflict(ctx context.Context, req ConflictRequest) (Decision, error)
	ChooseRename(ctx context.Context, req RenameRequest) (name string, ok bool, err error)
}

// LocalStorage is the read side of the local storage collaborator.
type LocalStorage interface {
	Exists(path string) (bool, error)
	SizeOf(path string) (int64, error)
}

// DirectoryExpander flattens virtual directories into their objects.
type DirectoryExpander interface {
	ExpandDownload(ctx context.Context, directoryKey string) ([]listing.ObjectEntry, error)
	ExpandDelete(ctx context.Context, directoryKey string) ([]string, error)
}
