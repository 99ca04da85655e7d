package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"s3sync/internal/listing"
)

// Resolution is the result of resolving one entry. TargetPath is where the
// entry ends up; it differs from OriginalPath after a rename.
type Resolution struct {
	Outcome      Outcome
	TargetPath   string
	OriginalPath string
}

func (r Resolution) Renamed() bool {
	return r.Outcome != OutcomeSkip && r.TargetPath != r.OriginalPath
}

type checkState int

const (
	stateNoConflict checkState = iota
	stateSame
	stateNeedsDecision
	// the path is already taken by an earlier entry of the same plan
	stateClaimed
)

// Resolver classifies a target path against local storage and, on
// conflict, consults the decision source. It only reads from storage.
type Resolver struct {
	storage LocalStorage
	decider Decider
	baseDir string
	claimed mapset.Set[string]
}

// NewResolver returns a Resolver. When baseDir is non-empty, renamed
// candidates must stay inside it.
func NewResolver(storage LocalStorage, decider Decider, baseDir string) *Resolver {
	return &Resolver{
		storage: storage,
		decider: decider,
		baseDir: baseDir,
		claimed: mapset.NewThreadUnsafeSet[string](),
	}
}

// Claim marks path as taken so later entries cannot resolve onto it.
func (r *Resolver) Claim(path string) {
	r.claimed.Add(path)
}

// Resolve runs the conflict protocol for entry at targetPath.
func (r *Resolver) Resolve(ctx context.Context, entry listing.ObjectEntry, targetPath string) (Resolution, error) {
	state, err := r.check(entry, targetPath)
	if err != nil {
		return Resolution{}, err
	}

	switch state {
	case stateNoConflict:
		return Resolution{Outcome: OutcomeFetch, TargetPath: targetPath, OriginalPath: targetPath}, nil
	case stateSame:
		return Resolution{Outcome: OutcomeReuse, TargetPath: targetPath, OriginalPath: targetPath}, nil
	case stateClaimed:
		slog.Debug("target already planned, asking for another name", "key", entry.Key, "path", targetPath)
		res, err := r.renameLoop(ctx, entry, targetPath)
		if err != nil {
			return Resolution{}, err
		}
		if res.Outcome == OutcomeSkip {
			return Resolution{}, fmt.Errorf("%w: %s", ErrTargetClaimed, targetPath)
		}
		return res, nil
	}

	decision, err := r.decider.DecideConflict(ctx, ConflictRequest{Entry: entry, TargetPath: targetPath})
	if err != nil {
		return Resolution{}, fmt.Errorf("conflict decision: %w", err)
	}
	slog.Debug("conflict decided", "key", entry.Key, "path", targetPath, "decision", decision)

	switch decision {
	case DecisionOverwrite:
		return Resolution{Outcome: OutcomeFetch, TargetPath: targetPath, OriginalPath: targetPath}, nil
	case DecisionRename:
		return r.renameLoop(ctx, entry, targetPath)
	default:
		return Resolution{Outcome: OutcomeSkip, TargetPath: targetPath, OriginalPath: targetPath}, nil
	}
}

func (r *Resolver) renameLoop(ctx context.Context, entry listing.ObjectEntry, originalPath string) (Resolution, error) {
	skip := Resolution{Outcome: OutcomeSkip, TargetPath: originalPath, OriginalPath: originalPath}
	current := originalPath

	for {
		name, ok, err := r.decider.ChooseRename(ctx, RenameRequest{
			Entry:             entry,
			CurrentTargetPath: current,
			SuggestedName:     SuggestName(filepath.Base(current)),
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("rename decision: %w", err)
		}

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			slog.Debug("rename cancelled", "key", entry.Key, "path", current)
			return skip, nil
		}

		candidate := filepath.Join(filepath.Dir(current), name)
		if r.baseDir != "" {
			if err := confine(r.baseDir, candidate); err != nil {
				return Resolution{}, err
			}
		}

		state, err := r.check(entry, candidate)
		if err != nil {
			return Resolution{}, err
		}

		switch state {
		case stateNoConflict:
			return Resolution{Outcome: OutcomeFetch, TargetPath: candidate, OriginalPath: originalPath}, nil
		case stateSame:
			return Resolution{Outcome: OutcomeReuse, TargetPath: candidate, OriginalPath: originalPath}, nil
		}

		slog.Debug("renamed target also conflicts", "key", entry.Key, "path", candidate)
		current = candidate
	}
}

// check implements the same-file heuristic: an existing local file is the
// same as the remote entry when their sizes match. An unknown remote size
// never counts as a match.
func (r *Resolver) check(entry listing.ObjectEntry, path string) (checkState, error) {
	if r.claimed.Contains(path) {
		return stateClaimed, nil
	}

	exists, err := r.storage.Exists(path)
	if err != nil {
		return 0, fmt.Errorf("failed to check %s: %w", path, err)
	}
	if !exists {
		return stateNoConflict, nil
	}

	if entry.Size == nil {
		return stateNeedsDecision, nil
	}

	size, err := r.storage.SizeOf(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if size == *entry.Size {
		return stateSame, nil
	}
	return stateNeedsDecision, nil
}
