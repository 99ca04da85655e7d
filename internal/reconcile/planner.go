package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"s3sync/internal/listing"
)

// Request describes one reconciliation run.
type Request struct {
	// Keys are the selected remote keys, files and directories mixed.
	Keys []string
	// Known holds the cached listing entries for selected keys, if any.
	Known map[string]listing.ObjectEntry
	// BaseDir is the local root that keys are mapped onto.
	BaseDir string
	Mode    Mode
}

// Plan is the outcome of a reconciliation run. In download mode ToFetch,
// Reused and Skipped are keyed by local target path and are pairwise
// disjoint. In delete mode only ToDelete is populated.
type Plan struct {
	Mode     Mode
	BaseDir  string
	ToFetch  map[string]listing.ObjectEntry
	Reused   mapset.Set[string]
	Skipped  mapset.Set[string]
	ToDelete []string
	Failures []*EntryError
	// Sources maps every planned target path back to its remote key.
	Sources map[string]string
}

func newPlan(mode Mode, baseDir string) *Plan {
	return &Plan{
		Mode:    mode,
		BaseDir: baseDir,
		ToFetch: make(map[string]listing.ObjectEntry),
		Reused:  mapset.NewThreadUnsafeSet[string](),
		Skipped: mapset.NewThreadUnsafeSet[string](),
		Sources: make(map[string]string),
	}
}

// Summary holds the aggregate counts of a plan.
type Summary struct {
	ToFetch  int `json:"to_fetch"`
	Reused   int `json:"reused"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
	ToDelete int `json:"to_delete"`
}

func (p *Plan) Summary() Summary {
	return Summary{
		ToFetch:  len(p.ToFetch),
		Reused:   p.Reused.Cardinality(),
		Skipped:  p.Skipped.Cardinality(),
		Failed:   len(p.Failures),
		ToDelete: len(p.ToDelete),
	}
}

// FetchTargets returns the target paths to fetch in a stable order.
func (p *Plan) FetchTargets() []string {
	targets := make([]string, 0, len(p.ToFetch))
	for target := range p.ToFetch {
		targets = append(targets, target)
	}
	slices.Sort(targets)
	return targets
}

func (p *Plan) record(entry listing.ObjectEntry, res Resolution) {
	switch res.Outcome {
	case OutcomeFetch:
		p.ToFetch[res.TargetPath] = entry
	case OutcomeReuse:
		p.Reused.Add(res.TargetPath)
	default:
		p.Skipped.Add(res.TargetPath)
	}
	p.Sources[res.TargetPath] = entry.Key
}

func (p *Plan) fail(key, target string, err error) {
	slog.Warn("entry failed", "key", key, "path", target, "error", err)
	p.Failures = append(p.Failures, &EntryError{Key: key, TargetPath: target, Err: err})
}

// Planner builds reconciliation plans. Entries are processed one at a time,
// so at most one decision request is outstanding.
type Planner struct {
	expander DirectoryExpander
	storage  LocalStorage
	decider  Decider
}

func NewPlanner(expander DirectoryExpander, storage LocalStorage, decider Decider) *Planner {
	return &Planner{
		expander: expander,
		storage:  storage,
		decider:  decider,
	}
}

// NewDeletePlanner returns a planner for delete mode only. Deleting never
// looks at local files or asks questions, so it needs just the expander.
func NewDeletePlanner(expander DirectoryExpander) *Planner {
	return &Planner{expander: expander}
}

// Plan expands the selection and, in download mode, resolves every entry.
// Per-entry failures, including a failed directory expansion, are collected
// in Plan.Failures. Only context cancellation aborts the run.
func (p *Planner) Plan(ctx context.Context, req Request) (*Plan, error) {
	if req.Mode == ModeDelete {
		return p.planDelete(ctx, req)
	}
	if p.storage == nil || p.decider == nil {
		return nil, ErrDownloadUnsupported
	}
	return p.planDownload(ctx, req)
}

func (p *Planner) planDownload(ctx context.Context, req Request) (*Plan, error) {
	plan := newPlan(ModeDownload, req.BaseDir)

	var order []string
	merged := make(map[string]listing.ObjectEntry)
	add := func(entry listing.ObjectEntry) {
		if _, ok := merged[entry.Key]; !ok {
			order = append(order, entry.Key)
		}
		merged[entry.Key] = entry
	}

	for _, key := range uniqueKeys(req.Keys) {
		entry, known := req.Known[key]
		if isDirectory(key, entry, known) {
			children, err := p.expander.ExpandDownload(ctx, key)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				plan.fail(key, "", err)
				continue
			}
			for _, child := range children {
				add(child)
			}
			continue
		}
		if !known {
			entry = listing.ObjectEntry{Key: key, DisplayName: listing.BaseName(key)}
		}
		add(entry)
	}

	resolver := NewResolver(p.storage, p.decider, req.BaseDir)
	for _, key := range order {
		entry := merged[key]

		target, err := TargetPath(req.BaseDir, key)
		if err != nil {
			plan.fail(key, "", err)
			continue
		}

		res, err := resolver.Resolve(ctx, entry, target)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			plan.fail(key, target, err)
			continue
		}

		slog.Debug("entry resolved", "key", key, "outcome", res.Outcome, "path", res.TargetPath, "renamed", res.Renamed())
		plan.record(entry, res)
		resolver.Claim(res.TargetPath)
	}

	return plan, nil
}

func (p *Planner) planDelete(ctx context.Context, req Request) (*Plan, error) {
	plan := newPlan(ModeDelete, req.BaseDir)
	seen := make(map[string]struct{})
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		plan.ToDelete = append(plan.ToDelete, key)
	}

	for _, key := range uniqueKeys(req.Keys) {
		entry, known := req.Known[key]
		if !isDirectory(key, entry, known) {
			add(key)
			continue
		}
		keys, err := p.expander.ExpandDelete(ctx, key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			plan.fail(key, "", err)
			continue
		}
		for _, k := range keys {
			add(k)
		}
	}

	return plan, nil
}

// isDirectory treats a key as a virtual directory when the cached listing
// says so or when it is a placeholder key.
func isDirectory(key string, entry listing.ObjectEntry, known bool) bool {
	if known && entry.IsDirectory {
		return true
	}
	return listing.IsMarkerKey(key)
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
