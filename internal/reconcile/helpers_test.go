package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"s3sync/internal/listing"
	"s3sync/internal/localfs"
)

type renameAnswer struct {
	name    string
	cancel  bool
	suggest bool
}

type scriptedDecider struct {
	decisions    []Decision
	renames      []renameAnswer
	conflictReqs []ConflictRequest
	renameReqs   []RenameRequest
}

func (d *scriptedDecider) DecideConflict(_ context.Context, req ConflictRequest) (Decision, error) {
	d.conflictReqs = append(d.conflictReqs, req)
	if len(d.decisions) == 0 {
		return DecisionSkip, errors.New("unexpected conflict prompt")
	}
	next := d.decisions[0]
	d.decisions = d.decisions[1:]
	return next, nil
}

func (d *scriptedDecider) ChooseRename(_ context.Context, req RenameRequest) (string, bool, error) {
	d.renameReqs = append(d.renameReqs, req)
	if len(d.renames) == 0 {
		return "", false, errors.New("unexpected rename prompt")
	}
	next := d.renames[0]
	d.renames = d.renames[1:]
	switch {
	case next.cancel:
		return "", false, nil
	case next.suggest:
		return req.SuggestedName, true, nil
	}
	return next.name, true, nil
}

type fakeExpander struct {
	dirs  map[string][]listing.ObjectEntry
	keys  map[string][]string
	fails map[string]error
	calls []string
}

func (f *fakeExpander) ExpandDownload(_ context.Context, key string) ([]listing.ObjectEntry, error) {
	f.calls = append(f.calls, key)
	if err := f.fails[key]; err != nil {
		return nil, err
	}
	return f.dirs[key], nil
}

func (f *fakeExpander) ExpandDelete(_ context.Context, key string) ([]string, error) {
	f.calls = append(f.calls, key)
	if err := f.fails[key]; err != nil {
		return nil, err
	}
	return append(append([]string(nil), f.keys[key]...), key), nil
}

func fileEntry(key string, size int64) listing.ObjectEntry {
	return listing.ObjectEntry{Key: key, DisplayName: listing.BaseName(key), Size: &size}
}

func memStorage(t *testing.T, files map[string]string) (*localfs.Storage, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return localfs.New(fs), fs
}

func sized(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
