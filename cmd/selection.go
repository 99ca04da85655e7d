package cmd

import (
	"context"
	"errors"
	"strings"

	"s3sync/internal/listing"
)

var errEmptyKey = errors.New("empty key selected")

// resolveSelection looks every selected key up in its parent folder listing,
// so the planner knows which keys are folders and how large each file is.
// A folder selected without its trailing delimiter is normalized to its
// prefix. Each parent folder is listed once.
func resolveSelection(ctx context.Context, lister *listing.Lister, args []string) ([]string, map[string]listing.ObjectEntry, error) {
	known := make(map[string]listing.ObjectEntry)
	pages := make(map[string]*listing.Page)
	keys := make([]string, 0, len(args))

	for _, arg := range args {
		key := strings.TrimPrefix(arg, listing.Delimiter)
		if key == "" {
			return nil, nil, errEmptyKey
		}

		parent := listing.ParentPrefix(key)
		page, ok := pages[parent]
		if !ok {
			var err error
			page, err = lister.ListPrefix(ctx, parent)
			if err != nil {
				return nil, nil, err
			}
			pages[parent] = page
		}

		if entry, ok := findEntry(page, key); ok {
			key = entry.Key
			known[key] = entry
		}
		keys = append(keys, key)
	}

	return keys, known, nil
}

func findEntry(page *listing.Page, key string) (listing.ObjectEntry, bool) {
	for _, e := range page.Entries {
		if e.Key == key {
			return e, true
		}
	}
	if listing.IsMarkerKey(key) {
		return listing.ObjectEntry{}, false
	}
	for _, e := range page.Entries {
		if e.IsDirectory && e.Key == key+listing.Delimiter {
			return e, true
		}
	}
	return listing.ObjectEntry{}, false
}
