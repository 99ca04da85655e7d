package listing

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
)

// Lister turns paged listing calls into one-level directory views and flat
// object sets.
type Lister struct {
	source PageSource
}

func NewLister(source PageSource) *Lister {
	return &Lister{source: source}
}

// ListPrefixPage fetches a single delimiter page under prefix, starting at
// marker, and returns it with directories first and files second.
func (l *Lister) ListPrefixPage(ctx context.Context, prefix, marker string) (*Page, error) {
	cursor := NewPageCursor(l.source, prefix, Delimiter, marker)
	raw, err := cursor.Next(ctx)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Entries:     levelEntries(prefix, raw.CommonPrefixes, raw.Objects),
		IsTruncated: raw.IsTruncated,
	}
	if raw.IsTruncated {
		page.NextMarker = raw.NextMarker
	}
	return page, nil
}

// ListPrefix returns every entry directly under prefix. All pages are
// fetched before ordering so directories always precede files.
func (l *Lister) ListPrefix(ctx context.Context, prefix string) (*Page, error) {
	cursor := NewPageCursor(l.source, prefix, Delimiter, "")

	var prefixes []string
	var objects []ObjectSummary
	for cursor.More() {
		raw, err := cursor.Next(ctx)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, raw.CommonPrefixes...)
		objects = append(objects, raw.Objects...)
	}

	slog.Debug("listed prefix", "prefix", prefix, "pages", cursor.Pages(), "directories", len(prefixes), "objects", len(objects))

	return &Page{Entries: levelEntries(prefix, prefixes, objects)}, nil
}

// ListAllFlat returns every object under prefix at any depth, in arrival
// order. Blank keys and directory placeholder keys are excluded and each key
// appears once.
func (l *Lister) ListAllFlat(ctx context.Context, prefix string) ([]ObjectEntry, error) {
	var entries []ObjectEntry
	err := l.walkFlat(ctx, prefix, func(obj ObjectSummary) {
		entries = append(entries, ObjectEntry{
			Key:          obj.Key,
			DisplayName:  BaseName(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAllKeys is the lightweight variant of ListAllFlat that keeps only keys.
func (l *Lister) ListAllKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := l.walkFlat(ctx, prefix, func(obj ObjectSummary) {
		keys = append(keys, obj.Key)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (l *Lister) walkFlat(ctx context.Context, prefix string, yield func(ObjectSummary)) error {
	cursor := NewPageCursor(l.source, prefix, "", "")
	seen := make(map[string]struct{})

	for cursor.More() {
		raw, err := cursor.Next(ctx)
		if err != nil {
			return err
		}
		for _, obj := range raw.Objects {
			if strings.TrimSpace(obj.Key) == "" || IsMarkerKey(obj.Key) {
				continue
			}
			if _, dup := seen[obj.Key]; dup {
				continue
			}
			seen[obj.Key] = struct{}{}
			yield(obj)
		}
	}

	slog.Debug("listed flat", "prefix", prefix, "pages", cursor.Pages(), "objects", len(seen))
	return nil
}

// levelEntries builds the one-level view of prefix from common prefixes and
// object summaries. It is a pure function of its inputs.
func levelEntries(prefix string, commonPrefixes []string, objects []ObjectSummary) []ObjectEntry {
	dirs := make([]ObjectEntry, 0, len(commonPrefixes))
	seen := make(map[string]struct{}, len(commonPrefixes))
	for _, key := range commonPrefixes {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		dirs = append(dirs, ObjectEntry{
			Key:         key,
			DisplayName: strings.TrimSuffix(strings.TrimPrefix(key, prefix), Delimiter),
			IsDirectory: true,
		})
	}

	files := make([]ObjectEntry, 0, len(objects))
	for _, obj := range objects {
		// the placeholder object of the listed directory itself
		if obj.Key == prefix {
			continue
		}
		files = append(files, ObjectEntry{
			Key:          obj.Key,
			DisplayName:  strings.TrimPrefix(obj.Key, prefix),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	byName := func(a, b ObjectEntry) int {
		return cmp.Compare(a.DisplayName, b.DisplayName)
	}
	slices.SortStableFunc(dirs, byName)
	slices.SortStableFunc(files, byName)

	return append(dirs, files...)
}
