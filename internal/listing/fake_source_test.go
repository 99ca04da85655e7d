package listing

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// fakeSource serves a sorted key set the way an S3-compatible store would,
// including delimiter grouping and continuation markers.
type fakeSource struct {
	keys     []string
	sizes    map[string]int64
	requests []PageRequest
	failAt   int
	err      error
}

func newFakeSource(keys ...string) *fakeSource {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return &fakeSource{keys: sorted, sizes: map[string]int64{}}
}

func (f *fakeSource) ListPage(_ context.Context, req PageRequest) (*RawPage, error) {
	f.requests = append(f.requests, req)
	if f.failAt > 0 && len(f.requests) == f.failAt {
		return nil, f.err
	}

	start := 0
	if req.Marker != "" {
		n, err := strconv.Atoi(req.Marker)
		if err != nil {
			return nil, err
		}
		start = n
	}

	page := &RawPage{}
	seenPrefix := map[string]bool{}
	count := 0
	i := start
	for ; i < len(f.keys) && count < int(req.MaxKeys); i++ {
		key := f.keys[i]
		if !strings.HasPrefix(key, req.Prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, req.Prefix)
		if req.Delimiter != "" {
			if idx := strings.Index(rest, req.Delimiter); idx >= 0 {
				cp := req.Prefix + rest[:idx+len(req.Delimiter)]
				if !seenPrefix[cp] {
					seenPrefix[cp] = true
					page.CommonPrefixes = append(page.CommonPrefixes, cp)
					count++
				}
				continue
			}
		}
		size := f.sizes[key]
		page.Objects = append(page.Objects, ObjectSummary{Key: key, Size: &size})
		count++
	}

	if i < len(f.keys) {
		page.IsTruncated = true
		page.NextMarker = strconv.Itoa(i)
	}
	return page, nil
}
