// Package listing enumerates a remote object store's key space and presents it
// as a virtual directory tree built from key prefixes and a delimiter.
package listing

import (
	"context"
	"path"
	"strings"
	"time"
)

const (
	// Delimiter separates the virtual directory levels of a key.
	Delimiter = "/"

	// MaxKeys is the page size ceiling imposed by the remote store.
	MaxKeys = 1000
)

// ObjectEntry is a single row of a listing: either a virtual directory
// (derived from a common prefix) or an object.
type ObjectEntry struct {
	Key          string     `json:"key"`
	DisplayName  string     `json:"display_name"`
	IsDirectory  bool       `json:"is_directory"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// Page is one ordered slice of a listing.
type Page struct {
	Entries     []ObjectEntry `json:"entries"`
	NextMarker  string        `json:"next_marker,omitempty"`
	IsTruncated bool          `json:"is_truncated"`
}

// Directories returns the directory entries of the page.
func (p *Page) Directories() []ObjectEntry {
	var dirs []ObjectEntry
	for _, e := range p.Entries {
		if e.IsDirectory {
			dirs = append(dirs, e)
		}
	}
	return dirs
}

// Files returns the object entries of the page.
func (p *Page) Files() []ObjectEntry {
	var files []ObjectEntry
	for _, e := range p.Entries {
		if !e.IsDirectory {
			files = append(files, e)
		}
	}
	return files
}

// PageRequest describes a single listing call against the remote store.
type PageRequest struct {
	Prefix    string
	Delimiter string
	MaxKeys   int32
	Marker    string
}

// ObjectSummary is the per-object metadata returned by a listing call.
type ObjectSummary struct {
	Key          string
	Size         *int64
	LastModified *time.Time
}

// RawPage is the unprocessed response of a listing call.
type RawPage struct {
	CommonPrefixes []string
	Objects        []ObjectSummary
	NextMarker     string
	IsTruncated    bool
}

// PageSource performs one listing call. Implementations must not retry
// internally in a way that changes the returned page.
type PageSource interface {
	ListPage(ctx context.Context, req PageRequest) (*RawPage, error)
}

// IsMarkerKey reports whether key is a directory placeholder object.
func IsMarkerKey(key string) bool {
	return strings.HasSuffix(key, Delimiter)
}

// BaseName returns the last segment of a key, ignoring a trailing delimiter.
func BaseName(key string) string {
	trimmed := strings.TrimSuffix(key, Delimiter)
	if i := strings.LastIndex(trimmed, Delimiter); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// ParentPrefix returns the prefix under which key is listed one level up.
// Keys at the top level have an empty parent prefix.
func ParentPrefix(key string) string {
	trimmed := strings.TrimSuffix(key, Delimiter)
	dir := path.Dir(trimmed)
	if dir == "." || dir == Delimiter {
		return ""
	}
	return dir + Delimiter
}

// DirectoryPrefix normalises a user supplied prefix so it names a directory.
func DirectoryPrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, Delimiter)
	if prefix != "" && !IsMarkerKey(prefix) {
		prefix += Delimiter
	}
	return prefix
}
