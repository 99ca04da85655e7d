package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SuggestName inserts " (1)" before the extension of name. A leading dot
// does not start an extension.
func SuggestName(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name + " (1)"
	}
	return name[:dot] + " (1)" + name[dot:]
}

// TargetPath maps a remote key onto baseDir. Keys that normalise outside
// baseDir, or onto baseDir itself, are rejected with ErrPathEscape.
func TargetPath(baseDir, key string) (string, error) {
	base := filepath.Clean(baseDir)
	target := filepath.Join(base, filepath.FromSlash(key))
	if err := confine(base, target); err != nil {
		return "", err
	}
	return target, nil
}

func confine(base, target string) error {
	rel, err := filepath.Rel(filepath.Clean(base), target)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPathEscape, target, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s", ErrPathEscape, target)
	}
	return nil
}
