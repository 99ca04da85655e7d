package listing

import "context"

// Expander flattens a virtual directory into the concrete objects beneath it.
type Expander struct {
	lister *Lister
}

func NewExpander(lister *Lister) *Expander {
	return &Expander{lister: lister}
}

// ExpandDownload returns every downloadable object under directoryKey. The
// directory's own placeholder key is never included.
func (e *Expander) ExpandDownload(ctx context.Context, directoryKey string) ([]ObjectEntry, error) {
	entries, err := e.lister.ListAllFlat(ctx, directoryKey)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].IsDirectory = false
	}
	return entries, nil
}

// ExpandDelete returns every key to remove for directoryKey, including the
// placeholder key itself when directoryKey ends with the delimiter.
func (e *Expander) ExpandDelete(ctx context.Context, directoryKey string) ([]string, error) {
	keys, err := e.lister.ListAllKeys(ctx, directoryKey)
	if err != nil {
		return nil, err
	}
	if IsMarkerKey(directoryKey) {
		keys = append(keys, directoryKey)
	}
	return keys, nil
}
