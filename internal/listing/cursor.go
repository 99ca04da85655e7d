package listing

import (
	"context"
	"errors"
)

var errCursorExhausted = errors.New("page cursor exhausted")

// PageCursor drives consecutive page requests for one prefix, carrying the
// continuation marker of each page into the next request.
type PageCursor struct {
	source  PageSource
	request PageRequest
	done    bool
	pages   int
}

// NewPageCursor returns a cursor positioned before the first page. An empty
// delimiter requests a flat listing; marker may resume an earlier listing.
func NewPageCursor(source PageSource, prefix, delimiter, marker string) *PageCursor {
	return &PageCursor{
		source: source,
		request: PageRequest{
			Prefix:    prefix,
			Delimiter: delimiter,
			MaxKeys:   MaxKeys,
			Marker:    marker,
		},
	}
}

// More reports whether another page may be requested.
func (c *PageCursor) More() bool {
	return !c.done
}

// Pages returns the number of page requests issued so far.
func (c *PageCursor) Pages() int {
	return c.pages
}

// Marker returns the marker the next request will carry.
func (c *PageCursor) Marker() string {
	return c.request.Marker
}

// Next requests the next page. After a non-truncated page or any error the
// cursor is exhausted and further calls fail.
func (c *PageCursor) Next(ctx context.Context) (*RawPage, error) {
	if c.done {
		return nil, errCursorExhausted
	}

	c.pages++
	page, err := c.source.ListPage(ctx, c.request)
	if err != nil {
		c.done = true
		return nil, &ListingError{Prefix: c.request.Prefix, Page: c.pages, Err: err}
	}

	if !page.IsTruncated {
		c.done = true
		c.request.Marker = ""
		return page, nil
	}

	if page.NextMarker == "" {
		c.done = true
		return nil, &ListingError{Prefix: c.request.Prefix, Page: c.pages, Err: ErrMissingMarker}
	}

	c.request.Marker = page.NextMarker
	return page, nil
}
