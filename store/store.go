// Package store defines the content store that generated pages are compared
// against and written to.
package store

import (
	"context"
	"strings"
)

// Page is a named text page. A page that does not exist has Exists false
// and an empty Text; that is a normal outcome, not an error.
type Page struct {
	Title  string
	Exists bool
	Text   string
}

// HasContent reports whether the page exists with non-empty text
func (p *Page) HasContent() bool {
	return p != nil && p.Exists && p.Text != ""
}

// Store is the narrow access interface of a wiki-like backend.
//
// Login must be called once before SavePage. Implementations mark
// authentication failures with errors.ErrUnauthorized, and other failures
// with errors.ErrStoreRead or errors.ErrStoreWrite.
type Store interface {
	Login(ctx context.Context) error
	GetPage(ctx context.Context, title string) (*Page, error)
	SavePage(ctx context.Context, title, text, summary string) error
	BaseURL() string
}

// PageURL builds the browser URL of a page. Titles are used as-is;
// characters that need percent-encoding are not handled.
func PageURL(baseURL, title string) string {
	return strings.TrimSuffix(baseURL, "/") + "/index.php/" + title
}
