// Package catalog reads the legacy relational catalog that holds the
// structural metadata of the source corpus: which pages belong to which
// books, in what order, and which tags they carry.
package catalog

import (
	"context"

	"github.com/stackmill/wikimport/internal/document"
)

// PageRef is one (page, book, order) membership row of the source catalog.
// A legacy page shared across books appears once per owning book.
type PageRef struct {
	PageID       int
	BookID       int
	DisplayOrder int
}

// Catalog is the read-only port the orchestrator walks. Implementations must
// return rows in a deterministic order so canonical-page assignment is
// stable across runs.
type Catalog interface {
	// OrderedPages lists every membership row ordered by book, then by
	// display order within the book.
	OrderedPages(ctx context.Context) ([]PageRef, error)
	// BooksForPage lists the legacy books owning a page, in catalog order.
	BooksForPage(ctx context.Context, pageID int) ([]int, error)
	// FirstPageOfBook reports whether the page sits first in the book's
	// display order.
	FirstPageOfBook(ctx context.Context, bookID, pageID int) (bool, error)
	// TagsForPage lists (family, name) tag pairs for a page, used when the
	// document's front matter supplied none.
	TagsForPage(ctx context.Context, pageID int) ([]document.Tag, error)
}
