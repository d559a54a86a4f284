package catalog

import (
	"context"
	"sort"

	"github.com/stackmill/wikimport/internal/document"
)

// MemoryCatalog is an in-memory implementation for scaffolding and tests.
type MemoryCatalog struct {
	refs []PageRef
	tags map[int][]document.Tag
}

var _ Catalog = (*MemoryCatalog)(nil)

// NewMemoryCatalog builds a catalog from the supplied membership rows and an
// optional tag table keyed by legacy page id.
func NewMemoryCatalog(refs []PageRef, tags map[int][]document.Tag) *MemoryCatalog {
	if tags == nil {
		tags = map[int][]document.Tag{}
	}
	return &MemoryCatalog{
		refs: append([]PageRef(nil), refs...),
		tags: tags,
	}
}

func (m *MemoryCatalog) OrderedPages(_ context.Context) ([]PageRef, error) {
	ordered := append([]PageRef(nil), m.refs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].BookID != ordered[j].BookID {
			return ordered[i].BookID < ordered[j].BookID
		}
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})
	return ordered, nil
}

func (m *MemoryCatalog) BooksForPage(_ context.Context, pageID int) ([]int, error) {
	var books []int
	for _, ref := range m.refs {
		if ref.PageID == pageID {
			books = append(books, ref.BookID)
		}
	}
	sort.Ints(books)
	return books, nil
}

func (m *MemoryCatalog) FirstPageOfBook(_ context.Context, bookID, pageID int) (bool, error) {
	first := -1
	firstOrder := 0
	for _, ref := range m.refs {
		if ref.BookID != bookID {
			continue
		}
		if first == -1 || ref.DisplayOrder < firstOrder {
			first = ref.PageID
			firstOrder = ref.DisplayOrder
		}
	}
	return first != -1 && first == pageID, nil
}

func (m *MemoryCatalog) TagsForPage(_ context.Context, pageID int) ([]document.Tag, error) {
	return append([]document.Tag(nil), m.tags[pageID]...), nil
}
