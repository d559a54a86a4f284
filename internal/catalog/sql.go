package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stackmill/wikimport/internal/document"
	"github.com/stackmill/wikimport/internal/logging"
)

// SQLCatalog reads the legacy schema (resource_book_page, resource_tag,
// resource_page_tag) through database/sql. The schema is owned by the legacy
// CMS, so queries stay raw instead of being modeled.
type SQLCatalog struct {
	db     *sql.DB
	logger logging.Logger
}

var _ Catalog = (*SQLCatalog)(nil)

// NewSQLCatalog wraps an open legacy database handle.
func NewSQLCatalog(db *sql.DB, logger logging.Logger) *SQLCatalog {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &SQLCatalog{db: db, logger: logger}
}

func (c *SQLCatalog) OrderedPages(ctx context.Context) ([]PageRef, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT resource_page_id, resource_book_id, display_order
		FROM resource_book_page
		ORDER BY resource_book_id, display_order`)
	if err != nil {
		return nil, fmt.Errorf("catalog: ordered pages: %w", err)
	}
	defer rows.Close()

	var refs []PageRef
	for rows.Next() {
		var ref PageRef
		if err := rows.Scan(&ref.PageID, &ref.BookID, &ref.DisplayOrder); err != nil {
			return nil, fmt.Errorf("catalog: scan page row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: ordered pages: %w", err)
	}
	return refs, nil
}

func (c *SQLCatalog) BooksForPage(ctx context.Context, pageID int) ([]int, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT resource_book_id
		FROM resource_book_page
		WHERE resource_page_id = ?
		ORDER BY resource_book_id`, pageID)
	if err != nil {
		return nil, fmt.Errorf("catalog: books for page %d: %w", pageID, err)
	}
	defer rows.Close()

	var books []int
	for rows.Next() {
		var bookID int
		if err := rows.Scan(&bookID); err != nil {
			return nil, fmt.Errorf("catalog: scan book row: %w", err)
		}
		books = append(books, bookID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: books for page %d: %w", pageID, err)
	}
	return books, nil
}

func (c *SQLCatalog) FirstPageOfBook(ctx context.Context, bookID, pageID int) (bool, error) {
	var firstPageID int
	err := c.db.QueryRowContext(ctx, `
		SELECT resource_page_id
		FROM resource_book_page
		WHERE resource_book_id = ?
		ORDER BY display_order
		LIMIT 1`, bookID).Scan(&firstPageID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("catalog: first page of book %d: %w", bookID, err)
	}
	return firstPageID == pageID, nil
}

func (c *SQLCatalog) TagsForPage(ctx context.Context, pageID int) ([]document.Tag, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT rt.family, rt.name
		FROM resource_tag AS rt
		JOIN resource_page_tag AS rpt ON rpt.resource_tag_id = rt.id
		WHERE rpt.resource_page_id = ?`, pageID)
	if err != nil {
		return nil, fmt.Errorf("catalog: tags for page %d: %w", pageID, err)
	}
	defer rows.Close()

	var tags []document.Tag
	for rows.Next() {
		var tag document.Tag
		if err := rows.Scan(&tag.Name, &tag.Value); err != nil {
			return nil, fmt.Errorf("catalog: scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: tags for page %d: %w", pageID, err)
	}
	return tags, nil
}
