// Package wiki talks to the destination wiki's REST API. The importer only
// depends on the Client interface so tests can substitute in-memory fakes.
package wiki

import (
	"context"
	"fmt"
	"io"
)

// Tag is a name/value label attached to a destination page.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Book is a destination book summary as returned by the list endpoint.
type Book struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreatePageRequest carries a page creation. Exactly one of BookID or
// ChapterID must be set.
type CreatePageRequest struct {
	Title     string
	Markdown  string
	Tags      []Tag
	BookID    int
	ChapterID int
}

// UpdatePageRequest carries a page republish.
type UpdatePageRequest struct {
	Title    string
	Markdown string
	Tags     []Tag
}

// Client is the wiki surface the import engine consumes. Every call is
// synchronous; a returned error aborts the current document.
type Client interface {
	CreateBook(ctx context.Context, title string) (int, error)
	CreateChapter(ctx context.Context, bookID int, title string) (int, error)
	CreatePage(ctx context.Context, req CreatePageRequest) (int, error)
	UpdatePage(ctx context.Context, bookID, pageID int, req UpdatePageRequest) error
	CreateAttachment(ctx context.Context, filename string, content io.Reader, pageID int) (int, error)
	ListBooks(ctx context.Context) ([]Book, error)
}

// APIError is a wiki API failure, forwarded verbatim to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wiki: api error (status %d): %s", e.StatusCode, e.Message)
}
