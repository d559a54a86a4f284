package syncstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goliatone/go-slug"
	"github.com/uptrace/bun"

	"github.com/stackmill/wikimport/internal/logging"
	"github.com/stackmill/wikimport/internal/transform"
)

var (
	ErrDatabaseRequired    = errors.New("syncstore: database is required")
	ErrBookCreatorRequired = errors.New("syncstore: book creator is required")
)

// BookCreator is the slice of the wiki client the store needs to create a
// destination book on a mapping miss.
type BookCreator interface {
	CreateBook(ctx context.Context, title string) (int, error)
}

// PageRecord carries everything needed to persist a new page mapping. The
// content digest is computed from Body at insert time.
type PageRecord struct {
	LegacyPageID int
	DestPageID   int
	DestBookID   int
	BookSlug     string
	PageSlug     string
	Title        string
	Body         string
}

// Store is the durable legacy-to-destination mapping. It is written by a
// single orchestrating goroutine; at-most-once creation is enforced by
// read-before-write, not by transactional isolation.
type Store struct {
	db     *bun.DB
	books  BookCreator
	logger logging.Logger
}

var _ transform.LinkResolver = (*Store)(nil)

// New builds a Store over the supplied bun database.
func New(db *bun.DB, books BookCreator, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if books == nil {
		return nil, ErrBookCreatorRequired
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Store{db: db, books: books, logger: logger}, nil
}

// Init creates the mapping tables when they do not exist yet. Re-running
// against an existing store is expected and safe.
func (s *Store) Init(ctx context.Context) error {
	models := []any{
		(*BookMapping)(nil),
		(*PageMapping)(nil),
		(*AttachmentMapping)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("syncstore: create table: %w", err)
		}
	}
	return nil
}

// Digest returns the hex-encoded SHA-256 digest of a page body.
func Digest(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// GetOrCreateBook returns the destination id and slug mapped to a legacy
// book, creating the destination book on first encounter. The title is
// supplied lazily because computing it can require parsing a source file.
// A creation failure propagates and aborts the run.
func (s *Store) GetOrCreateBook(ctx context.Context, legacyBookID int, title func() (string, error)) (int, string, error) {
	var mapping BookMapping
	err := s.db.NewSelect().
		Model(&mapping).
		Where("legacy_id = ?", legacyBookID).
		Limit(1).
		Scan(ctx)
	if err == nil {
		return mapping.DestID, mapping.Slug, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, "", fmt.Errorf("syncstore: lookup book %d: %w", legacyBookID, err)
	}

	name, err := title()
	if err != nil {
		return 0, "", fmt.Errorf("syncstore: book %d title: %w", legacyBookID, err)
	}

	destID, err := s.books.CreateBook(ctx, name)
	if err != nil {
		return 0, "", fmt.Errorf("syncstore: create book %d: %w", legacyBookID, err)
	}

	bookSlug, err := slug.Normalize(name)
	if err != nil {
		return 0, "", fmt.Errorf("syncstore: slug for book %q: %w", name, err)
	}

	mapping = BookMapping{
		LegacyID: legacyBookID,
		DestID:   destID,
		Slug:     bookSlug,
	}
	if _, err := s.db.NewInsert().Model(&mapping).Exec(ctx); err != nil {
		return 0, "", fmt.Errorf("syncstore: remember book %d: %w", legacyBookID, err)
	}

	s.logger.Info("book created", "legacy_book_id", legacyBookID, "dest_book_id", destID, "slug", bookSlug)
	return destID, bookSlug, nil
}

// GetPage returns the destination page mapped to a legacy page within one
// destination book.
func (s *Store) GetPage(ctx context.Context, legacyPageID, destBookID int) (int, bool, error) {
	var mapping PageMapping
	err := s.db.NewSelect().
		Model(&mapping).
		Where("legacy_page_id = ?", legacyPageID).
		Where("dest_book_id = ?", destBookID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("syncstore: lookup page %d: %w", legacyPageID, err)
	}
	return mapping.DestPageID, true, nil
}

// PageDetails returns the slug and title recorded for a destination page.
// Reference stubs reuse the canonical page's details for discoverability.
func (s *Store) PageDetails(ctx context.Context, destPageID int) (string, string, bool, error) {
	var mapping PageMapping
	err := s.db.NewSelect().
		Model(&mapping).
		Where("dest_page_id = ?", destPageID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("syncstore: page details %d: %w", destPageID, err)
	}
	return mapping.DestPageSlug, mapping.DestPageTitle, true, nil
}

// ContentChanged reports whether the body differs from the digest recorded
// for the page. When it does, the stored digest is updated as a side effect
// so a later call within the same run reflects the new content.
func (s *Store) ContentChanged(ctx context.Context, destBookID, destPageID int, body string) (bool, error) {
	digest := Digest(body)

	var mapping PageMapping
	err := s.db.NewSelect().
		Model(&mapping).
		Where("dest_book_id = ?", destBookID).
		Where("dest_page_id = ?", destPageID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("syncstore: lookup digest for page %d: %w", destPageID, err)
	}

	if mapping.ContentDigest == digest {
		return false, nil
	}

	_, err = s.db.NewUpdate().
		Model((*PageMapping)(nil)).
		Set("content_digest = ?", digest).
		Where("dest_book_id = ?", destBookID).
		Where("dest_page_id = ?", destPageID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("syncstore: update digest for page %d: %w", destPageID, err)
	}
	return true, nil
}

// RememberPage inserts a new page mapping with the computed content digest.
// Called exactly once per page creation.
func (s *Store) RememberPage(ctx context.Context, rec PageRecord) error {
	mapping := PageMapping{
		LegacyPageID:  rec.LegacyPageID,
		DestPageID:    rec.DestPageID,
		DestBookID:    rec.DestBookID,
		DestBookSlug:  rec.BookSlug,
		DestPageSlug:  rec.PageSlug,
		DestPageTitle: rec.Title,
		ContentDigest: Digest(rec.Body),
	}
	if _, err := s.db.NewInsert().Model(&mapping).Exec(ctx); err != nil {
		return fmt.Errorf("syncstore: remember page %d: %w", rec.LegacyPageID, err)
	}
	return nil
}

// ResolvePage satisfies transform.LinkResolver by locating the destination
// address for a legacy page, whichever destination book it landed in first.
func (s *Store) ResolvePage(ctx context.Context, legacyPageID int) (transform.PageLink, bool, error) {
	var mapping PageMapping
	err := s.db.NewSelect().
		Model(&mapping).
		Where("legacy_page_id = ?", legacyPageID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return transform.PageLink{}, false, nil
	}
	if err != nil {
		return transform.PageLink{}, false, fmt.Errorf("syncstore: resolve page %d: %w", legacyPageID, err)
	}
	return transform.PageLink{BookSlug: mapping.DestBookSlug, PageSlug: mapping.DestPageSlug}, true, nil
}

// ResolveAttachment satisfies transform.LinkResolver by locating the
// destination id recorded for an attachment filename.
func (s *Store) ResolveAttachment(ctx context.Context, filename string) (int, bool, error) {
	var mapping AttachmentMapping
	err := s.db.NewSelect().
		Model(&mapping).
		Where("filename = ?", filename).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("syncstore: resolve attachment %s: %w", filename, err)
	}
	return mapping.DestAttachmentID, true, nil
}

// AttachmentExists reports whether an attachment was already uploaded to the
// destination page.
func (s *Store) AttachmentExists(ctx context.Context, filename string, destPageID int) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*AttachmentMapping)(nil)).
		Where("filename = ?", filename).
		Where("dest_page_id = ?", destPageID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("syncstore: attachment exists %s: %w", filename, err)
	}
	return exists, nil
}

// RecordAttachment persists the destination id assigned to an uploaded
// attachment.
func (s *Store) RecordAttachment(ctx context.Context, filename string, destPageID, destAttachmentID int) error {
	mapping := AttachmentMapping{
		Filename:         filename,
		DestPageID:       destPageID,
		DestAttachmentID: destAttachmentID,
	}
	if _, err := s.db.NewInsert().Model(&mapping).Exec(ctx); err != nil {
		return fmt.Errorf("syncstore: record attachment %s: %w", filename, err)
	}
	return nil
}
