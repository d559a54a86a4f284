// Package importer walks the source corpus in catalog order and mirrors it
// into the destination wiki. The first book owning a page receives the full
// page content; every other owner receives a stub that transcludes the
// canonical page. Re-runs are cheap: unchanged content makes no wiki calls.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goliatone/go-slug"

	"github.com/stackmill/wikimport/internal/catalog"
	"github.com/stackmill/wikimport/internal/document"
	"github.com/stackmill/wikimport/internal/logging"
	"github.com/stackmill/wikimport/internal/syncstore"
	"github.com/stackmill/wikimport/internal/transform"
	"github.com/stackmill/wikimport/internal/wiki"
)

var (
	// ErrRootRequired signals that no corpus root directory was configured.
	ErrRootRequired = errors.New("importer: corpus root is required")
	// ErrStoreRequired signals that no sync store was configured.
	ErrStoreRequired = errors.New("importer: sync store is required")
	// ErrCatalogRequired signals that no source catalog was configured.
	ErrCatalogRequired = errors.New("importer: source catalog is required")
	// ErrWikiRequired signals that no wiki client was configured.
	ErrWikiRequired = errors.New("importer: wiki client is required")
	// ErrTransformerRequired signals that no transformer was configured.
	ErrTransformerRequired = errors.New("importer: transformer is required")
)

// Store is the slice of the sync store the orchestrator needs.
type Store interface {
	GetOrCreateBook(ctx context.Context, legacyBookID int, title func() (string, error)) (int, string, error)
	GetPage(ctx context.Context, legacyPageID, destBookID int) (int, bool, error)
	PageDetails(ctx context.Context, destPageID int) (string, string, bool, error)
	ContentChanged(ctx context.Context, destBookID, destPageID int, body string) (bool, error)
	RememberPage(ctx context.Context, rec syncstore.PageRecord) error
	AttachmentExists(ctx context.Context, filename string, destPageID int) (bool, error)
	RecordAttachment(ctx context.Context, filename string, destPageID, destAttachmentID int) error
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Root        string
	Store       Store
	Catalog     catalog.Catalog
	Wiki        wiki.Client
	Transformer *transform.Transformer
	Logger      logging.Logger
}

// Importer drives the batch import.
type Importer struct {
	root        string
	store       Store
	catalog     catalog.Catalog
	wiki        wiki.Client
	transformer *transform.Transformer
	logger      logging.Logger
}

// Result summarizes one batch run.
type Result struct {
	Created     int
	Updated     int
	Skipped     int
	Stubs       int
	Attachments int
}

// New validates the configuration and returns a ready importer.
func New(cfg Config) (*Importer, error) {
	if cfg.Root == "" {
		return nil, ErrRootRequired
	}
	if cfg.Store == nil {
		return nil, ErrStoreRequired
	}
	if cfg.Catalog == nil {
		return nil, ErrCatalogRequired
	}
	if cfg.Wiki == nil {
		return nil, ErrWikiRequired
	}
	if cfg.Transformer == nil {
		return nil, ErrTransformerRequired
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Importer{
		root:        cfg.Root,
		store:       cfg.Store,
		catalog:     cfg.Catalog,
		wiki:        cfg.Wiki,
		transformer: cfg.Transformer,
		logger:      logger,
	}, nil
}

// Run imports every cataloged page that has a document on disk, visiting
// pages in (book, display order) sequence. The first failing document aborts
// the batch; a re-run picks up where the failed run left off.
func (i *Importer) Run(ctx context.Context) (*Result, error) {
	docs, err := i.scanCorpus()
	if err != nil {
		return nil, err
	}

	refs, err := i.catalog.OrderedPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("importer: list catalog pages: %w", err)
	}

	acc := newRunAccumulator()
	seen := map[int]bool{}

	for _, ref := range refs {
		if seen[ref.PageID] {
			continue
		}

		doc, ok := docs[ref.PageID]
		if !ok {
			i.logger.Debug("no document for cataloged page", "legacy_page_id", ref.PageID)
			continue
		}
		seen[ref.PageID] = true

		if err := i.importDoc(ctx, doc, acc); err != nil {
			return acc.result(), err
		}
	}

	return acc.result(), nil
}

// importDoc publishes a document into every book that owns it. The first
// owning book gets the canonical page and its attachments; the rest get
// transclusion stubs pointing at the canonical page.
func (i *Importer) importDoc(ctx context.Context, doc document.SourceDocument, acc *runAccumulator) error {
	logger := logging.WithDocumentContext(i.logger, doc.Path, doc.PageID, "")

	bookIDs, err := i.catalog.BooksForPage(ctx, doc.PageID)
	if err != nil {
		return fmt.Errorf("importer: list books for page %d: %w", doc.PageID, err)
	}

	canonicalPageID := 0
	for _, legacyBookID := range bookIDs {
		destBookID, bookSlug, err := i.store.GetOrCreateBook(ctx, legacyBookID, i.bookTitleFn(ctx, legacyBookID, doc))
		if err != nil {
			return err
		}

		destPageID, exists, err := i.store.GetPage(ctx, doc.PageID, destBookID)
		if err != nil {
			return err
		}

		if canonicalPageID == 0 {
			pageID, err := i.publishCanonical(ctx, doc, destBookID, bookSlug, destPageID, exists, acc)
			if err != nil {
				return err
			}
			canonicalPageID = pageID

			if err := i.importAttachments(ctx, doc, canonicalPageID, acc); err != nil {
				return err
			}
			continue
		}

		if err := i.publishStub(ctx, doc, destBookID, bookSlug, destPageID, exists, canonicalPageID, acc); err != nil {
			return err
		}
	}

	logger.Debug("document processed", "books", len(bookIDs))
	return nil
}

// bookTitleFn returns the lazy title used when a book has to be created. The
// book borrows the document's title when the document opens the book's
// display order; otherwise the legacy book id serves as a placeholder name.
func (i *Importer) bookTitleFn(ctx context.Context, legacyBookID int, doc document.SourceDocument) func() (string, error) {
	return func() (string, error) {
		first, err := i.catalog.FirstPageOfBook(ctx, legacyBookID, doc.PageID)
		if err != nil {
			return "", fmt.Errorf("importer: check first page of book %d: %w", legacyBookID, err)
		}
		if !first {
			return strconv.Itoa(legacyBookID), nil
		}

		parsed, err := i.parseDocument(doc)
		if err != nil {
			return "", err
		}
		if parsed.Title == "" {
			return document.Stem(doc.Path), nil
		}
		return parsed.Title, nil
	}
}

func (i *Importer) parseDocument(doc document.SourceDocument) (document.Document, error) {
	src, err := os.ReadFile(doc.Path)
	if err != nil {
		return document.Document{}, fmt.Errorf("importer: read %s: %w", doc.Path, err)
	}

	parsed, err := document.ParseBytes(src)
	if err != nil {
		return document.Document{}, fmt.Errorf("importer: parse %s: %w", doc.Path, err)
	}
	return parsed, nil
}

// publishCanonical parses, transforms, and creates or updates the full page.
// It returns the destination page id so stub siblings can transclude it.
func (i *Importer) publishCanonical(ctx context.Context, doc document.SourceDocument, destBookID int, bookSlug string, destPageID int, exists bool, acc *runAccumulator) (int, error) {
	parsed, err := i.parseDocument(doc)
	if err != nil {
		return 0, err
	}

	body, err := i.transformer.Apply(ctx, parsed.Body, doc.PageID, doc.ImagesDir)
	if err != nil {
		return 0, err
	}

	title := parsed.Title
	if title == "" {
		title = document.Stem(doc.Path)
	}

	pageSlug, err := slug.Normalize(title)
	if err != nil {
		return 0, fmt.Errorf("importer: slug for %q: %w", title, err)
	}

	tags, err := i.pageTags(ctx, doc.PageID, parsed.Tags)
	if err != nil {
		return 0, err
	}

	logger := logging.WithDocumentContext(i.logger, doc.Path, doc.PageID, "publish")

	if exists {
		changed, err := i.store.ContentChanged(ctx, destBookID, destPageID, body)
		if err != nil {
			return 0, err
		}
		if !changed {
			logger.Debug("page unchanged, skipping", "dest_page_id", destPageID)
			acc.skip()
			return destPageID, nil
		}

		if err := i.wiki.UpdatePage(ctx, destBookID, destPageID, wiki.UpdatePageRequest{
			Title:    title,
			Markdown: body,
			Tags:     tags,
		}); err != nil {
			return 0, err
		}
		logger.Info("page updated", "dest_page_id", destPageID)
		acc.update()
		return destPageID, nil
	}

	pageID, err := i.wiki.CreatePage(ctx, wiki.CreatePageRequest{
		Title:    title,
		Markdown: body,
		Tags:     tags,
		BookID:   destBookID,
	})
	if err != nil {
		return 0, err
	}

	if err := i.store.RememberPage(ctx, syncstore.PageRecord{
		LegacyPageID: doc.PageID,
		DestPageID:   pageID,
		DestBookID:   destBookID,
		BookSlug:     bookSlug,
		PageSlug:     pageSlug,
		Title:        title,
		Body:         body,
	}); err != nil {
		return 0, err
	}

	logger.Info("page created", "dest_page_id", pageID)
	acc.create()
	return pageID, nil
}

// publishStub creates or refreshes a page whose only content transcludes the
// canonical page, reusing the canonical title and slug.
func (i *Importer) publishStub(ctx context.Context, doc document.SourceDocument, destBookID int, bookSlug string, destPageID int, exists bool, canonicalPageID int, acc *runAccumulator) error {
	title := document.Stem(doc.Path)
	pageSlug := title
	if canonicalSlug, canonicalTitle, ok, err := i.store.PageDetails(ctx, canonicalPageID); err != nil {
		return err
	} else if ok {
		pageSlug = canonicalSlug
		title = canonicalTitle
	}

	body := "{{@" + strconv.Itoa(canonicalPageID) + "}}"
	logger := logging.WithDocumentContext(i.logger, doc.Path, doc.PageID, "stub")

	if exists {
		changed, err := i.store.ContentChanged(ctx, destBookID, destPageID, body)
		if err != nil {
			return err
		}
		if !changed {
			logger.Debug("stub unchanged, skipping", "dest_page_id", destPageID)
			acc.skip()
			return nil
		}

		if err := i.wiki.UpdatePage(ctx, destBookID, destPageID, wiki.UpdatePageRequest{
			Title:    title,
			Markdown: body,
		}); err != nil {
			return err
		}
		logger.Info("stub updated", "dest_page_id", destPageID)
		acc.update()
		return nil
	}

	pageID, err := i.wiki.CreatePage(ctx, wiki.CreatePageRequest{
		Title:    title,
		Markdown: body,
		BookID:   destBookID,
	})
	if err != nil {
		return err
	}

	if err := i.store.RememberPage(ctx, syncstore.PageRecord{
		LegacyPageID: doc.PageID,
		DestPageID:   pageID,
		DestBookID:   destBookID,
		BookSlug:     bookSlug,
		PageSlug:     pageSlug,
		Title:        title,
		Body:         body,
	}); err != nil {
		return err
	}

	logger.Info("stub created", "dest_page_id", pageID, "canonical_page_id", canonicalPageID)
	acc.stub()
	return nil
}

// importAttachments uploads every not-yet-recorded file from the document's
// sidecar directory against the canonical page. A missing directory is fine.
func (i *Importer) importAttachments(ctx context.Context, doc document.SourceDocument, destPageID int, acc *runAccumulator) error {
	entries, err := os.ReadDir(doc.AttachmentsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("importer: read attachments dir %s: %w", doc.AttachmentsDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		known, err := i.store.AttachmentExists(ctx, entry.Name(), destPageID)
		if err != nil {
			return err
		}
		if known {
			continue
		}

		if err := i.uploadAttachment(ctx, doc, entry.Name(), destPageID); err != nil {
			return err
		}
		acc.attachment()
	}

	return nil
}

func (i *Importer) uploadAttachment(ctx context.Context, doc document.SourceDocument, name string, destPageID int) error {
	path := filepath.Join(doc.AttachmentsDir, name)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("importer: open attachment %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	attachmentID, err := i.wiki.CreateAttachment(ctx, name, file, destPageID)
	if err != nil {
		return err
	}

	if err := i.store.RecordAttachment(ctx, name, destPageID, attachmentID); err != nil {
		return err
	}

	i.logger.Info("attachment uploaded", "filename", name, "dest_page_id", destPageID, "dest_attachment_id", attachmentID)
	return nil
}

// pageTags prefers the document's front matter tags and falls back to the
// catalog's (family, name) pairs when the front matter declared none.
func (i *Importer) pageTags(ctx context.Context, legacyPageID int, parsed []document.Tag) ([]wiki.Tag, error) {
	source := parsed
	if len(source) == 0 {
		catalogTags, err := i.catalog.TagsForPage(ctx, legacyPageID)
		if err != nil {
			return nil, fmt.Errorf("importer: load tags for page %d: %w", legacyPageID, err)
		}
		source = catalogTags
	}

	if len(source) == 0 {
		return nil, nil
	}

	tags := make([]wiki.Tag, 0, len(source))
	for _, tag := range source {
		tags = append(tags, wiki.Tag{Name: tag.Name, Value: tag.Value})
	}
	return tags, nil
}

type runAccumulator struct {
	created     int
	updated     int
	skipped     int
	stubs       int
	attachments int
}

func newRunAccumulator() *runAccumulator {
	return &runAccumulator{}
}

func (a *runAccumulator) create()     { a.created++ }
func (a *runAccumulator) update()     { a.updated++ }
func (a *runAccumulator) skip()       { a.skipped++ }
func (a *runAccumulator) stub()       { a.stubs++ }
func (a *runAccumulator) attachment() { a.attachments++ }

func (a *runAccumulator) result() *Result {
	return &Result{
		Created:     a.created,
		Updated:     a.updated,
		Skipped:     a.skipped,
		Stubs:       a.stubs,
		Attachments: a.attachments,
	}
}
