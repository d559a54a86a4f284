package syncstore

import "github.com/uptrace/bun"

// BookMapping links a legacy book id to the destination book created for it.
// Exactly one row exists per legacy book for the lifetime of the store; the
// slug is assigned at creation time and never mutated.
type BookMapping struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID       int64  `bun:"id,pk,autoincrement"`
	LegacyID int    `bun:"legacy_id,notnull"`
	DestID   int    `bun:"dest_id,notnull"`
	Slug     string `bun:"slug,notnull"`
}

// PageMapping links a legacy page to one destination page. A legacy page
// shared across books has one row per destination book; the content digest
// tracks the last-published body for change detection.
type PageMapping struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID            int64  `bun:"id,pk,autoincrement"`
	LegacyPageID  int    `bun:"legacy_page_id,notnull"`
	DestPageID    int    `bun:"dest_page_id,notnull"`
	DestBookID    int    `bun:"dest_book_id,notnull"`
	DestBookSlug  string `bun:"dest_book_slug,notnull"`
	DestPageSlug  string `bun:"dest_page_slug,notnull"`
	DestPageTitle string `bun:"dest_page_title,notnull"`
	ContentDigest string `bun:"content_digest,notnull"`
}

// AttachmentMapping records an uploaded attachment so re-runs skip it. At
// most one row exists per (filename, destination page) pair.
type AttachmentMapping struct {
	bun.BaseModel `bun:"table:attachments,alias:a"`

	ID               int64  `bun:"id,pk,autoincrement"`
	Filename         string `bun:"filename,notnull"`
	DestPageID       int    `bun:"dest_page_id,notnull"`
	DestAttachmentID int    `bun:"dest_attachment_id,notnull"`
}
