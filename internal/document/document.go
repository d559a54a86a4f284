package document

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrEmptyContent signals a zero-length source document. Callers decide
	// whether the condition is fatal for the batch.
	ErrEmptyContent = errors.New("document: empty content")
	// ErrInvalidFileName signals a source file whose name does not carry a
	// leading legacy page id.
	ErrInvalidFileName = errors.New("document: file name missing legacy page id prefix")
)

// Tag is a single metadata pair attached to a page. Value is empty for tags
// that came from front matter; catalog-sourced tags carry both parts.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Document is the parsed form of a Markdown source file. Body has the H1
// title line and front matter removed; when front matter was present it is
// re-prepended verbatim so downstream systems that honor it still see it.
type Document struct {
	Title string
	Tags  []Tag
	Body  string
}

// SourceDocument locates a legacy page on disk along with its sidecar
// directories. ImagesDir and AttachmentsDir may point at missing directories;
// absence is not an error.
type SourceDocument struct {
	PageID         int
	Path           string
	ImagesDir      string
	AttachmentsDir string
}

// Stem returns the file name without directory or extension, e.g.
// "101-intro" for "docs/101-intro.md". Used as the title fallback.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// PageIDFromName extracts the numeric legacy page id from a file named
// "{id}-slug.md".
func PageIDFromName(name string) (int, error) {
	prefix, _, ok := strings.Cut(filepath.Base(name), "-")
	if !ok {
		return 0, ErrInvalidFileName
	}
	id, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, ErrInvalidFileName
	}
	return id, nil
}
