package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stackmill/wikimport/internal/document"
)

// scanCorpus indexes the Markdown documents under {root}/docs by legacy page
// id. Document file names carry the id as a numeric prefix, "101-intro.md".
// Sidecar image and attachment directories are keyed by the same id under
// {root}/images and {root}/files.
func (i *Importer) scanCorpus() (map[int]document.SourceDocument, error) {
	docsDir := filepath.Join(i.root, "docs")

	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return nil, fmt.Errorf("importer: read corpus dir %s: %w", docsDir, err)
	}

	docs := make(map[int]document.SourceDocument, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		pageID, err := document.PageIDFromName(entry.Name())
		if err != nil {
			i.logger.Warn("skipping document without numeric id prefix", "file", entry.Name())
			continue
		}

		docs[pageID] = document.SourceDocument{
			PageID:         pageID,
			Path:           filepath.Join(docsDir, entry.Name()),
			ImagesDir:      filepath.Join(i.root, "images", strconv.Itoa(pageID)),
			AttachmentsDir: filepath.Join(i.root, "files", strconv.Itoa(pageID)),
		}
	}

	return docs, nil
}
