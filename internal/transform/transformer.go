package transform

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/stackmill/wikimport/internal/logging"
)

// PageLink is the destination address of a migrated page, used to rewrite
// legacy cross-document links.
type PageLink struct {
	BookSlug string
	PageSlug string
}

// LinkResolver answers lookups against the sync store during rewriting. A
// miss is soft: the original text is left untouched.
type LinkResolver interface {
	ResolvePage(ctx context.Context, legacyPageID int) (PageLink, bool, error)
	ResolveAttachment(ctx context.Context, filename string) (int, bool, error)
}

// Config carries the transformer dependencies.
type Config struct {
	Resolver LinkResolver
	Logger   logging.Logger
}

// Transformer rewrites raw Markdown bodies into wiki-ready content. Each
// pass scans for literal markers and is safe to run when none are present;
// running the transformer twice must not double-rewrite.
type Transformer struct {
	resolver LinkResolver
	logger   logging.Logger
}

// New builds a Transformer from the supplied configuration.
func New(cfg Config) *Transformer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Transformer{
		resolver: cfg.Resolver,
		logger:   logger,
	}
}

var (
	docLinkPattern  = regexp.MustCompile(`\(\.\./docs/(\d+)-[^)]*\)`)
	fileLinkPattern = regexp.MustCompile(`\(\.\./files/[^/)]+/([^)]+)\)`)
	vimeoPattern    = regexp.MustCompile(`\[vimeo:(\d+):(\d+):(\d+)\]`)
	bareLinkPattern = regexp.MustCompile(` \((https://[^()\s]+)\)`)
	headingPattern  = regexp.MustCompile(`(?m)^(#+)([^#\s])`)
)

const vimeoEmbed = `<iframe src="https://player.vimeo.com/video/${1}?title=0&amp;byline=0&amp;portrait=0&amp;color=8dc7dc" width="${2}" height="${3}" allowfullscreen="allowfullscreen"></iframe>`

// Apply runs the rewrite passes in order: image inlining, cross-document
// links, attachment links, video shortcodes, bare links, heading spacing.
// imagesDir may point at a missing directory.
func (t *Transformer) Apply(ctx context.Context, body string, pageID int, imagesDir string) (string, error) {
	body, err := t.inlineImages(body, pageID, imagesDir)
	if err != nil {
		return "", err
	}

	body, err = t.rewriteDocLinks(ctx, body)
	if err != nil {
		return "", err
	}

	body, err = t.rewriteAttachmentLinks(ctx, body)
	if err != nil {
		return "", err
	}

	body = ExpandVideoEmbeds(body)
	body = WrapBareLinks(body)
	body = NormalizeHeadings(body)

	return body, nil
}

// inlineImages replaces references of the form (../images/{id}/{file}) with
// base64 data URIs for every file in imagesDir named "{id}-*". Image files
// without a matching reference are silently skipped.
func (t *Transformer) inlineImages(body string, pageID int, imagesDir string) (string, error) {
	if imagesDir == "" {
		return body, nil
	}

	entries, err := os.ReadDir(imagesDir)
	if errors.Is(err, fs.ErrNotExist) {
		return body, nil
	}
	if err != nil {
		return "", fmt.Errorf("transform: read images dir %s: %w", imagesDir, err)
	}

	prefix := strconv.Itoa(pageID) + "-"
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}

		marker := fmt.Sprintf("(../images/%d/%s)", pageID, entry.Name())
		if !strings.Contains(body, marker) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(imagesDir, entry.Name()))
		if err != nil {
			return "", fmt.Errorf("transform: read image %s: %w", entry.Name(), err)
		}

		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		encoded := base64.StdEncoding.EncodeToString(data)
		body = strings.ReplaceAll(body, marker, fmt.Sprintf("(data:image/%s;base64,%s)", ext, encoded))
	}

	return body, nil
}

// rewriteDocLinks resolves (../docs/{id}-…) references against the mapping
// store. Unresolved targets are reported, not corrected.
func (t *Transformer) rewriteDocLinks(ctx context.Context, body string) (string, error) {
	if t.resolver == nil {
		return body, nil
	}

	var firstErr error
	body = docLinkPattern.ReplaceAllStringFunc(body, func(match string) string {
		if firstErr != nil {
			return match
		}

		target, err := strconv.Atoi(docLinkPattern.FindStringSubmatch(match)[1])
		if err != nil {
			return match
		}

		link, ok, err := t.resolver.ResolvePage(ctx, target)
		if err != nil {
			firstErr = fmt.Errorf("transform: resolve page %d: %w", target, err)
			return match
		}
		if !ok {
			t.logger.Warn("unresolved cross-document link", "legacy_page_id", target)
			return match
		}
		return fmt.Sprintf("(/books/%s/page/%s)", link.BookSlug, link.PageSlug)
	})

	return body, firstErr
}

// rewriteAttachmentLinks resolves (../files/{any}/{file}) references against
// recorded attachments.
func (t *Transformer) rewriteAttachmentLinks(ctx context.Context, body string) (string, error) {
	if t.resolver == nil {
		return body, nil
	}

	var firstErr error
	body = fileLinkPattern.ReplaceAllStringFunc(body, func(match string) string {
		if firstErr != nil {
			return match
		}

		filename := fileLinkPattern.FindStringSubmatch(match)[1]

		id, ok, err := t.resolver.ResolveAttachment(ctx, filename)
		if err != nil {
			firstErr = fmt.Errorf("transform: resolve attachment %s: %w", filename, err)
			return match
		}
		if !ok {
			t.logger.Warn("unresolved attachment link", "filename", filename)
			return match
		}
		return fmt.Sprintf("(/attachments/%d)", id)
	})

	return body, firstErr
}

// ExpandVideoEmbeds turns [vimeo:{id}:{width}:{height}] shortcodes into
// iframe embeds.
func ExpandVideoEmbeds(body string) string {
	return vimeoPattern.ReplaceAllString(body, vimeoEmbed)
}

// WrapBareLinks rewrites standalone parenthesized URLs " (https://…)" into
// proper Markdown links " ([url](url))".
func WrapBareLinks(body string) string {
	return bareLinkPattern.ReplaceAllString(body, " ([${1}](${1}))")
}

// NormalizeHeadings ensures at least one space follows a run of leading "#"
// characters.
func NormalizeHeadings(body string) string {
	return headingPattern.ReplaceAllString(body, "${1} ${2}")
}
