package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/stackmill/wikimport/internal/document"
	"github.com/stackmill/wikimport/internal/transform"
)

var previewHTML bool

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show how a single document would be published",
	Long: `Parses and transforms one Markdown document without touching the wiki or
any database. Cross-document and attachment links stay unresolved since no
sync state is consulted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd.Context(), cmd, args[0])
	},
}

func init() {
	previewCmd.Flags().BoolVar(&previewHTML, "html", false, "render the transformed body to HTML")
}

func runPreview(ctx context.Context, cmd *cobra.Command, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := document.ParseBytes(src)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	pageID, err := document.PageIDFromName(path)
	if err != nil {
		pageID = 0
	}

	body, err := transform.New(transform.Config{}).Apply(ctx, doc.Body, pageID, "")
	if err != nil {
		return err
	}

	title := doc.Title
	if title == "" {
		title = document.Stem(path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title: %s\n", title)
	if len(doc.Tags) > 0 {
		pairs := make([]string, 0, len(doc.Tags))
		for _, tag := range doc.Tags {
			pairs = append(pairs, tag.Name+"="+tag.Value)
		}
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(pairs, ", "))
	}
	fmt.Fprintln(out)

	if !previewHTML {
		fmt.Fprint(out, body)
		return nil
	}

	rendered, err := renderHTML(body)
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}

// renderHTML converts transformed Markdown to HTML. Raw HTML passes through
// unescaped since transformed bodies may carry video embed iframes.
func renderHTML(body string) (string, error) {
	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var buf bytes.Buffer
	if err := engine.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
