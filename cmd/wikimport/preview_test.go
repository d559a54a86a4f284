package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRunPreviewMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "101-intro.md")
	content := "# Intro\n\nWatch [vimeo:123:640:320] now.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	previewHTML = false
	if err := runPreview(context.Background(), cmd, path); err != nil {
		t.Fatalf("preview: %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "Title: Intro\n") {
		t.Fatalf("expected title line, got %q", got)
	}
	if !strings.Contains(got, "player.vimeo.com/video/123") {
		t.Fatalf("expected expanded video embed, got %q", got)
	}
}

func TestRunPreviewHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "101-intro.md")
	if err := os.WriteFile(path, []byte("# Intro\n\nBody text.\n"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	previewHTML = true
	t.Cleanup(func() { previewHTML = false })

	if err := runPreview(context.Background(), cmd, path); err != nil {
		t.Fatalf("preview: %v", err)
	}

	if !strings.Contains(out.String(), "<p>Body text.</p>") {
		t.Fatalf("expected rendered HTML, got %q", out.String())
	}
}
