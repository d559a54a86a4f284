package document

import (
	"errors"
	"strings"
	"testing"
)

func TestParseFrontMatterRoundTrip(t *testing.T) {
	src := "---\nTitle: Foo\ntags: [a, b]\n---\n# Foo\nBody"

	doc, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}

	if doc.Title != "Foo" {
		t.Fatalf("expected title Foo, got %q", doc.Title)
	}
	wantTags := []Tag{{Name: "a"}, {Name: "b"}}
	if len(doc.Tags) != len(wantTags) {
		t.Fatalf("expected %d tags, got %#v", len(wantTags), doc.Tags)
	}
	for i, tag := range wantTags {
		if doc.Tags[i] != tag {
			t.Fatalf("tag %d: expected %#v, got %#v", i, tag, doc.Tags[i])
		}
	}
	if !strings.Contains(doc.Body, "Body") {
		t.Fatalf("expected body to contain source text, got %q", doc.Body)
	}
	if !strings.HasPrefix(doc.Body, "---\nTitle: Foo\ntags: [a, b]\n---\n\n") {
		t.Fatalf("expected front matter re-prepended verbatim, got %q", doc.Body)
	}
}

func TestParseTitleFromHeading(t *testing.T) {
	doc, err := ParseBytes([]byte("# Intro\nHello\n"))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.Title != "Intro" {
		t.Fatalf("expected title Intro, got %q", doc.Title)
	}
	if doc.Body != "Hello\n" {
		t.Fatalf("expected body %q, got %q", "Hello\n", doc.Body)
	}
	if len(doc.Tags) != 0 {
		t.Fatalf("expected no tags, got %#v", doc.Tags)
	}
}

func TestParseKeepsHeadingWhenTitleFromFrontMatter(t *testing.T) {
	src := "---\nTitle: Foo\n---\n# Foo\nBody\n"

	doc, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.Title != "Foo" {
		t.Fatalf("expected title Foo, got %q", doc.Title)
	}
	// The heading line is not consumed as a title once one is known.
	if !strings.Contains(doc.Body, "# Foo\n") {
		t.Fatalf("expected heading kept in body, got %q", doc.Body)
	}
}

func TestParseIgnoresMalformedFrontMatter(t *testing.T) {
	src := "---\njust-a-line\nnested:\n  key: value\n---\n# Title\nText\n"

	doc, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.Title != "Title" {
		t.Fatalf("expected title from heading, got %q", doc.Title)
	}
	if len(doc.Tags) != 0 {
		t.Fatalf("expected no tags, got %#v", doc.Tags)
	}
}

func TestParseUnterminatedFrontMatterIsBody(t *testing.T) {
	src := "---\nTitle: Foo\nno closing fence\n"

	doc, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.Title != "" {
		t.Fatalf("expected no title, got %q", doc.Title)
	}
	if doc.Body != src {
		t.Fatalf("expected whole input as body, got %q", doc.Body)
	}
}

func TestParseEmptyContent(t *testing.T) {
	if _, err := ParseBytes(nil); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if _, err := Parse(nil); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestParseTitleOnlyDocument(t *testing.T) {
	doc, err := ParseBytes([]byte("# Intro\n"))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	if doc.Title != "Intro" {
		t.Fatalf("expected title Intro, got %q", doc.Title)
	}
	if doc.Body != "" {
		t.Fatalf("expected empty body, got %q", doc.Body)
	}
}

func TestPageIDFromName(t *testing.T) {
	cases := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{name: "101-intro.md", want: 101},
		{name: "docs/102-details.md", want: 102},
		{name: "readme.md", wantErr: true},
		{name: "abc-intro.md", wantErr: true},
	}

	for _, tc := range cases {
		got, err := PageIDFromName(tc.name)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidFileName) {
				t.Fatalf("%s: expected ErrInvalidFileName, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestStem(t *testing.T) {
	if got := Stem("docs/101-intro.md"); got != "101-intro" {
		t.Fatalf("expected 101-intro, got %q", got)
	}
}
