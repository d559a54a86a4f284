package document

import "strings"

const frontMatterDelimiter = "---"

// Parse scans a Markdown document in a single forward pass and extracts the
// title, front-matter tags, and body.
//
// Front matter is recognized only when the very first line is a "---"
// delimiter. Within the block a restricted subset of YAML is understood:
// single-level "key: value" entries, a "Title" key, and a "tags" key holding
// an inline list "[a, b, c]". Everything else is skipped, not rejected. When
// no closing delimiter exists the whole input is treated as body.
//
// After any front matter, the first "# " heading supplies the title when the
// front matter did not; the first line that does not supply the title starts
// the body. Front matter is re-prepended to the body verbatim, fenced by
// "---" lines and a blank line.
func Parse(lines []string) (Document, error) {
	if len(lines) == 0 {
		return Document{}, ErrEmptyContent
	}

	var (
		doc       Document
		header    strings.Builder
		hasMatter bool
		scanFrom  int
	)

	// State one: inside front matter, until the closing delimiter.
	if strings.HasPrefix(lines[0], frontMatterDelimiter) {
		for i, line := range lines[1:] {
			if strings.HasPrefix(line, frontMatterDelimiter) {
				hasMatter = true
				scanFrom = i + 2
				break
			}
			header.WriteString(line)
			parseFrontMatterLine(line, &doc)
		}
		if !hasMatter {
			// Unterminated front matter: treat the whole input as body.
			doc = Document{}
			header.Reset()
			scanFrom = 0
		}
	}

	// State two: before the body, consuming the H1 title when still unset.
	bodyStart := -1
	for i := scanFrom; i < len(lines); i++ {
		line := lines[i]
		if doc.Title == "" && strings.HasPrefix(line, "# ") {
			doc.Title = strings.TrimLeft(strings.TrimRight(line, "\r\n"), "# ")
			continue
		}
		bodyStart = i
		break
	}

	// State three: inside the body, everything to the end verbatim.
	if bodyStart >= 0 {
		doc.Body = strings.Join(lines[bodyStart:], "")
	}

	if hasMatter {
		doc.Body = frontMatterDelimiter + "\n" + header.String() + frontMatterDelimiter + "\n\n" + doc.Body
	}

	return doc, nil
}

// ParseBytes splits raw file content into newline-terminated lines and
// parses them.
func ParseBytes(src []byte) (Document, error) {
	if len(src) == 0 {
		return Document{}, ErrEmptyContent
	}
	return Parse(splitLines(string(src)))
}

// parseFrontMatterLine recognizes the "Title" and "tags" keys of the
// restricted front-matter subset. Malformed entries and list-valued keys
// other than tags are ignored.
func parseFrontMatterLine(line string, doc *Document) {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}

	switch key {
	case "Title":
		doc.Title = strings.TrimSpace(value)
	case "tags":
		for _, name := range splitInlineList(value) {
			doc.Tags = append(doc.Tags, Tag{Name: name})
		}
	}
}

// splitInlineList parses the inline list syntax "[a, b, c]".
func splitInlineList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(value, "]")
	value = strings.TrimPrefix(value, "[")
	if value == "" {
		return nil
	}
	return strings.Split(value, ", ")
}

// splitLines splits text into lines that keep their trailing newline, the
// shape the scanner and the verbatim front-matter fence both rely on.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
