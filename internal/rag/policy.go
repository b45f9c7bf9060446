package rag

import (
	"fmt"
	"os"
	"strings"
)

// Section is one heading-delimited slice of the policy document. HeadingPath
// is the ordered chain of headings above the section (level 1, then level 2).
type Section struct {
	HeadingPath []string
	Body        string
}

// LoadPolicy reads the return-policy markdown document.
func LoadPolicy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read policy %s: %w", path, err)
	}
	return string(data), nil
}

// SplitPolicy splits markdown text into sections on level-1 and level-2
// headings. Heading lines stay in the section body so a retrieved chunk is
// self-describing out of context. Text before the first heading becomes a
// section with an empty heading path.
func SplitPolicy(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	var path []string
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content == "" {
			return
		}
		p := make([]string, len(path))
		copy(p, path)
		sections = append(sections, Section{HeadingPath: p, Body: content})
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "# "):
			flush()
			path = []string{strings.TrimSpace(strings.TrimPrefix(line, "# "))}
			body = []string{line}
		case strings.HasPrefix(line, "## "):
			flush()
			h2 := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			if len(path) > 0 {
				path = []string{path[0], h2}
			} else {
				path = []string{h2}
			}
			body = []string{line}
		default:
			body = append(body, line)
		}
	}
	flush()

	return sections
}

// SectionChunks converts policy sections into chunks. IDs are derived from
// the section position, so the same document always splits into the same IDs.
func SectionChunks(sections []Section) []Chunk {
	chunks := make([]Chunk, 0, len(sections))
	for i, s := range sections {
		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("policy-%03d", i),
			Text: s.Body,
			Metadata: map[string]string{
				"source":  "policy",
				"heading": strings.Join(s.HeadingPath, " > "),
			},
		})
	}
	return chunks
}
