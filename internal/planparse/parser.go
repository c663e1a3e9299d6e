// Package planparse turns loosely structured LLM output (markdown with an
// optional embedded JSON object) into titled sections for display.
//
// Every function here is total: malformed input degrades to less structure,
// never to an error.
package planparse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// OverviewTitle names the single section produced for text without headings.
const OverviewTitle = "Overview"

// Document is the parsed form of a plan or analysis blob.
//
// Sections is keyed by heading text, so a repeated heading replaces the body
// of the earlier one. Titles lists each distinct title once, in order of first
// appearance.
type Document struct {
	Sections       map[string]string   `json:"sections"`
	Titles         []string            `json:"titles"`
	Categories     map[string]Category `json:"categories"`
	StructuredData map[string]any      `json:"structuredData"`
}

var (
	fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	bareJSON   = regexp.MustCompile(`\{[\s\S]*\}`)
	heading    = regexp.MustCompile(`^(#+)[ \t]+(\S.*)$`)
)

// Parse splits text into sections at the two shallowest heading levels that
// occur in it, so "#"/"##" documents and "###"-only documents segment alike.
// Deeper headings stay in the section body. An embedded JSON object is
// extracted when one parses.
func Parse(text string) *Document {
	doc := &Document{
		Sections:       map[string]string{},
		Titles:         []string{},
		Categories:     map[string]Category{},
		StructuredData: ExtractJSON(text),
	}
	if strings.TrimSpace(text) == "" {
		return doc
	}

	var (
		current string
		open    bool
		body    []string
	)
	closeSection := func() {
		if !open {
			return
		}
		if _, seen := doc.Sections[current]; !seen {
			doc.Titles = append(doc.Titles, current)
		}
		doc.Sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	top := shallowestHeading(lines)
	for _, line := range lines {
		if m := heading.FindStringSubmatch(line); m != nil && len(m[1]) <= top+1 {
			closeSection()
			current = strings.TrimSpace(m[2])
			open = true
			body = body[:0]
			continue
		}
		// Lines before the first heading belong to no section.
		if open {
			body = append(body, line)
		}
	}
	closeSection()

	if len(doc.Sections) == 0 {
		doc.Sections[OverviewTitle] = text
		doc.Titles = append(doc.Titles, OverviewTitle)
	}
	for _, title := range doc.Titles {
		doc.Categories[title] = Classify(title)
	}
	return doc
}

// shallowestHeading returns the marker length of the least nested heading in
// lines, or 0 when there is none.
func shallowestHeading(lines []string) int {
	top := 0
	for _, line := range lines {
		if m := heading.FindStringSubmatch(line); m != nil {
			if depth := len(m[1]); top == 0 || depth < top {
				top = depth
			}
		}
	}
	return top
}

// ParseValue parses a plan that arrived either as text or as a decoded JSON
// value. Non-string values are rendered as indented JSON first.
func ParseValue(v any) *Document {
	switch t := v.(type) {
	case nil:
		return Parse("")
	case string:
		return Parse(t)
	default:
		raw, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return Parse("")
		}
		return Parse(string(raw))
	}
}

// ExtractJSON returns the object in the first ```json fence, or if there is
// no fence, the span from the first '{' to the last '}'. It returns nil when
// nothing parses to a JSON object.
func ExtractJSON(text string) map[string]any {
	var candidate string
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := bareJSON.FindString(text); m != "" {
		candidate = m
	} else {
		return nil
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil
	}
	return out
}
