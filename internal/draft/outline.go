package draft

import (
	"regexp"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// placeholderPattern matches template placeholders such as [[customer_id]].
var placeholderPattern = regexp.MustCompile(`\[\[\s*([A-Za-z0-9_.-]+)\s*\]\]`)

// maxTitleLen bounds the fallback title taken from the first line of text.
const maxTitleLen = 60

// Outline summarises an HTML template: its title and the placeholders it uses.
type Outline struct {
	// Title is the text of the first h1/h2/h3 heading, or the first line of
	// text when the template has no heading.
	Title string

	// Placeholders lists distinct placeholder names in order of first use.
	Placeholders []string
}

// ParseOutline extracts the outline of an HTML template. Content that is not
// valid HTML is treated as plain text; an empty template yields a zero Outline.
func ParseOutline(content string) Outline {
	var out Outline
	if strings.TrimSpace(content) == "" {
		return out
	}

	text := content
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		out.Title = collapseSpace(doc.Find("h1, h2, h3").First().Text())
		text = doc.Text()
	}
	if out.Title == "" {
		out.Title = firstLine(text)
	}

	// Placeholders are matched against the raw markup so that markers inside
	// attributes (href="[[link]]") are found as well.
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		out.Placeholders = append(out.Placeholders, name)
	}
	return out
}

// Unknown returns the placeholders of o that are not in known, preserving
// their order. A nil or empty known list means no catalog is available and
// nothing is reported.
func (o Outline) Unknown(known []string) []string {
	if len(known) == 0 {
		return nil
	}
	var missing []string
	for _, p := range o.Placeholders {
		if !slices.Contains(known, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// Placeholder formats name as a template placeholder marker.
func Placeholder(name string) string {
	return "[[" + strings.TrimSpace(name) + "]]"
}

func firstLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		line = collapseSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > maxTitleLen {
			return string(r[:maxTitleLen-1]) + "…"
		}
		return line
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
