package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Default content regions of an advice page: the tabbed advice body and the embassy block.
const (
	DefaultPrimary   = "div.js-tabs"
	DefaultSecondary = "div.representation_infos"
)

// Extractor pulls the visible text of two content regions out of a page.
type Extractor struct {
	Primary   string
	Secondary string
}

func New() *Extractor {
	return &Extractor{Primary: DefaultPrimary, Secondary: DefaultSecondary}
}

// ExtractSection parses HTML content and returns the text of the primary region followed by a
// newline, then the text of the secondary region. Only the first match of each selector is
// used. An empty string means neither region carried any text.
func (e *Extractor) ExtractSection(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if primary := doc.Find(e.Primary).First(); primary.Length() > 0 {
		b.WriteString(Text(primary))
		b.WriteString("\n")
	}
	if secondary := doc.Find(e.Secondary).First(); secondary.Length() > 0 {
		b.WriteString(Text(secondary))
	}
	return b.String(), nil
}

// Text returns every descendant text node of the selection, trimmed, with empty strings
// dropped and the rest joined by newlines. Script, style and template content is skipped.
func Text(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	switch n.Type {
	case html.TextNode:
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "template":
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
