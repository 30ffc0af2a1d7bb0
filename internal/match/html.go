package match

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML extracts the visible text from an HTML fragment. Employers
// often paste job postings straight from a careers page; scoring wants
// the text, not the markup. Non-HTML input passes through unchanged.
func StripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}
	var b strings.Builder
	collectText(doc, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// collectText walks the node tree appending text content, skipping
// script and style subtrees.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}
