package render

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Excerpt extracts the first paragraph from a rendered HTML fragment, for use
// in index and archive listings and the feed. An empty string is returned
// when the fragment has no paragraph.
func Excerpt(fragment []byte) string {
	doc, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return ""
	}

	para := findFirst(doc, "p")
	if para == nil {
		return ""
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, para); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}
