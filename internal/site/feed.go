package site

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/content"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/render"
)

// feedURL is where the Atom feed is published, relative to the site root.
const feedURL = "/feed.xml"

type atomFeed struct {
	XMLName  xml.Name   `xml:"feed"`
	Xmlns    string     `xml:"xmlns,attr"`
	Title    string     `xml:"title"`
	Subtitle string     `xml:"subtitle,omitempty"`
	ID       string     `xml:"id"`
	Updated  string     `xml:"updated"`
	Links    []atomLink `xml:"link"`
	Entries  []atomEntry
}

type atomLink struct {
	XMLName xml.Name `xml:"link"`
	Href    string   `xml:"href,attr"`
	Rel     string   `xml:"rel,attr,omitempty"`
	Type    string   `xml:"type,attr,omitempty"`
}

type atomEntry struct {
	XMLName   xml.Name     `xml:"entry"`
	Title     string       `xml:"title"`
	ID        string       `xml:"id"`
	Link      atomLink     `xml:"link"`
	Published string       `xml:"published"`
	Updated   string       `xml:"updated"`
	Content   *atomContent `xml:"content,omitempty"`
}

type atomContent struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// writeFeed writes an Atom feed of the newest posts to feed.xml in dest.
// Posts arrive date-descending from the scan, so the slice prefix is the
// newest content.
func writeFeed(dest string, siteCtx render.Site, posts []*content.Document, limit int) error {
	if len(posts) > limit {
		posts = posts[:limit]
	}

	feed := atomFeed{
		Xmlns:    "http://www.w3.org/2005/Atom",
		Title:    siteCtx.Title,
		Subtitle: siteCtx.Description,
		ID:       siteCtx.BaseURL + "/",
		Updated:  siteCtx.Time.UTC().Format(time.RFC3339),
		Links: []atomLink{
			{Href: siteCtx.BaseURL + feedURL, Rel: "self", Type: "application/atom+xml"},
			{Href: siteCtx.BaseURL + "/", Rel: "alternate", Type: "text/html"},
		},
	}

	for _, post := range posts {
		href := siteCtx.BaseURL + post.URL
		updated := post.LastMod
		if updated.IsZero() {
			updated = post.Date()
		}
		entry := atomEntry{
			Title:     post.Title(),
			ID:        href,
			Link:      atomLink{Href: href, Rel: "alternate", Type: "text/html"},
			Published: post.Date().UTC().Format(time.RFC3339),
			Updated:   updated.UTC().Format(time.RFC3339),
		}
		if len(post.HTML) > 0 {
			entry.Content = &atomContent{Type: "html", Body: string(post.HTML)}
		}
		feed.Entries = append(feed.Entries, entry)
	}

	out, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return err
	}
	data := strings.Join([]string{xml.Header, string(out), ""}, "")
	return os.WriteFile(filepath.Join(dest, filepath.FromSlash(feedURL)), []byte(data), 0o644)
}
