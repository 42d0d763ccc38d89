// Package content discovers content documents (posts, pages, static files)
// in the site source tree and parses their front-matter.
package content

import (
	"time"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/frontmatter"
)

// Kind classifies a discovered document.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Document is one content file flowing through the build pipeline. It is
// created during the scan stage, gains a URL during permalink resolution and
// rendered HTML during the render stage, and is discarded when the build ends.
type Document struct {
	SourcePath string // slash-separated path relative to the source root
	AbsPath    string // absolute path on disk
	Kind       Kind

	// Slug is the raw slug source: the post filename with the date prefix
	// and extension stripped, or the page filename without extension.
	Slug string

	Fields frontmatter.Fields
	Body   []byte

	URL  string // computed output URL, set by the permalink resolver
	HTML []byte // rendered output, set by the renderer

	LastMod time.Time // last modification, from git history or file mtime
}

// Date returns the document's publication date.
func (d *Document) Date() time.Time {
	return d.Fields.Date
}

// Title returns the front-matter title, falling back to the slug.
func (d *Document) Title() string {
	if d.Fields.Title != "" {
		return d.Fields.Title
	}
	return d.Slug
}

// Layout returns the layout name for this document, applying kind defaults.
func (d *Document) Layout() string {
	if d.Fields.Layout != "" {
		return d.Fields.Layout
	}
	if d.Kind == KindPost {
		return "post"
	}
	return "default"
}
