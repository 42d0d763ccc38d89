package render

import (
	"html/template"
	"time"
)

// Site is the site-level template context, built once per run from the
// configuration.
type Site struct {
	Title       string
	Description string
	BaseURL     string
	Time        time.Time
	Extra       map[string]any
}

// PageInfo is the per-document template context.
type PageInfo struct {
	Title      string
	URL        string
	Date       time.Time
	Categories []string
	Tags       []string
	Excerpt    template.HTML
	Content    template.HTML
}

// Paginator is the template context for paginated index pages.
type Paginator struct {
	Posts           []PageInfo
	PageNumber      int
	TotalPages      int
	PerPage         int
	PreviousPageURL string // empty on the first page
	NextPageURL     string // empty on the last page
}

// ArchiveInfo is the template context for a category or tag archive page.
type ArchiveInfo struct {
	Label string
	Slug  string
	Posts []PageInfo
}

// Context is the root object every layout template executes against.
type Context struct {
	Site      Site
	Page      PageInfo
	Content   template.HTML
	Paginator *Paginator   // non-nil only on index pages
	Archive   *ArchiveInfo // non-nil only on archive pages
}
