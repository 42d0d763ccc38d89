package permalink

import (
	"fmt"
	"path"
	"strings"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/content"
	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
)

// Named permalink styles, matching the conventional static-blog patterns.
var styles = map[string]string{
	"pretty": "/:categories/:year/:month/:day/:title/",
	"date":   "/:categories/:year/:month/:day/:title.html",
	"none":   "/:categories/:title.html",
}

// Resolver computes output URLs from the site permalink pattern.
type Resolver struct {
	pattern string
}

// NewResolver creates a resolver for the given pattern. The pattern may be a
// named style (pretty, date, none) or a literal token string.
func NewResolver(pattern string) *Resolver {
	if expanded, ok := styles[pattern]; ok {
		pattern = expanded
	}
	return &Resolver{pattern: pattern}
}

// Resolve computes the normalized output URL for a single document. The
// result is deterministic: resolving the same document twice yields the same
// URL.
func (r *Resolver) Resolve(doc *content.Document) string {
	if doc.Fields.Permalink != "" {
		return normalizeURL(doc.Fields.Permalink)
	}

	if doc.Kind == content.KindPage {
		return pageURL(doc.SourcePath)
	}

	date := doc.Date()
	expanded := r.pattern
	expanded = strings.ReplaceAll(expanded, ":categories", categoriesPath(doc.Fields.Categories))
	expanded = strings.ReplaceAll(expanded, ":year", fmt.Sprintf("%04d", date.Year()))
	expanded = strings.ReplaceAll(expanded, ":month", fmt.Sprintf("%02d", int(date.Month())))
	expanded = strings.ReplaceAll(expanded, ":day", fmt.Sprintf("%02d", date.Day()))
	expanded = strings.ReplaceAll(expanded, ":slug", Slugify(doc.Slug))
	expanded = strings.ReplaceAll(expanded, ":title", Slugify(doc.Slug))

	return normalizeURL(expanded)
}

// AssignURLs resolves every document in discovery order and verifies global
// uniqueness, including against reserved URLs already claimed by generated
// outputs (feed, index pages, archive pages). On a collision the later
// document loses: a fatal CollisionError naming both sources is returned and
// no URL set is produced.
func (r *Resolver) AssignURLs(docs []*content.Document, reserved map[string]string) *builderrors.BuildError {
	seen := make(map[string]string, len(docs)+len(reserved))
	for url, owner := range reserved {
		seen[url] = owner
	}
	for _, doc := range docs {
		url := r.Resolve(doc)
		if first, dup := seen[url]; dup {
			return builderrors.NewCollisionError(url, first, doc.SourcePath)
		}
		seen[url] = doc.SourcePath
		doc.URL = url
	}
	return nil
}

// pageURL mirrors a page's source path: about.md becomes /about/, and any
// index file maps to its directory root.
func pageURL(sourcePath string) string {
	dir, file := path.Split(sourcePath)
	base := strings.TrimSuffix(file, path.Ext(file))

	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(strings.Trim(dir, "/"), "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, Slugify(seg))
	}
	if base != "index" {
		segments = append(segments, Slugify(base))
	}

	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/") + "/"
}

func categoriesPath(categories []string) string {
	slugs := make([]string, 0, len(categories))
	for _, c := range categories {
		if s := Slugify(c); s != "" {
			slugs = append(slugs, s)
		}
	}
	return strings.Join(slugs, "/")
}

// normalizeURL collapses duplicate slashes (empty :categories leaves them
// behind), slug-normalizes each path segment, and preserves the trailing
// slash / extension style of the pattern.
func normalizeURL(url string) string {
	trailingSlash := strings.HasSuffix(url, "/")

	ext := ""
	trimmed := url
	if !trailingSlash {
		if e := path.Ext(url); e != "" {
			ext = e
			trimmed = strings.TrimSuffix(url, e)
		}
	}

	segments := make([]string, 0, 8)
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" {
			continue
		}
		if s := Slugify(seg); s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	out := "/" + strings.Join(segments, "/")
	if trailingSlash {
		return out + "/"
	}
	return out + ext
}
