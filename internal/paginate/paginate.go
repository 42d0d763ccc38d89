// Package paginate slices the chronologically ordered post collection into
// fixed-size pages for index listing. Pages are derived, ephemeral state,
// recomputed on every build.
package paginate

import (
	"fmt"
	"strings"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/content"
	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
)

// Page is one pagination unit: up to PerPage posts in input order plus links
// to its neighbors.
type Page struct {
	Number  int // 1-based
	Posts   []*content.Document
	Prev    *Page // nil on the first page
	Next    *Page // nil on the last page
	Total   int   // total number of pages
	PerPage int
}

// IsFirst reports whether this is page 1, which renders at the site root.
func (p *Page) IsFirst() bool { return p.Number == 1 }

// Paginate partitions posts into ceil(len/perPage) pages holding up to
// perPage posts each, preserving order: the concatenation of all pages equals
// the input exactly. perPage must be positive; anything else is a fatal
// ConfigError.
func Paginate(posts []*content.Document, perPage int) ([]*Page, error) {
	if perPage <= 0 {
		return nil, builderrors.NewConfigError(fmt.Sprintf("page size must be positive, got %d", perPage))
	}

	total := (len(posts) + perPage - 1) / perPage
	if total == 0 {
		total = 1 // an empty site still gets an index page
	}

	pages := make([]*Page, 0, total)
	for i := 0; i < total; i++ {
		start := i * perPage
		end := start + perPage
		if end > len(posts) {
			end = len(posts)
		}
		pages = append(pages, &Page{
			Number:  i + 1,
			Posts:   posts[start:end],
			Total:   total,
			PerPage: perPage,
		})
	}

	for i, page := range pages {
		if i > 0 {
			page.Prev = pages[i-1]
		}
		if i < len(pages)-1 {
			page.Next = pages[i+1]
		}
	}

	return pages, nil
}

// URL returns the output URL for a page: "/" for page 1, the paginate_path
// pattern with :num substituted for the rest.
func (p *Page) URL(paginatePath string) string {
	return PageURL(paginatePath, p.Number)
}

// PageURL computes the output URL for page num without materializing the
// page, so URL ownership can be established before rendering.
func PageURL(paginatePath string, num int) string {
	if num <= 1 {
		return "/"
	}
	url := strings.ReplaceAll(paginatePath, ":num", fmt.Sprintf("%d", num))
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}
