// Package archive derives category and tag indexes from the post collection.
// Indexes are purely derived state, rebuilt from scratch on every build.
package archive

import (
	"sort"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/content"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/permalink"
)

// Index is one archive entry: every post carrying a given label, ordered by
// publication date descending. The index holds back-references; it does not
// own the documents.
type Index struct {
	Label string
	Slug  string
	Posts []*content.Document

	seen map[*content.Document]bool
}

// Archives holds the category and tag indexes for one build.
type Archives struct {
	Categories []*Index
	Tags       []*Index

	byCategory map[string]*Index
	byTag      map[string]*Index
}

// Build groups posts by category and by tag. A post without a given field
// contributes to no index for that field; a post may appear in several tag
// indexes at once. Labels that slug identically (each index renders at one
// /<kind>/<slug>/ page) share a single index, named after the label seen
// first.
func Build(posts []*content.Document) *Archives {
	a := &Archives{
		byCategory: map[string]*Index{},
		byTag:      map[string]*Index{},
	}
	catBySlug := map[string]*Index{}
	tagBySlug := map[string]*Index{}

	for _, post := range posts {
		for _, label := range post.Fields.Categories {
			add(a.byCategory, catBySlug, label, post)
		}
		for _, label := range post.Fields.Tags {
			add(a.byTag, tagBySlug, label, post)
		}
	}

	a.Categories = collect(catBySlug)
	a.Tags = collect(tagBySlug)
	return a
}

// Category returns the index for a category label, if any post carries it.
func (a *Archives) Category(label string) (*Index, bool) {
	idx, ok := a.byCategory[label]
	return idx, ok
}

// Tag returns the index for a tag label, if any post carries it.
func (a *Archives) Tag(label string) (*Index, bool) {
	idx, ok := a.byTag[label]
	return idx, ok
}

func add(byLabel, bySlug map[string]*Index, label string, post *content.Document) {
	idx, ok := byLabel[label]
	if !ok {
		slug := permalink.Slugify(label)
		if idx, ok = bySlug[slug]; !ok {
			idx = &Index{Label: label, Slug: slug}
			bySlug[slug] = idx
		}
		byLabel[label] = idx
	}
	idx.add(post)
}

// add appends a post once; a post carrying two labels that fold to the same
// slug still appears a single time in the merged index.
func (idx *Index) add(post *content.Document) {
	if idx.seen == nil {
		idx.seen = map[*content.Document]bool{}
	}
	if idx.seen[post] {
		return
	}
	idx.seen[post] = true
	idx.Posts = append(idx.Posts, post)
}

// collect orders each index date-descending (slug ascending on ties) and the
// index list itself by slug for deterministic output.
func collect(bySlug map[string]*Index) []*Index {
	out := make([]*Index, 0, len(bySlug))
	for _, idx := range bySlug {
		sort.SliceStable(idx.Posts, func(i, j int) bool {
			if !idx.Posts[i].Date().Equal(idx.Posts[j].Date()) {
				return idx.Posts[i].Date().After(idx.Posts[j].Date())
			}
			return idx.Posts[i].Slug < idx.Posts[j].Slug
		})
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}
