package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/content"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/frontmatter"
)

func taggedPost(slug string, date time.Time, tags []string, categories []string) *content.Document {
	return &content.Document{
		SourcePath: "_posts/" + slug + ".md",
		Kind:       content.KindPost,
		Slug:       slug,
		Fields:     frontmatter.Fields{Date: date, Tags: tags, Categories: categories},
	}
}

func TestBuild_SharedTag_ContainsBothPostsDateDescending(t *testing.T) {
	older := taggedPost("first", time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC), []string{"a", "b"}, nil)
	newer := taggedPost("second", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), []string{"b", "c"}, nil)

	archives := Build([]*content.Document{older, newer})

	b, ok := archives.Tag("b")
	require.True(t, ok)
	require.Equal(t, []*content.Document{newer, older}, b.Posts)

	a, ok := archives.Tag("a")
	require.True(t, ok)
	require.Equal(t, []*content.Document{older}, a.Posts)

	c, ok := archives.Tag("c")
	require.True(t, ok)
	require.Equal(t, []*content.Document{newer}, c.Posts)
}

func TestBuild_PostWithoutField_ContributesNothing(t *testing.T) {
	bare := taggedPost("bare", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), nil, nil)

	archives := Build([]*content.Document{bare})
	require.Empty(t, archives.Tags)
	require.Empty(t, archives.Categories)
}

func TestBuild_Categories_AreIndexedSeparatelyFromTags(t *testing.T) {
	p := taggedPost("p", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), []string{"docker"}, []string{"aspnetcore"})

	archives := Build([]*content.Document{p})

	_, isTag := archives.Tag("docker")
	require.True(t, isTag)
	_, isCategory := archives.Category("docker")
	require.False(t, isCategory)

	cat, ok := archives.Category("aspnetcore")
	require.True(t, ok)
	require.Equal(t, "aspnetcore", cat.Slug)
}

func TestBuild_IndexList_IsOrderedBySlug(t *testing.T) {
	p := taggedPost("p", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), []string{"zeta", "Alpha", "midway"}, nil)

	archives := Build([]*content.Document{p})

	slugs := make([]string, 0, len(archives.Tags))
	for _, idx := range archives.Tags {
		slugs = append(slugs, idx.Slug)
	}
	require.Equal(t, []string{"alpha", "midway", "zeta"}, slugs)
}

func TestBuild_LabelsSharingSlug_MergeIntoOneIndex(t *testing.T) {
	older := taggedPost("first", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), []string{"ASP.NET Core"}, nil)
	newer := taggedPost("second", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), []string{"asp net core"}, nil)

	archives := Build([]*content.Document{older, newer})

	// Both labels render at /tags/asp-net-core/; two indexes would fight over
	// the same output file.
	require.Len(t, archives.Tags, 1)
	idx := archives.Tags[0]
	require.Equal(t, "asp-net-core", idx.Slug)
	require.Equal(t, "ASP.NET Core", idx.Label, "first label seen names the merged index")
	require.Equal(t, []*content.Document{newer, older}, idx.Posts)

	byFirst, ok := archives.Tag("ASP.NET Core")
	require.True(t, ok)
	require.Same(t, idx, byFirst)
	bySecond, ok := archives.Tag("asp net core")
	require.True(t, ok)
	require.Same(t, idx, bySecond)
}

func TestBuild_PostCarryingBothLabelVariants_ListedOnce(t *testing.T) {
	p := taggedPost("p", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), []string{"Go!", "go"}, nil)

	archives := Build([]*content.Document{p})

	require.Len(t, archives.Tags, 1)
	require.Equal(t, []*content.Document{p}, archives.Tags[0].Posts)
}

func TestBuild_EqualDates_TieBreakBySlug(t *testing.T) {
	date := time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC)
	z := taggedPost("zzz", date, []string{"t"}, nil)
	a := taggedPost("aaa", date, []string{"t"}, nil)

	archives := Build([]*content.Document{z, a})
	idx, ok := archives.Tag("t")
	require.True(t, ok)
	require.Equal(t, []*content.Document{a, z}, idx.Posts)
}
