package render

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
)

func TestConvert_GFMTable_RendersHTMLTable(t *testing.T) {
	md := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n")

	out, err := NewConverter().Convert(md)
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestConvert_RawHTML_PassesThrough(t *testing.T) {
	md := []byte("before\n\n<iframe src=\"https://example.com\"></iframe>\n\nafter\n")

	out, err := NewConverter().Convert(md)
	require.NoError(t, err)
	require.Contains(t, string(out), "<iframe")
}

func writeLayout(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestExecute_SingleLayout_SubstitutesFields(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "post.html", "<h1>{{.Page.Title}}</h1>{{.Content}}")

	set, err := LoadLayouts(dir)
	require.NoError(t, err)

	out, rerr := set.Execute("post", Context{
		Page:    PageInfo{Title: "Hello", URL: "/hello/"},
		Content: template.HTML("<p>body</p>"),
	})
	require.Nil(t, rerr)
	require.Equal(t, "<h1>Hello</h1><p>body</p>", string(out))
}

func TestExecute_LayoutChain_WrapsChildInParent(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "default.html", "<html><title>{{.Site.Title}}</title>{{.Content}}</html>")
	writeLayout(t, dir, "post.html", "---\nlayout: default\n---\n<article>{{.Content}}</article>")

	set, err := LoadLayouts(dir)
	require.NoError(t, err)

	out, rerr := set.Execute("post", Context{
		Site:    Site{Title: "Blog"},
		Content: template.HTML("x"),
	})
	require.Nil(t, rerr)
	require.Equal(t, "<html><title>Blog</title><article>x</article></html>", string(out))
}

func TestExecute_MissingLayout_IsRenderError(t *testing.T) {
	set, err := LoadLayouts(t.TempDir())
	require.NoError(t, err)

	_, rerr := set.Execute("post", Context{Page: PageInfo{URL: "/x/"}})
	require.NotNil(t, rerr)
	require.Equal(t, builderrors.CategoryRender, rerr.Category)
	require.False(t, rerr.Fatal())
}

func TestExecute_LayoutCycle_IsRenderError(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "a.html", "---\nlayout: b\n---\nA{{.Content}}")
	writeLayout(t, dir, "b.html", "---\nlayout: a\n---\nB{{.Content}}")

	set, err := LoadLayouts(dir)
	require.NoError(t, err)

	_, rerr := set.Execute("a", Context{})
	require.NotNil(t, rerr)
	require.Contains(t, rerr.Error(), "cycle")
}

func TestLoadLayouts_MissingDirectory_YieldsEmptySet(t *testing.T) {
	set, err := LoadLayouts(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	require.False(t, set.Has("default"))
}

func TestLoadLayouts_BadTemplateSyntax_IsFatal(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "broken.html", "{{.Page.Title")

	_, err := LoadLayouts(dir)
	require.Error(t, err)
	be, ok := err.(*builderrors.BuildError)
	require.True(t, ok)
	require.True(t, be.Fatal())
}

func TestExecute_FormatDateFunc_IsAvailable(t *testing.T) {
	dir := t.TempDir()
	writeLayout(t, dir, "post.html", `{{formatDate "2006-01-02" .Page.Date}}`)

	set, err := LoadLayouts(dir)
	require.NoError(t, err)

	out, rerr := set.Execute("post", Context{
		Page: PageInfo{Date: time.Date(2023, 10, 20, 0, 0, 0, 0, time.UTC)},
	})
	require.Nil(t, rerr)
	require.Equal(t, "2023-10-20", string(out))
}

func TestExcerpt_ReturnsFirstParagraph(t *testing.T) {
	fragment := []byte("<h1>Title</h1><p>First <em>paragraph</em>.</p><p>Second.</p>")

	require.Equal(t, "<p>First <em>paragraph</em>.</p>", Excerpt(fragment))
}

func TestExcerpt_NoParagraph_ReturnsEmpty(t *testing.T) {
	require.Equal(t, "", Excerpt([]byte("<ul><li>only a list</li></ul>")))
}
