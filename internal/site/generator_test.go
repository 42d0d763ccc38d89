package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/config"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readOutput(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Destination, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// testSite creates a minimal source tree with a layout chain and returns its
// configuration.
func testSite(t *testing.T) *config.Config {
	t.Helper()
	src := t.TempDir()

	writeFile(t, src, "_layouts/default.html",
		"<html><body>{{.Content}}</body></html>")
	writeFile(t, src, "_layouts/post.html",
		"---\nlayout: default\n---\n<article><h1>{{.Page.Title}}</h1>{{.Content}}</article>")

	cfg := config.Default()
	cfg.Title = "Test Blog"
	cfg.BaseURL = "https://example.com"
	cfg.Source = src
	cfg.Destination = filepath.Join(src, "_site")
	return cfg
}

func TestBuild_RendersPostsAndPages(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-hello-world.md",
		"---\ntitle: Hello World\n---\nFirst **post**.")
	writeFile(t, cfg.Source, "about.md",
		"---\ntitle: About\nlayout: default\n---\nAbout me.")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, 1, report.Posts)
	require.Equal(t, 1, report.Pages)
	require.Equal(t, 2, report.Rendered)
	require.Zero(t, report.Failed)

	post := readOutput(t, cfg, "2023/01/02/hello-world/index.html")
	require.Contains(t, post, "<h1>Hello World</h1>")
	require.Contains(t, post, "<strong>post</strong>")
	require.Contains(t, post, "<html><body>")

	page := readOutput(t, cfg, "about/index.html")
	require.Contains(t, page, "About me.")
}

func TestBuild_PermalinkCollision_ProducesNoOutput(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-first.md",
		"---\ntitle: First\npermalink: /same/\n---\nA")
	writeFile(t, cfg.Source, "_posts/2023-01-03-second.md",
		"---\ntitle: Second\npermalink: /same/\n---\nB")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.Len(t, report.Issues, 1)
	require.Equal(t, IssueCollision, report.Issues[0].Code)

	// A collision aborts before rendering: nothing may be written.
	require.NoDirExists(t, cfg.Destination)
}

func TestBuild_PermalinkClaimsArchiveURL_FailsBeforeRendering(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-tagged.md",
		"---\ntitle: Tagged\ntags: [docker]\n---\nbody")
	writeFile(t, cfg.Source, "squatter.md",
		"---\ntitle: Squatter\nlayout: default\npermalink: /tags/docker/\n---\nbody")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.Equal(t, IssueCollision, report.Issues[0].Code)
	require.NoDirExists(t, cfg.Destination)
}

func TestBuild_PermalinkClaimsFeedURL_FailsBeforeRendering(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "feed.md",
		"---\ntitle: Not A Feed\nlayout: default\npermalink: /feed.xml\n---\nbody")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.NoDirExists(t, cfg.Destination)
}

func TestBuild_PermalinkClaimsIndexPageURL_FailsBeforeRendering(t *testing.T) {
	cfg := testSite(t)
	one := 1
	cfg.Paginate = &one
	writeFile(t, cfg.Source, "_layouts/home.html", "home")
	writeFile(t, cfg.Source, "_posts/2023-01-01-a.md", "---\ntitle: A\n---\nbody")
	writeFile(t, cfg.Source, "_posts/2023-01-02-b.md", "---\ntitle: B\n---\nbody")
	writeFile(t, cfg.Source, "page-two.md",
		"---\ntitle: Page Two\nlayout: default\npermalink: /page2/\n---\nbody")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.NoDirExists(t, cfg.Destination)
}

func TestBuild_MissingLayout_SkipsDocumentAndContinues(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-good.md",
		"---\ntitle: Good\n---\nFine.")
	writeFile(t, cfg.Source, "broken.md",
		"---\ntitle: Broken\nlayout: missing\n---\nNope.")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.Rendered)
	require.Equal(t, 1, report.Failed)
	require.Contains(t, report.FailedDocuments(), "broken.md")

	require.FileExists(t, filepath.Join(cfg.Destination, "2023/01/02/good/index.html"))
	require.NoFileExists(t, filepath.Join(cfg.Destination, "broken/index.html"))
}

func TestBuild_MalformedFrontMatter_ReportedNotFatal(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-good.md",
		"---\ntitle: Good\n---\nFine.")
	writeFile(t, cfg.Source, "_posts/2023-01-03-bad.md",
		"---\ntitle: unterminated\nBody without closing delimiter.")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Equal(t, 1, report.Posts)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, IssueParseFailure, report.Issues[0].Code)
}

func TestBuild_Pagination_WritesIndexPages(t *testing.T) {
	cfg := testSite(t)
	two := 2
	cfg.Paginate = &two
	writeFile(t, cfg.Source, "_layouts/home.html",
		"{{range .Paginator.Posts}}[{{.Title}}]{{end}} next={{.Paginator.NextPageURL}}")
	for _, name := range []string{"2023-01-01-a", "2023-01-02-b", "2023-01-03-c"} {
		writeFile(t, cfg.Source, "_posts/"+name+".md", "---\ntitle: "+name+"\n---\nbody")
	}

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)

	first := readOutput(t, cfg, "index.html")
	require.Contains(t, first, "[2023-01-03-c]")
	require.Contains(t, first, "[2023-01-02-b]")
	require.NotContains(t, first, "[2023-01-01-a]")
	require.Contains(t, first, "next=/page2/")

	second := readOutput(t, cfg, "page2/index.html")
	require.Contains(t, second, "[2023-01-01-a]")
}

func TestBuild_NoHomeLayout_IndexPagesSkippedWithWarning(t *testing.T) {
	src := t.TempDir()
	cfg := config.Default()
	cfg.Source = src
	cfg.Destination = filepath.Join(src, "_site")
	one := 1
	cfg.Paginate = &one
	writeFile(t, src, "_posts/2023-01-02-solo.md", "---\ntitle: Solo\n---\nbody")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)

	var codes []IssueCode
	for _, issue := range report.Issues {
		codes = append(codes, issue.Code)
	}
	require.Contains(t, codes, IssueMissingLayout)
	require.NoFileExists(t, filepath.Join(cfg.Destination, "index.html"))
}

func TestBuild_ArchivePages_WrittenPerCategoryAndTag(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_layouts/archive.html",
		"{{.Page.Title}}:{{range .Archive.Posts}}[{{.Title}}]{{end}}")
	writeFile(t, cfg.Source, "_posts/2023-01-02-alpha.md",
		"---\ntitle: Alpha\ncategories: [aspnetcore]\ntags: [docker, rest]\n---\nbody")
	writeFile(t, cfg.Source, "_posts/2023-01-03-beta.md",
		"---\ntitle: Beta\ntags: [docker]\n---\nbody")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeSuccess, report.Outcome)

	cat := readOutput(t, cfg, "categories/aspnetcore/index.html")
	require.Contains(t, cat, "aspnetcore:[Alpha]")

	docker := readOutput(t, cfg, "tags/docker/index.html")
	require.Contains(t, docker, "[Beta]")
	require.Contains(t, docker, "[Alpha]")
	require.True(t, strings.Index(docker, "[Beta]") < strings.Index(docker, "[Alpha]"),
		"archive posts must be newest first")

	require.FileExists(t, filepath.Join(cfg.Destination, "tags/rest/index.html"))
}

func TestBuild_WritesAtomFeed(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-hello.md",
		"---\ntitle: Hello Feed\n---\nbody")

	_, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)

	feed := readOutput(t, cfg, "feed.xml")
	require.Contains(t, feed, "<title>Hello Feed</title>")
	require.Contains(t, feed, "https://example.com/2023/01/02/hello/")
	require.Contains(t, feed, `xmlns="http://www.w3.org/2005/Atom"`)
}

func TestBuild_CopiesStaticFiles(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "css/site.css", "body { margin: 0 }")
	writeFile(t, cfg.Source, "images/logo.svg", "<svg/>")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.StaticFiles)
	require.Equal(t, "body { margin: 0 }", readOutput(t, cfg, "css/site.css"))
	require.FileExists(t, filepath.Join(cfg.Destination, "images/logo.svg"))
}

func TestBuild_CleansStaleDestination(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-keep.md", "---\ntitle: Keep\n---\nbody")
	writeFile(t, cfg.Destination, "stale/old.html", "stale output")

	_, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(cfg.Destination, "stale/old.html"))
	require.FileExists(t, filepath.Join(cfg.Destination, "2023/01/02/keep/index.html"))
}

func TestBuild_RecordsAllStageDurations(t *testing.T) {
	cfg := testSite(t)
	one := 1
	cfg.Paginate = &one
	writeFile(t, cfg.Source, "_layouts/home.html", "home")
	writeFile(t, cfg.Source, "_posts/2023-01-02-p.md", "---\ntitle: P\n---\nbody")

	report, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)

	for _, stage := range []string{StageScanning, StageIndexing, StagePaginating, StageRendering} {
		require.Contains(t, report.StageDurations, stage)
	}
	require.False(t, report.End.IsZero())
	require.GreaterOrEqual(t, report.Duration(), report.StageDurations[StageRendering])
}

func TestBuild_HTMLSourceBypassesMarkdownConversion(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "raw.html",
		"---\ntitle: Raw\nlayout: default\n---\n<p>**not markdown**</p>")

	_, err := NewGenerator(cfg).Build(context.Background())
	require.NoError(t, err)

	out := readOutput(t, cfg, "raw/index.html")
	require.Contains(t, out, "<p>**not markdown**</p>")
	require.NotContains(t, out, "<strong>")
}

func TestBuild_LastModResolver_FeedsUpdatedTimes(t *testing.T) {
	cfg := testSite(t)
	writeFile(t, cfg.Source, "_posts/2023-01-02-tracked.md",
		"---\ntitle: Tracked\n---\nbody")

	modified := time.Date(2023, 6, 1, 10, 30, 0, 0, time.UTC)
	gen := NewGenerator(cfg, WithLastMod(func(rel string) (time.Time, bool) {
		return modified, rel == "_posts/2023-01-02-tracked.md"
	}))
	_, err := gen.Build(context.Background())
	require.NoError(t, err)

	feed := readOutput(t, cfg, "feed.xml")
	require.Contains(t, feed, "<updated>2023-06-01T10:30:00Z</updated>")
	require.Contains(t, feed, "<published>2023-01-02T00:00:00Z</published>")
}
