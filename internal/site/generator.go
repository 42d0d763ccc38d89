// Package site orchestrates the build pipeline: scanning, indexing,
// paginating, and rendering, producing the output tree and a BuildReport.
package site

import (
	"context"
	"html/template"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/archive"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/config"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/content"
	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/logfields"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/metrics"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/observability"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/paginate"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/permalink"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/render"
)

// feedPostLimit caps the number of posts in the generated Atom feed.
const feedPostLimit = 20

// Generator runs full site builds. It is safe to reuse across builds; every
// build starts from a fresh scan.
type Generator struct {
	cfg       *config.Config
	converter *render.Converter
	recorder  metrics.Recorder
	lastMod   func(rel string) (time.Time, bool)
	workers   int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRecorder injects a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = rec }
}

// WithLastMod injects a last-modified resolver (git history); documents fall
// back to filesystem mtimes when absent.
func WithLastMod(fn func(rel string) (time.Time, bool)) Option {
	return func(g *Generator) { g.lastMod = fn }
}

// WithRenderWorkers overrides the render stage worker count.
func WithRenderWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// NewGenerator creates a site generator for the given configuration.
func NewGenerator(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:       cfg,
		converter: render.NewConverter(),
		recorder:  metrics.NoopRecorder{},
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build runs one full build. The returned report is always non-nil; err is
// non-nil only for fatal errors (config, collision, filesystem), in which
// case the partial output tree must not be trusted.
func (g *Generator) Build(ctx context.Context) (*BuildReport, error) {
	report := newReport(uuid.NewString())
	ctx = observability.WithBuildID(ctx, report.BuildID)
	defer report.finalize(g.recorder)

	observability.InfoContext(ctx, "build started", logfields.Path(g.cfg.Source))

	scan, err := g.runScan(ctx, report)
	if err != nil {
		return report, err
	}

	archives, err := g.runIndex(ctx, report, scan)
	if err != nil {
		return report, err
	}

	pages, err := g.runPaginate(ctx, report, scan)
	if err != nil {
		return report, err
	}

	if err := g.runRender(ctx, report, scan, archives, pages); err != nil {
		return report, err
	}

	observability.InfoContext(ctx, "build finished",
		logfields.Count(report.Rendered),
		logfields.DurationMS(float64(time.Since(report.Start).Milliseconds())))
	return report, nil
}

// runScan executes the scanning stage: content discovery and front-matter
// parsing. Malformed documents are reported, not fatal.
func (g *Generator) runScan(ctx context.Context, report *BuildReport) (*content.ScanResult, error) {
	ctx = observability.WithStage(ctx, StageScanning)
	start := time.Now()

	scan, err := content.NewLoader(g.cfg).Scan(ctx)
	if err != nil {
		report.Outcome = OutcomeFailed
		report.recordStage(StageScanning, start, metrics.ResultFatal, g.recorder)
		return nil, err
	}

	for _, skipped := range scan.Skipped {
		report.AddIssue(IssueParseFailure, StageScanning, SeverityError, skipped.Path, skipped.Err.Message)
	}
	report.Posts = len(scan.Posts)
	report.Pages = len(scan.Pages)
	report.StaticFiles = len(scan.StaticFiles)
	report.Skipped = len(scan.Skipped)
	report.DraftsExcluded = scan.DraftsExcluded
	report.FutureExcluded = scan.FutureExcluded

	result := metrics.ResultSuccess
	if len(scan.Skipped) > 0 {
		result = metrics.ResultWarning
	}
	report.recordStage(StageScanning, start, result, g.recorder)
	return scan, nil
}

// runIndex executes the indexing stage: archive construction, then permalink
// resolution over the complete document set. Archives come first so that the
// URLs of generated outputs are known and take part in the uniqueness check.
// A permalink collision is fatal and happens before any output file exists.
func (g *Generator) runIndex(ctx context.Context, report *BuildReport, scan *content.ScanResult) (*archive.Archives, error) {
	ctx = observability.WithStage(ctx, StageIndexing)
	start := time.Now()

	archives := archive.Build(scan.Posts)

	resolver := permalink.NewResolver(g.cfg.Permalink)
	if cerr := resolver.AssignURLs(scan.Documents(), g.reservedURLs(archives, len(scan.Posts))); cerr != nil {
		report.AddIssue(IssueCollision, StageIndexing, SeverityError, "", cerr.Message)
		report.Outcome = OutcomeFailed
		report.recordStage(StageIndexing, start, metrics.ResultFatal, g.recorder)
		return nil, cerr
	}

	observability.InfoContext(ctx, "archives indexed",
		logfields.Count(len(archives.Categories)+len(archives.Tags)))
	report.recordStage(StageIndexing, start, metrics.ResultSuccess, g.recorder)
	return archives, nil
}

// reservedURLs lists every URL the build itself will write: the feed, the
// archive pages, and the paginated index pages. No document permalink may
// claim one of them.
func (g *Generator) reservedURLs(archives *archive.Archives, postCount int) map[string]string {
	reserved := map[string]string{feedURL: "generated feed"}
	for _, idx := range archives.Categories {
		reserved[archiveURL("categories", idx)] = "generated category archive"
	}
	for _, idx := range archives.Tags {
		reserved[archiveURL("tags", idx)] = "generated tag archive"
	}
	if size, enabled := g.cfg.PageSize(); enabled {
		total := (postCount + size - 1) / size
		if total == 0 {
			total = 1
		}
		for num := 1; num <= total; num++ {
			reserved[paginate.PageURL(g.cfg.PaginatePath, num)] = "generated index page"
		}
	}
	return reserved
}

// runPaginate executes the paginating stage. Pagination is skipped entirely
// when the configuration carries no page size.
func (g *Generator) runPaginate(ctx context.Context, report *BuildReport, scan *content.ScanResult) ([]*paginate.Page, error) {
	ctx = observability.WithStage(ctx, StagePaginating)
	start := time.Now()

	size, enabled := g.cfg.PageSize()
	if !enabled {
		report.recordStage(StagePaginating, start, metrics.ResultSuccess, g.recorder)
		return nil, nil
	}

	pages, err := paginate.Paginate(scan.Posts, size)
	if err != nil {
		report.AddIssue(IssueConfigInvalid, StagePaginating, SeverityError, "", err.Error())
		report.Outcome = OutcomeFailed
		report.recordStage(StagePaginating, start, metrics.ResultFatal, g.recorder)
		return nil, err
	}

	observability.InfoContext(ctx, "posts paginated", logfields.Count(len(pages)))
	report.recordStage(StagePaginating, start, metrics.ResultSuccess, g.recorder)
	return pages, nil
}

// runRender executes the rendering stage: layout loading, destination
// preparation, parallel document rendering, then the derived pages (indexes,
// archives, feed) and static copies.
func (g *Generator) runRender(ctx context.Context, report *BuildReport, scan *content.ScanResult, archives *archive.Archives, pages []*paginate.Page) error {
	ctx = observability.WithStage(ctx, StageRendering)
	start := time.Now()

	fatal := func(err error) error {
		report.Outcome = OutcomeFailed
		report.recordStage(StageRendering, start, metrics.ResultFatal, g.recorder)
		return err
	}

	layouts, err := render.LoadLayouts(g.layoutsPath())
	if err != nil {
		return fatal(err)
	}

	dest, err := filepath.Abs(g.cfg.Destination)
	if err != nil {
		return fatal(builderrors.WrapFileSystem(err, "resolve destination"))
	}
	if err := os.RemoveAll(dest); err != nil {
		return fatal(builderrors.WrapFileSystem(err, "clean destination"))
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fatal(builderrors.WrapFileSystem(err, "create destination"))
	}

	siteCtx := g.siteContext()
	g.stampLastMod(scan)

	g.renderDocuments(ctx, report, scan.Documents(), layouts, siteCtx, dest)
	g.renderIndexPages(ctx, report, pages, layouts, siteCtx, dest)
	g.renderArchivePages(ctx, report, archives, layouts, siteCtx, dest)
	g.copyStaticFiles(ctx, report, scan.StaticFiles, dest)

	if err := writeFeed(dest, siteCtx, scan.Posts, feedPostLimit); err != nil {
		return fatal(builderrors.WrapFileSystem(err, "write feed"))
	}

	result := metrics.ResultSuccess
	if report.Failed > 0 {
		result = metrics.ResultWarning
	}
	report.recordStage(StageRendering, start, result, g.recorder)
	return nil
}

// renderDocuments fans the independent documents out over a bounded worker
// pool. Workers only append to the report under its lock; no other shared
// state is mutated.
func (g *Generator) renderDocuments(ctx context.Context, report *BuildReport, docs []*content.Document, layouts *render.LayoutSet, siteCtx render.Site, dest string) {
	workers := g.workers
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers < 1 {
		workers = 1
	}
	g.recorder.SetRenderConcurrency(workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	work := make(chan *content.Document)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range work {
				dctx := observability.WithDocument(ctx, doc.SourcePath)
				if rerr := g.renderDocument(doc, layouts, siteCtx, dest); rerr != nil {
					observability.WarnContext(dctx, "document render failed", logfields.Error(rerr))
					code := IssueRenderFailure
					if rerr.Category == builderrors.CategoryFileSystem {
						code = IssueWriteFailure
					}
					report.AddIssue(code, StageRendering, SeverityError, doc.SourcePath, rerr.Message)
					g.recorder.IncDocumentFailed(string(doc.Kind))
					mu.Lock()
					report.Failed++
					mu.Unlock()
					continue
				}
				g.recorder.IncDocumentRendered(string(doc.Kind))
				mu.Lock()
				report.Rendered++
				mu.Unlock()
			}
		}()
	}

	for _, doc := range docs {
		work <- doc
	}
	close(work)
	wg.Wait()
}

// renderDocument converts one document's body, applies its layout chain, and
// writes the result under dest.
func (g *Generator) renderDocument(doc *content.Document, layouts *render.LayoutSet, siteCtx render.Site, dest string) *builderrors.BuildError {
	var body []byte
	if strings.EqualFold(filepath.Ext(doc.SourcePath), ".html") {
		body = doc.Body
	} else {
		converted, err := g.converter.Convert(doc.Body)
		if err != nil {
			return builderrors.NewRenderError(doc.SourcePath, err)
		}
		body = converted
	}
	doc.HTML = body

	pctx := render.Context{
		Site:    siteCtx,
		Page:    pageInfo(doc),
		Content: template.HTML(body),
	}
	out, rerr := layouts.Execute(doc.Layout(), pctx)
	if rerr != nil {
		return rerr
	}

	if err := writeOutput(dest, doc.URL, out); err != nil {
		return builderrors.Wrap(err, builderrors.CategoryFileSystem, builderrors.SeverityError,
			"write "+doc.SourcePath)
	}
	return nil
}

// renderIndexPages writes the paginated post listing: page 1 at the site
// root, the rest under paginate_path.
func (g *Generator) renderIndexPages(ctx context.Context, report *BuildReport, pages []*paginate.Page, layouts *render.LayoutSet, siteCtx render.Site, dest string) {
	if len(pages) == 0 {
		return
	}

	layout := g.listingLayout(layouts, "home")
	if layout == "" {
		report.AddIssue(IssueMissingLayout, StageRendering, SeverityWarning, "",
			"no home or default layout; index pages skipped")
		return
	}

	for _, page := range pages {
		url := page.URL(g.cfg.PaginatePath)
		pctx := render.Context{
			Site:      siteCtx,
			Page:      render.PageInfo{Title: siteCtx.Title, URL: url},
			Paginator: paginatorContext(page, g.cfg.PaginatePath),
		}
		out, rerr := layouts.Execute(layout, pctx)
		if rerr != nil {
			report.AddIssue(IssueRenderFailure, StageRendering, SeverityError, url, rerr.Message)
			report.Failed++
			continue
		}
		if err := writeOutput(dest, url, out); err != nil {
			report.AddIssue(IssueWriteFailure, StageRendering, SeverityError, url, err.Error())
			report.Failed++
			continue
		}
		observability.DebugContext(ctx, "index page written", logfields.URL(url))
	}
}

// renderArchivePages writes one page per category and per tag index.
func (g *Generator) renderArchivePages(ctx context.Context, report *BuildReport, archives *archive.Archives, layouts *render.LayoutSet, siteCtx render.Site, dest string) {
	layout := g.listingLayout(layouts, "archive")
	if layout == "" {
		if len(archives.Categories) > 0 || len(archives.Tags) > 0 {
			report.AddIssue(IssueMissingLayout, StageRendering, SeverityWarning, "",
				"no archive or default layout; archive pages skipped")
		}
		return
	}

	write := func(base string, idx *archive.Index) {
		url := archiveURL(base, idx)
		pctx := render.Context{
			Site:    siteCtx,
			Page:    render.PageInfo{Title: idx.Label, URL: url},
			Archive: archiveContext(idx),
		}
		out, rerr := layouts.Execute(layout, pctx)
		if rerr != nil {
			report.AddIssue(IssueRenderFailure, StageRendering, SeverityError, url, rerr.Message)
			report.Failed++
			return
		}
		if err := writeOutput(dest, url, out); err != nil {
			report.AddIssue(IssueWriteFailure, StageRendering, SeverityError, url, err.Error())
			report.Failed++
			return
		}
		observability.DebugContext(ctx, "archive page written", logfields.URL(url), logfields.Label(idx.Label))
	}

	for _, idx := range archives.Categories {
		write("categories", idx)
	}
	for _, idx := range archives.Tags {
		write("tags", idx)
	}
}

// copyStaticFiles mirrors non-content files into the destination unchanged.
func (g *Generator) copyStaticFiles(ctx context.Context, report *BuildReport, files []string, dest string) {
	srcRoot, err := filepath.Abs(g.cfg.Source)
	if err != nil {
		return
	}
	for _, rel := range files {
		src := filepath.Join(srcRoot, filepath.FromSlash(rel))
		dst := filepath.Join(dest, filepath.FromSlash(rel))
		if err := copyFile(src, dst); err != nil {
			report.AddIssue(IssueWriteFailure, StageRendering, SeverityError, rel, err.Error())
			report.Failed++
			continue
		}
	}
	observability.DebugContext(ctx, "static files copied", logfields.Count(len(files)))
}

// listingLayout picks the preferred layout for generated listing pages,
// falling back to default.
func (g *Generator) listingLayout(layouts *render.LayoutSet, preferred string) string {
	if layouts.Has(preferred) {
		return preferred
	}
	if layouts.Has("default") {
		return "default"
	}
	return ""
}

func (g *Generator) layoutsPath() string {
	if filepath.IsAbs(g.cfg.LayoutsDir) {
		return g.cfg.LayoutsDir
	}
	return filepath.Join(g.cfg.Source, g.cfg.LayoutsDir)
}

func (g *Generator) siteContext() render.Site {
	return render.Site{
		Title:       g.cfg.Title,
		Description: g.cfg.Description,
		BaseURL:     g.cfg.BaseURL,
		Time:        time.Now(),
		Extra:       g.cfg.Extra,
	}
}

// stampLastMod fills in document last-modified times from git history when a
// resolver is configured; the scan's file mtimes remain the fallback.
func (g *Generator) stampLastMod(scan *content.ScanResult) {
	if g.lastMod == nil {
		return
	}
	for _, doc := range scan.Documents() {
		if t, ok := g.lastMod(doc.SourcePath); ok {
			doc.LastMod = t
		}
	}
}

func pageInfo(doc *content.Document) render.PageInfo {
	return render.PageInfo{
		Title:      doc.Title(),
		URL:        doc.URL,
		Date:       doc.Date(),
		Categories: doc.Fields.Categories,
		Tags:       doc.Fields.Tags,
		Content:    template.HTML(doc.HTML),
		Excerpt:    template.HTML(render.Excerpt(doc.HTML)),
	}
}

func paginatorContext(page *paginate.Page, paginatePath string) *render.Paginator {
	p := &render.Paginator{
		PageNumber: page.Number,
		TotalPages: page.Total,
		PerPage:    page.PerPage,
	}
	for _, post := range page.Posts {
		p.Posts = append(p.Posts, pageInfo(post))
	}
	if page.Prev != nil {
		p.PreviousPageURL = page.Prev.URL(paginatePath)
	}
	if page.Next != nil {
		p.NextPageURL = page.Next.URL(paginatePath)
	}
	return p
}

func archiveURL(base string, idx *archive.Index) string {
	return "/" + base + "/" + idx.Slug + "/"
}

func archiveContext(idx *archive.Index) *render.ArchiveInfo {
	info := &render.ArchiveInfo{Label: idx.Label, Slug: idx.Slug}
	for _, post := range idx.Posts {
		info.Posts = append(info.Posts, pageInfo(post))
	}
	return info
}
