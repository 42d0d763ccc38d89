package content

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kashifsoofi/kashifsoofi.github.io/internal/config"
	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/frontmatter"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/logfields"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/observability"
)

// postsDir is the directory (relative to the source root) holding dated posts.
const postsDir = "_posts"

// postNamePattern matches Jekyll-style post file names: YYYY-MM-DD-slug.ext.
var postNamePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// SkippedFile records a content file that failed to parse and was excluded
// from the build.
type SkippedFile struct {
	Path string
	Err  *builderrors.BuildError
}

// ScanResult is the outcome of one content scan.
type ScanResult struct {
	Posts       []*Document // ordered date-descending
	Pages       []*Document
	StaticFiles []string // relative paths copied through unchanged
	Skipped     []SkippedFile

	DraftsExcluded int
	FutureExcluded int
}

// Documents returns posts and pages as one slice (posts first).
func (r *ScanResult) Documents() []*Document {
	out := make([]*Document, 0, len(r.Posts)+len(r.Pages))
	out = append(out, r.Posts...)
	out = append(out, r.Pages...)
	return out
}

// Loader scans the configured source tree for content documents.
type Loader struct {
	cfg *config.Config
	now func() time.Time
}

// NewLoader creates a content loader for the given site configuration.
func NewLoader(cfg *config.Config) *Loader {
	return &Loader{cfg: cfg, now: time.Now}
}

// Scan walks the source tree and yields one Document per recognized content
// file. Files with malformed front-matter are skipped and reported in the
// result, never fatal to the scan. Only filesystem traversal failures abort.
func (l *Loader) Scan(ctx context.Context) (*ScanResult, error) {
	result := &ScanResult{}

	root, err := filepath.Abs(l.cfg.Source)
	if err != nil {
		return nil, builderrors.WrapFileSystem(err, "resolve source root")
	}

	destAbs, _ := filepath.Abs(l.cfg.Destination)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			// Never descend into the destination tree.
			if abs, err := filepath.Abs(p); err == nil && abs == destAbs {
				return fs.SkipDir
			}
			if l.excluded(rel) && !l.isPostsPath(rel) {
				return fs.SkipDir
			}
			return nil
		}

		if l.excluded(rel) {
			return nil
		}

		switch {
		case l.isPostsPath(rel) && isMarkup(rel):
			l.loadPost(ctx, p, rel, result)
		case isMarkup(rel):
			l.loadPage(ctx, p, rel, result)
		default:
			result.StaticFiles = append(result.StaticFiles, rel)
		}
		return nil
	})
	if walkErr != nil {
		return nil, builderrors.WrapFileSystem(walkErr, "scan source tree")
	}

	sortPosts(result.Posts)
	sortPages(result.Pages)
	sort.Strings(result.StaticFiles)

	observability.InfoContext(ctx, "content scan complete",
		logfields.Count(len(result.Posts)+len(result.Pages)))

	return result, nil
}

func (l *Loader) loadPost(ctx context.Context, abs, rel string, result *ScanResult) {
	name := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	m := postNamePattern.FindStringSubmatch(name)

	doc, perr := l.readDocument(abs, rel, KindPost)
	if perr != nil {
		result.Skipped = append(result.Skipped, SkippedFile{Path: rel, Err: perr})
		observability.WarnContext(ctx, "skipping malformed post", logfields.Path(rel), logfields.Error(perr))
		return
	}

	if m != nil {
		doc.Slug = m[4]
		if !doc.Fields.HasDate() {
			// Filename date applies when front-matter carries none.
			if t, err := time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3]); err == nil {
				doc.Fields.Date = t
			}
		}
	} else {
		doc.Slug = name
	}

	if !doc.Fields.HasDate() {
		perr := builderrors.NewParseError(rel, errUndatedPost)
		result.Skipped = append(result.Skipped, SkippedFile{Path: rel, Err: perr})
		observability.WarnContext(ctx, "skipping undated post", logfields.Path(rel))
		return
	}

	if doc.Fields.Draft && !l.cfg.ShowDrafts {
		result.DraftsExcluded++
		return
	}
	if doc.Fields.Date.After(l.now()) && !l.cfg.Future {
		result.FutureExcluded++
		return
	}

	result.Posts = append(result.Posts, doc)
}

func (l *Loader) loadPage(ctx context.Context, abs, rel string, result *ScanResult) {
	doc, perr := l.readDocument(abs, rel, KindPage)
	if perr != nil {
		result.Skipped = append(result.Skipped, SkippedFile{Path: rel, Err: perr})
		observability.WarnContext(ctx, "skipping malformed page", logfields.Path(rel), logfields.Error(perr))
		return
	}
	doc.Slug = strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	result.Pages = append(result.Pages, doc)
}

func (l *Loader) readDocument(abs, rel string, kind Kind) (*Document, *builderrors.BuildError) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, builderrors.NewParseError(rel, err)
	}

	fm, body, _, err := frontmatter.Split(data)
	if err != nil {
		return nil, builderrors.NewParseError(rel, err)
	}

	raw, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return nil, builderrors.NewParseError(rel, err)
	}

	fields, err := frontmatter.ParseFields(raw)
	if err != nil {
		return nil, builderrors.NewParseError(rel, err)
	}

	info, err := os.Stat(abs)
	var lastMod time.Time
	if err == nil {
		lastMod = info.ModTime()
	}

	return &Document{
		SourcePath: rel,
		AbsPath:    abs,
		Kind:       kind,
		Fields:     fields,
		Body:       body,
		LastMod:    lastMod,
	}, nil
}

// excluded applies the path filter rules. Precedence: an explicit exclude
// entry always wins; an explicit include entry re-admits a path that a
// default exclude (dot-files, underscore-prefixed segments) would drop.
func (l *Loader) excluded(rel string) bool {
	if matchesAny(rel, l.cfg.Exclude) {
		return true
	}
	if matchesAny(rel, l.cfg.Include) {
		return false
	}
	return defaultExcluded(rel)
}

func (l *Loader) isPostsPath(rel string) bool {
	return rel == postsDir || strings.HasPrefix(rel, postsDir+"/")
}

func defaultExcluded(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg == postsDir {
			continue
		}
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func matchesAny(rel string, entries []string) bool {
	for _, entry := range entries {
		entry = strings.Trim(entry, "/")
		if entry == "" {
			continue
		}
		if rel == entry || strings.HasPrefix(rel, entry+"/") {
			return true
		}
	}
	return false
}

func isMarkup(rel string) bool {
	switch strings.ToLower(path.Ext(rel)) {
	case ".md", ".markdown", ".html":
		return true
	}
	return false
}

func sortPosts(posts []*Document) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date().Equal(posts[j].Date()) {
			return posts[i].Date().After(posts[j].Date())
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func sortPages(pages []*Document) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].SourcePath < pages[j].SourcePath
	})
}
