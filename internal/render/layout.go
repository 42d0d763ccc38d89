package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
	"github.com/kashifsoofi/kashifsoofi.github.io/internal/frontmatter"
)

// Layout is one parsed layout template. A layout may name a parent layout in
// its own front-matter (`layout: default`); rendering walks the chain
// outward, injecting each result as the parent's Content.
type Layout struct {
	Name   string
	Parent string
	tmpl   *template.Template
}

// LayoutSet holds all layouts found in the layouts directory.
type LayoutSet struct {
	layouts map[string]*Layout
}

var layoutFuncs = template.FuncMap{
	"formatDate": func(layout string, t time.Time) string { return t.Format(layout) },
	"slice":      func(s []PageInfo, n int) []PageInfo {
		if n > len(s) {
			n = len(s)
		}
		return s[:n]
	},
}

// LoadLayouts parses every .html file in dir. A missing directory yields an
// empty set; individual documents referencing a layout then fail with a
// RenderError rather than the whole build.
func LoadLayouts(dir string) (*LayoutSet, error) {
	set := &LayoutSet{layouts: map[string]*Layout{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, builderrors.WrapFileSystem(err, fmt.Sprintf("read layouts directory %s", dir))
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".html")
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, builderrors.WrapFileSystem(err, fmt.Sprintf("read layout %s", entry.Name()))
		}

		fm, body, _, err := frontmatter.Split(data)
		if err != nil {
			return nil, builderrors.Wrap(err, builderrors.CategoryRender, builderrors.SeverityFatal,
				fmt.Sprintf("layout %s has malformed front-matter", entry.Name()))
		}

		parent := ""
		if len(fm) > 0 {
			raw, err := frontmatter.ParseYAML(fm)
			if err != nil {
				return nil, builderrors.Wrap(err, builderrors.CategoryRender, builderrors.SeverityFatal,
					fmt.Sprintf("layout %s has malformed front-matter", entry.Name()))
			}
			if v, ok := raw["layout"].(string); ok {
				parent = v
			}
		}

		tmpl, err := template.New(name).Funcs(layoutFuncs).Parse(string(body))
		if err != nil {
			return nil, builderrors.Wrap(err, builderrors.CategoryRender, builderrors.SeverityFatal,
				fmt.Sprintf("parse layout %s", entry.Name()))
		}

		set.layouts[name] = &Layout{Name: name, Parent: parent, tmpl: tmpl}
	}

	return set, nil
}

// Has reports whether a layout with the given name exists.
func (s *LayoutSet) Has(name string) bool {
	_, ok := s.layouts[name]
	return ok
}

// Execute renders ctx through the named layout and its parent chain. The
// innermost layout sees ctx.Content as passed in; each parent sees the child's
// output. A missing layout anywhere in the chain is a RenderError.
func (s *LayoutSet) Execute(name string, ctx Context) ([]byte, *builderrors.BuildError) {
	content := ctx.Content
	seen := map[string]bool{}

	for name != "" {
		if seen[name] {
			return nil, builderrors.NewRenderError(ctx.Page.URL,
				fmt.Errorf("layout chain cycle at %q", name))
		}
		seen[name] = true

		layout, ok := s.layouts[name]
		if !ok {
			return nil, builderrors.NewRenderError(ctx.Page.URL,
				fmt.Errorf("layout %q not found", name))
		}

		ctx.Content = content
		var buf strings.Builder
		if err := layout.tmpl.Execute(&buf, ctx); err != nil {
			return nil, builderrors.NewRenderError(ctx.Page.URL,
				fmt.Errorf("execute layout %q: %w", name, err))
		}

		content = template.HTML(buf.String())
		name = layout.Parent
	}

	return []byte(content), nil
}
