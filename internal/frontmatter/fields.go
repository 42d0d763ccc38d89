package frontmatter

import (
	"fmt"
	"strings"
	"time"
)

// Fields is the typed view over a document's front-matter. Recognized keys are
// promoted to typed fields; everything else lands in Extra untouched so
// templates can still reach it.
type Fields struct {
	Title      string
	Date       time.Time
	Categories []string
	Tags       []string
	Layout     string
	Draft      bool
	Permalink  string // explicit permalink override; empty means use the site pattern
	Extra      map[string]any
}

// HasDate reports whether an explicit date was present.
func (f Fields) HasDate() bool {
	return !f.Date.IsZero()
}

// dateLayouts are the accepted front-matter date formats, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFields promotes a raw front-matter map into typed Fields. Unrecognized
// keys are preserved in Extra.
func ParseFields(raw map[string]any) (Fields, error) {
	f := Fields{Extra: map[string]any{}}

	for key, value := range raw {
		switch key {
		case "title":
			f.Title = stringValue(value)
		case "date":
			date, err := dateValue(value)
			if err != nil {
				return Fields{}, fmt.Errorf("field %q: %w", key, err)
			}
			f.Date = date
		case "categories", "category":
			f.Categories = append(f.Categories, listValue(value)...)
		case "tags", "tag":
			f.Tags = append(f.Tags, listValue(value)...)
		case "layout":
			f.Layout = stringValue(value)
		case "draft":
			b, ok := value.(bool)
			if !ok {
				return Fields{}, fmt.Errorf("field %q: expected bool, got %T", key, value)
			}
			f.Draft = b
		case "permalink":
			f.Permalink = stringValue(value)
		default:
			f.Extra[key] = value
		}
	}

	return f, nil
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// listValue accepts either a YAML sequence or a single space-separated
// string, which is how categories frequently appear in blog front-matter.
func listValue(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s := strings.TrimSpace(stringValue(item))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Fields(t)
	case nil:
		return nil
	default:
		return []string{stringValue(t)}
	}
}

func dateValue(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	default:
		return time.Time{}, fmt.Errorf("expected date, got %T", v)
	}
}
