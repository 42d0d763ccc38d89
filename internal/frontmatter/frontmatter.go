// Package frontmatter splits and parses the YAML metadata header that
// prefixes content files.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// delimiter is the fence line that opens and closes a front-matter block.
const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a YAML
// front-matter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("front-matter start delimiter found but closing delimiter is missing")

// Split separates the YAML front-matter block from the body. Documents that
// do not open with a delimiter line have no front-matter: had is false and
// body is the full input. Both LF and CRLF line endings are accepted.
func Split(content []byte) (meta, body []byte, had bool, err error) {
	line, rest, ok := cutLine(content)
	if !ok || !isDelimiter(line) {
		return nil, content, false, nil
	}

	metaStart := len(content) - len(rest)
	for len(rest) > 0 {
		lineStart := len(content) - len(rest)
		line, next, _ := cutLine(rest)
		if isDelimiter(line) {
			return content[metaStart:lineStart], next, true, nil
		}
		rest = next
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// Join assembles a content file from YAML front-matter and body, used when
// scaffolding new posts.
func Join(meta, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	buf.Write(meta)
	if len(meta) > 0 && meta[len(meta)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(delimiter + "\n")
	buf.Write(body)
	return buf.Bytes()
}

// ParseYAML parses raw YAML front-matter (without delimiters) into a map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// cutLine splits off the first line, excluding its newline. ok is false only
// for empty input.
func cutLine(b []byte) (line, rest []byte, ok bool) {
	if len(b) == 0 {
		return nil, nil, false
	}
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimSuffix(line, []byte("\r"))) == delimiter
}
