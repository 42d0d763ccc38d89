package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	meta, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, meta)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsMetaAndBody(t *testing.T) {
	input := []byte("---\ntitle: ASP.NET Core CI with Docker\n---\n# Intro\n")

	meta, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: ASP.NET Core CI with Docker\n"), meta)
	require.Equal(t, []byte("# Intro\n"), body)
}

func TestSplit_EmptyFrontmatterBlock_YieldsEmptyMeta(t *testing.T) {
	meta, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, meta)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: broken\n# Intro\n")

	_, _, had, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsMetaAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: v\r\n---\r\n# Intro\r\n")

	meta, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: v\r\n"), meta)
	require.Equal(t, []byte("# Intro\r\n"), body)
}

func TestSplit_DelimiterWithoutTrailingNewline_ReportsUnclosed(t *testing.T) {
	_, _, _, err := Split([]byte("---"))
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestJoin_ScaffoldsParseableDocument(t *testing.T) {
	out := Join([]byte("title: Hello World\ndraft: true"), []byte("\nBody text.\n"))

	meta, body, had, err := Split(out)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("\nBody text.\n"), body)

	fields, err := ParseYAML(meta)
	require.NoError(t, err)
	require.Equal(t, "Hello World", fields["title"])
	require.Equal(t, true, fields["draft"])
}

func TestParseYAML_Invalid_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte("title: [unclosed\n"))
	require.Error(t, err)
}

func TestParseYAML_Empty_ReturnsEmptyMap(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)
}
