package site

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOutputPath_MapsURLStylesToFiles(t *testing.T) {
	dest := filepath.FromSlash("/out")
	cases := []struct {
		url  string
		want string
	}{
		{"/", "/out/index.html"},
		{"/about/", "/out/about/index.html"},
		{"/2023/10/20/post-title/", "/out/2023/10/20/post-title/index.html"},
		{"/archive.html", "/out/archive.html"},
		{"/notes/summary", "/out/notes/summary.html"},
	}
	for _, tc := range cases {
		require.Equal(t, filepath.FromSlash(tc.want), outputPath(dest, tc.url), tc.url)
	}
}
