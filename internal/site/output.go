package site

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// outputPath maps a site URL to a file path under dest. Directory-style URLs
// get an index.html; URLs with an extension map to the file directly.
func outputPath(dest, url string) string {
	rel := strings.TrimPrefix(url, "/")
	if rel == "" || strings.HasSuffix(url, "/") {
		rel = filepath.Join(rel, "index.html")
	} else if filepath.Ext(rel) == "" {
		rel += ".html"
	}
	return filepath.Join(dest, filepath.FromSlash(rel))
}

// writeOutput writes a rendered page at the file corresponding to its URL,
// creating parent directories as needed.
func writeOutput(dest, url string, data []byte) error {
	path := outputPath(dest, url)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// copyFile copies src to dst byte for byte, creating parent directories.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
