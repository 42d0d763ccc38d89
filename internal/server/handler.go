package server

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var liveReloadTag = []byte(`<script src="/livereload.js"></script>`)

// siteHandler serves the generated site from destAbs. When livereload is
// enabled, HTML responses get the reload script injected before </body>.
func (s *Server) siteHandler(destAbs string) http.Handler {
	files := http.FileServer(http.Dir(destAbs))
	if !s.cfg.Serve.LiveReload {
		return files
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := htmlFilePath(destAbs, r.URL.Path)
		if path == "" {
			files.ServeHTTP(w, r)
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			files.ServeHTTP(w, r)
			return
		}
		data = injectLiveReload(data)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	})
}

// htmlFilePath resolves a request path to an HTML file under root, or ""
// when the request is not for an HTML page.
func htmlFilePath(root, urlPath string) string {
	clean := filepath.Clean("/" + urlPath)
	full := filepath.Join(root, filepath.FromSlash(clean))

	if strings.HasSuffix(urlPath, "/") || clean == string(filepath.Separator) {
		full = filepath.Join(full, "index.html")
	} else if fi, err := os.Stat(full); err == nil && fi.IsDir() {
		full = filepath.Join(full, "index.html")
	} else if !strings.EqualFold(filepath.Ext(full), ".html") {
		return ""
	}

	if fi, err := os.Stat(full); err != nil || fi.IsDir() {
		return ""
	}
	return full
}

// injectLiveReload inserts the reload script before </body>, or appends it
// when the page has no closing body tag.
func injectLiveReload(page []byte) []byte {
	idx := bytes.LastIndex(page, []byte("</body>"))
	if idx < 0 {
		return append(page, liveReloadTag...)
	}
	out := make([]byte, 0, len(page)+len(liveReloadTag))
	out = append(out, page[:idx]...)
	out = append(out, liveReloadTag...)
	out = append(out, page[idx:]...)
	return out
}
