// Package web serves the roster front-end.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// Prefix is the URL path the front-end is mounted under.
const Prefix = "/static/"

const indexFile = "index.html"

//go:embed static
var embedded embed.FS

// Files returns the front-end file system. A non-empty dir is served from
// disk instead of the embedded copy.
func Files(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "static")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Handler serves files under Prefix. index.html is served directly rather
// than redirected to the directory listing path.
func Handler(files fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(files))
	return http.StripPrefix(Prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path == indexFile {
			serveIndex(w, r, files)
			return
		}
		fileServer.ServeHTTP(w, r)
	}))
}

func serveIndex(w http.ResponseWriter, r *http.Request, files fs.FS) {
	data, err := fs.ReadFile(files, indexFile)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeContent(w, r, indexFile, time.Time{}, bytes.NewReader(data))
}
