// Package static serves the built single-page app.
package static

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/launch-site-go/internal/apierror"
)

const indexFile = "index.html"

// Handler serves files from fsys. Unknown paths get index.html so client
// routes resolve; unknown /api paths get a JSON 404 instead.
func Handler(fsys fs.FS) http.Handler {
	files := http.FileServerFS(fsys)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			writeNotFound(w)

			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			writeNotFound(w)

			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = indexFile
		}

		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)

			return
		}

		if path.Ext(name) != "" {
			http.NotFound(w, r)

			return
		}

		http.ServeFileFS(w, r, fsys, indexFile)
	})
}

// Mount installs the SPA as the router's fallback when dir holds an index.html.
// It reports whether anything was mounted.
func Mount(router chi.Router, dir string) (bool, error) {
	if dir == "" {
		return false, nil
	}

	fsys := os.DirFS(dir)

	if _, err := fs.Stat(fsys, indexFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	h := Handler(fsys)
	router.NotFound(h.ServeHTTP)

	return true, nil
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)

	_ = huma.DefaultJSONFormat.Marshal(w, apierror.NotFound("Not found"))
}
