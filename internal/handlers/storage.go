package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// StorageFiles serves stored images below root, mounted at /storage/*.
// Only regular files are served; directories never list their contents.
func StorageFiles(root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + chi.URLParam(r, "*"))
		if name == "/" {
			http.NotFound(w, r)
			return
		}
		target := filepath.Join(root, filepath.FromSlash(name))
		info, err := os.Stat(target)
		if err != nil || !info.Mode().IsRegular() {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeFile(w, r, target)
	}
}
