// Package uploads names, locates and serves files kept in a waffle
// storage.Store (profile image, resume).
package uploads

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Path builds a unique object path: dir/YYYY/MM/xxxxxxxx-filename.
func Path(dir, filename string) string {
	now := time.Now().UTC()
	name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], SanitizeFilename(filename))
	return path.Join(dir, fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", now.Month()), name)
}

// SanitizeFilename keeps letters, digits, '-', '_' and '.', replacing
// everything else, and caps the length at 100 while keeping the extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 || string(result) == "." || string(result) == ".." {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}

// PathFromURL reverses store.URL. ok is false for URLs the store did not
// produce, such as links an admin pasted in by hand.
func PathFromURL(store storage.Store, url string) (p string, ok bool) {
	if url == "" {
		return "", false
	}
	base := strings.TrimSuffix(store.URL("x"), "x")
	if base == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(url, base)
	if !ok || storage.ValidatePath(rest) != nil {
		return "", false
	}
	return rest, true
}

// Handler serves objects from store. Mount it at "<prefix>/*"; the object
// path is the wildcard. Directories and missing objects are 404.
func Handler(store storage.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := chi.URLParam(r, "*")
		if p == "" || strings.HasSuffix(p, "/") {
			http.NotFound(w, r)
			return
		}

		info, err := store.Head(r.Context(), p)
		if err != nil {
			serveErr(w, r, err)
			return
		}
		rc, err := store.Get(r.Context(), p)
		if err != nil {
			serveErr(w, r, err)
			return
		}
		defer rc.Close()

		w.Header().Set("X-Content-Type-Options", "nosniff")
		if info.ContentType != "" {
			w.Header().Set("Content-Type", info.ContentType)
		}
		if rs, ok := rc.(io.ReadSeeker); ok {
			http.ServeContent(w, r, path.Base(p), info.LastModified, rs)
			return
		}
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
		if !info.LastModified.IsZero() {
			w.Header().Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
		}
		if r.Method == http.MethodHead {
			return
		}
		_, _ = io.Copy(w, rc)
	})
}

func serveErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidPath):
		http.NotFound(w, r)
	case errors.Is(err, storage.ErrPermissionDenied):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
