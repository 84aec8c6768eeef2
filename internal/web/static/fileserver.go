// Package static serves the stylesheet and other assets embedded in the
// binary.
package static

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed assets
var embedded embed.FS

// FileServerConfig holds configuration for the static file server
type FileServerConfig struct {
	// Files is the file system to serve
	Files fs.FS

	// Prefix is the URL prefix to strip (e.g., "/static")
	Prefix string

	// MaxAge is the cache duration in seconds
	MaxAge int

	// EnableETag enables content hash ETags
	EnableETag bool

	// NotFoundHandler is called when a file is not found
	NotFoundHandler http.HandlerFunc

	etagCache *sync.Map
}

// Assets returns the embedded asset files
func Assets() fs.FS {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultFileServerConfig returns default static file server configuration
func DefaultFileServerConfig(files fs.FS) *FileServerConfig {
	return &FileServerConfig{
		Files:      files,
		Prefix:     "/static",
		MaxAge:     3600,
		EnableETag: true,
		etagCache:  &sync.Map{},
	}
}

// FileServer serves files from config.Files. Directories are never listed.
func FileServer(config *FileServerConfig) http.Handler {
	if config.etagCache == nil {
		config.etagCache = &sync.Map{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		urlPath := r.URL.Path
		if config.Prefix != "" {
			urlPath = strings.TrimPrefix(urlPath, config.Prefix)
		}
		name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
		if !fs.ValidPath(name) || name == "." {
			notFound(config, w, r)
			return
		}

		data, err := fs.ReadFile(config.Files, name)
		if err != nil {
			// ReadFile fails on directories as well as missing files
			notFound(config, w, r)
			return
		}

		setCacheHeaders(w, config.MaxAge)
		w.Header().Set("Content-Type", detectContentType(name))

		if config.EnableETag {
			etag := getETag(name, data, config.etagCache)
			w.Header().Set("ETag", etag)
			if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}

		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(data)
	})
}

// NewFileServer serves the embedded assets under prefix
func NewFileServer(prefix string) http.Handler {
	config := DefaultFileServerConfig(Assets())
	config.Prefix = prefix
	return FileServer(config)
}

func notFound(config *FileServerConfig, w http.ResponseWriter, r *http.Request) {
	if config.NotFoundHandler != nil {
		config.NotFoundHandler(w, r)
		return
	}
	http.NotFound(w, r)
}

func setCacheHeaders(w http.ResponseWriter, maxAge int) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
}

// detectContentType detects the content type from file extension
func detectContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// getETag returns the strong ETag of a file's content. Embedded files never
// change while the process runs, so the hash is computed once per name.
func getETag(name string, data []byte, cache *sync.Map) string {
	if etag, ok := cache.Load(name); ok {
		return etag.(string)
	}
	sum := sha256.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	cache.Store(name, etag)
	return etag
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == etag || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
