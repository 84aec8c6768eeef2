package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// PathSet matches request paths against exact paths and path prefixes
type PathSet struct {
	Exact    []string
	Prefixes []string
}

// Contains reports whether path is in the set
func (s PathSet) Contains(path string) bool {
	if slices.Contains(s.Exact, path) {
		return true
	}
	return slices.ContainsFunc(s.Prefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

// Except wraps m so that requests for paths in skip bypass it and reach the
// next handler directly.
func Except(skip PathSet, m Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := m(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := wrapped
			if skip.Contains(r.URL.Path) {
				h = next
			}
			h.ServeHTTP(w, r)
		})
	}
}
