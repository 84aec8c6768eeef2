package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careboard/careboard/internal/orm/schema"
)

// KeySegments returns the raw primary-key path segments of an entity route,
// in declaration order.
func KeySegments(r *http.Request, e *schema.EntityDescriptor) []string {
	segments := make([]string, len(e.PrimaryKey))
	for i, field := range e.PrimaryKey {
		segments[i] = chi.URLParam(r, field)
	}
	return segments
}
