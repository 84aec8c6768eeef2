// Package router wraps chi with named routes, route introspection and the
// generation of the CRUD routes of every registered entity.
package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/careboard/careboard/internal/web/middleware"
)

// Router manages HTTP routing using chi
type Router struct {
	mux    chi.Router
	routes []*Route
	byName map[string]*Route
}

// Route is one registered route
type Route struct {
	Method  string           // GET, POST
	Pattern string           // /jobs/edit/{job_id}
	Name    string           // jobs.edit
	Handler http.HandlerFunc // Handler function

	// Entity and Operation are set for generated entity routes
	Entity    string
	Operation Operation
}

// RouteInfo describes a route for listings
type RouteInfo struct {
	Method     string
	Pattern    string
	Name       string
	Parameters []string
}

// NewRouter creates a new Router
func NewRouter() *Router {
	return &Router{
		mux:    chi.NewRouter(),
		byName: make(map[string]*Route),
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Use adds middleware to every route. It must be called before any route is
// registered.
func (r *Router) Use(middlewares ...middleware.Middleware) {
	for _, m := range middlewares {
		r.mux.Use(m)
	}
}

// Get registers a GET route
func (r *Router) Get(pattern string, handler http.HandlerFunc) *Route {
	return r.addRoute(http.MethodGet, pattern, handler)
}

// Post registers a POST route
func (r *Router) Post(pattern string, handler http.HandlerFunc) *Route {
	return r.addRoute(http.MethodPost, pattern, handler)
}

// Mount attaches a handler under a path prefix. Mounted handlers are not
// listed by Routes.
func (r *Router) Mount(pattern string, handler http.Handler) {
	r.mux.Mount(pattern, handler)
}

func (r *Router) addRoute(method, pattern string, handler http.HandlerFunc) *Route {
	r.mux.Method(method, pattern, handler)

	route := &Route{Method: method, Pattern: pattern, Handler: handler}
	r.routes = append(r.routes, route)
	return route
}

// Named sets the route name used by URL
func (r *Router) Named(route *Route, name string) (*Route, error) {
	if existing, ok := r.byName[name]; ok && existing != route {
		return nil, fmt.Errorf("route name %q already used by %s %s", name, existing.Method, existing.Pattern)
	}
	route.Name = name
	r.byName[name] = route
	return route, nil
}

// NotFound sets the handler for unmatched paths
func (r *Router) NotFound(handler http.HandlerFunc) {
	r.mux.NotFound(handler)
}

// MethodNotAllowed sets the handler for a known path with another method
func (r *Router) MethodNotAllowed(handler http.HandlerFunc) {
	r.mux.MethodNotAllowed(handler)
}

// Routes lists every registered route in registration order
func (r *Router) Routes() []RouteInfo {
	infos := make([]RouteInfo, len(r.routes))
	for i, route := range r.routes {
		infos[i] = RouteInfo{
			Method:     route.Method,
			Pattern:    route.Pattern,
			Name:       route.Name,
			Parameters: Parameters(route.Pattern),
		}
	}
	return infos
}

// Route returns the route registered under name
func (r *Router) Route(name string) (*Route, error) {
	route, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("route not found: %s", name)
	}
	return route, nil
}

// URL builds the path of a named route, substituting params for the
// pattern's placeholders in order.
func (r *Router) URL(name string, params ...string) (string, error) {
	route, err := r.Route(name)
	if err != nil {
		return "", err
	}

	parts := strings.Split(route.Pattern, "/")
	next := 0
	for i, part := range parts {
		if !isPlaceholder(part) {
			continue
		}
		if next >= len(params) {
			return "", fmt.Errorf("route %s: missing value for %s", name, part)
		}
		parts[i] = params[next]
		next++
	}
	if next != len(params) {
		return "", fmt.Errorf("route %s takes %d parameters, got %d", name, next, len(params))
	}
	return strings.Join(parts, "/"), nil
}

// Parameters returns the placeholder names of a pattern in order
func Parameters(pattern string) []string {
	var params []string
	for _, part := range strings.Split(pattern, "/") {
		if isPlaceholder(part) {
			params = append(params, strings.Trim(part, "{}"))
		}
	}
	return params
}

func isPlaceholder(part string) bool {
	return strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}")
}
