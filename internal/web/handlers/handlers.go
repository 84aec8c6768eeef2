// Package handlers adapts the generated routes to the resource engine. Each
// handler decodes the request, runs one engine operation and either renders
// a page or redirects back to the entity list with a flash message.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/resource"
	"github.com/careboard/careboard/internal/web/request"
	"github.com/careboard/careboard/internal/web/router"
	"github.com/careboard/careboard/internal/web/session"
	"github.com/careboard/careboard/internal/web/view"
)

// DashboardRoute and HealthRoute name the non-entity routes
const (
	DashboardRoute = "dashboard"
	HealthRoute    = "healthz"
)

// Pinger checks that the store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config holds the collaborators of the handlers
type Config struct {
	Engine *resource.Engine
	Views  *view.Renderer
	URLs   view.URLBuilder
	Parser *request.Parser
	DB     Pinger
	Logger *zap.Logger

	// HealthTimeout bounds the store ping of the health check
	HealthTimeout time.Duration
}

// Handlers serves the dashboard, the entity pages and the health check
type Handlers struct {
	engine        *resource.Engine
	views         *view.Renderer
	urls          view.URLBuilder
	parser        *request.Parser
	db            Pinger
	logger        *zap.Logger
	healthTimeout time.Duration
}

// New creates the handlers
func New(cfg Config) *Handlers {
	h := &Handlers{
		engine:        cfg.Engine,
		views:         cfg.Views,
		urls:          cfg.URLs,
		parser:        cfg.Parser,
		db:            cfg.DB,
		logger:        cfg.Logger,
		healthTimeout: cfg.HealthTimeout,
	}
	if h.parser == nil {
		h.parser = request.NewParser()
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.healthTimeout <= 0 {
		h.healthTimeout = 2 * time.Second
	}
	return h
}

// Register adds the dashboard, the health check and the routes of every
// registered entity to r.
func (h *Handlers) Register(r *router.Router) error {
	if _, err := r.Named(r.Get("/", h.Dashboard), DashboardRoute); err != nil {
		return err
	}
	if _, err := r.Named(r.Get("/healthz", h.Health), HealthRoute); err != nil {
		return err
	}

	for _, e := range h.engine.Registry().All() {
		if err := r.RegisterEntity(e, h.entityHandlers(e)); err != nil {
			return fmt.Errorf("register %s: %w", e.Name, err)
		}
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	return nil
}

func (h *Handlers) entityHandlers(e *schema.EntityDescriptor) router.EntityHandlers {
	return router.EntityHandlers{
		List:   h.list(e),
		New:    h.newForm(e),
		Create: h.create(e),
		Edit:   h.editForm(e),
		Update: h.update(e),
		Delete: h.delete(e),
	}
}

// Dashboard shows the record count of every entity
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.engine.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, view.PageDashboard, &view.Page{Title: "Dashboard", Counts: counts})
}

// Health reports whether the store answers a ping
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

// NotFound renders the not-found page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound)
}

// MethodNotAllowed renders the method-not-allowed page
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusMethodNotAllowed)
}

func (h *Handlers) list(e *schema.EntityDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listing, err := h.engine.List(r.Context(), e.Name)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, view.PageList, &view.Page{Title: e.Title, Listing: listing})
	}
}

func (h *Handlers) newForm(e *schema.EntityDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.engine.NewForm(e.Name)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, view.PageForm, &view.Page{Title: "New " + e.Title, Form: form})
	}
}

func (h *Handlers) create(e *schema.EntityDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := h.parseForm(w, r)
		if !ok {
			return
		}

		key, err := h.engine.Create(r.Context(), e.Name, in)
		if err != nil {
			h.reject(w, r, resource.SubmittedForm(e, nil, in), err)
			return
		}

		h.logger.Info("record created", zap.String("entity", e.Name), zap.Stringer("key", key))
		h.redirect(w, r, e, session.FlashSuccess, fmt.Sprintf("%s record created.", e.Title))
	}
}

func (h *Handlers) editForm(e *schema.EntityDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := h.engine.EditForm(r.Context(), e.Name, router.KeySegments(r, e))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, view.PageForm, &view.Page{Title: "Edit " + e.Title, Form: form})
	}
}

func (h *Handlers) update(e *schema.EntityDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments := router.KeySegments(r, e)
		in, ok := h.parseForm(w, r)
		if !ok {
			return
		}

		if err := h.engine.Update(r.Context(), e.Name, segments, in); err != nil {
			var key crud.Key
			if resource.IsClientError(err) {
				// Client errors are only raised once the key resolved
				key, _ = resource.DecodeKey(e, segments)
			}
			h.reject(w, r, resource.SubmittedForm(e, key, in), err)
			return
		}

		h.logger.Info("record updated", zap.String("entity", e.Name), zap.Strings("key", segments))
		h.redirect(w, r, e, session.FlashSuccess, fmt.Sprintf("%s record updated.", e.Title))
	}
}

func (h *Handlers) delete(e *schema.EntityDescriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		segments := router.KeySegments(r, e)
		if err := h.engine.Delete(r.Context(), e.Name, segments); err != nil {
			h.fail(w, r, err)
			return
		}

		h.logger.Info("record deleted", zap.String("entity", e.Name), zap.Strings("key", segments))
		h.redirect(w, r, e, session.FlashInfo, fmt.Sprintf("%s record deleted.", e.Title))
	}
}

// parseForm reads the submitted form. On failure the error page has already
// been written.
func (h *Handlers) parseForm(w http.ResponseWriter, r *http.Request) (resource.Input, bool) {
	values, err := h.parser.ParseForm(w, r)
	if err == nil {
		return resource.Input(values), true
	}

	status := http.StatusBadRequest
	if errors.Is(err, request.ErrBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	h.logger.Info("form rejected", zap.String("path", r.URL.Path), zap.Error(err))
	h.renderError(w, r, status)
	return nil, false
}

// redirect queues a flash message and sends the browser back to the entity
// list.
func (h *Handlers) redirect(w http.ResponseWriter, r *http.Request, e *schema.EntityDescriptor, kind, message string) {
	if err := session.AddFlash(r.Context(), kind, message); err != nil {
		h.logger.Debug("flash dropped", zap.Error(err))
	}

	target, err := h.urls.URL(router.RouteName(e.Name, router.OpList))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
