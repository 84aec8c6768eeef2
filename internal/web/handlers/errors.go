package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/careboard/careboard/internal/resource"
	"github.com/careboard/careboard/internal/web/session"
	"github.com/careboard/careboard/internal/web/view"
)

// statusOf maps an engine error onto an HTTP status
func statusOf(err error) int {
	switch {
	case errors.Is(err, resource.ErrUnknownEntity), errors.Is(err, resource.ErrNotFound):
		return http.StatusNotFound
	case resource.IsClientError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail renders the error page for err. Domain errors are logged at info,
// anything else at error.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request rejected", fields...)
	}
	h.renderError(w, r, status)
}

// reject shows form again with the submitted values and the error message
// when err is a client error.
func (h *Handlers) reject(w http.ResponseWriter, r *http.Request, form *resource.Form, err error) {
	if !resource.IsClientError(err) {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("submission rejected",
		zap.String("entity", form.Entity.Name),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	title := "New " + form.Entity.Title
	if form.IsEdit() {
		title = "Edit " + form.Entity.Title
	}
	h.render(w, r, http.StatusUnprocessableEntity, view.PageForm, &view.Page{
		Title: title,
		Form:  form,
		Error: err.Error(),
	})
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int) {
	h.render(w, r, status, view.PageError, &view.Page{
		Title:  http.StatusText(status),
		Status: status,
	})
}

// render writes page and falls back to a plain-text 500 when the template
// fails. Pending flash messages are shown on every rendered page.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data *view.Page) {
	data.Flashes = session.TakeFlashes(r.Context())
	if err := h.views.Render(w, status, page, data); err != nil {
		h.logger.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
