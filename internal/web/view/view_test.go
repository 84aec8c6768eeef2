package view

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careboard/careboard/internal/models"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/resource"
	"github.com/careboard/careboard/internal/web/router"
	"github.com/careboard/careboard/internal/web/session"
)

func newRenderer(t *testing.T) (*Renderer, *schema.Registry) {
	t.Helper()
	registry := models.NewRegistry()
	r := router.NewRouter()

	noop := func(w http.ResponseWriter, req *http.Request) {}
	_, err := r.Named(r.Get("/", noop), "dashboard")
	require.NoError(t, err)
	for _, e := range registry.All() {
		require.NoError(t, r.RegisterEntity(e, router.EntityHandlers{
			List: noop, New: noop, Create: noop, Edit: noop, Update: noop, Delete: noop,
		}))
	}

	renderer, err := New(r, registry.All())
	require.NoError(t, err)
	return renderer, registry
}

func entity(t *testing.T, registry *schema.Registry, name string) *schema.EntityDescriptor {
	t.Helper()
	e, err := registry.Get(name)
	require.NoError(t, err)
	return e
}

func TestRender_Dashboard(t *testing.T) {
	renderer, registry := newRenderer(t)

	rec := httptest.NewRecorder()
	err := renderer.Render(rec, http.StatusOK, PageDashboard, &Page{
		Title:   "Dashboard",
		Flashes: []session.Flash{{Kind: session.FlashInfo, Message: "Jobs record deleted."}},
		Counts: []resource.EntityCount{
			{Entity: entity(t, registry, "users"), Count: 10},
		},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `<title>Dashboard | Careboard</title>`)
	assert.Contains(t, body, `<a href="/job_applications">Job Applications</a>`)
	assert.Contains(t, body, `<div class="flash flash-info">Jobs record deleted.</div>`)
	assert.Contains(t, body, `<span class="count">10</span>`)
}

func TestRender_List(t *testing.T) {
	renderer, registry := newRenderer(t)
	e := entity(t, registry, "job_applications")

	rec := httptest.NewRecorder()
	err := renderer.Render(rec, http.StatusOK, PageList, &Page{
		Title: e.Title,
		Listing: &resource.Listing{
			Entity:  e,
			Columns: e.ListColumns,
			Rows: []resource.Row{{
				Key:   crud.Key{{Field: "caregiver_user_id", Value: 3}, {Field: "job_id", Value: 1}},
				Cells: []string{"3", "1", "2025-09-05"},
			}},
		},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, `<th>Applied</th>`)
	assert.Contains(t, body, `<td>2025-09-05</td>`)
	assert.Contains(t, body, `href="/job_applications/edit/3/1"`)
	assert.Contains(t, body, `action="/job_applications/delete/3/1"`)
	assert.Contains(t, body, `href="/job_applications/create"`)
}

func TestRender_EmptyList(t *testing.T) {
	renderer, registry := newRenderer(t)
	e := entity(t, registry, "members")

	rec := httptest.NewRecorder()
	require.NoError(t, renderer.Render(rec, http.StatusOK, PageList, &Page{
		Title:   e.Title,
		Listing: &resource.Listing{Entity: e, Columns: e.ListColumns},
	}))
	assert.Contains(t, rec.Body.String(), "No records yet.")
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`colspan="%d"`, len(e.ListColumns)+1))
}

func TestRender_EditForm(t *testing.T) {
	renderer, registry := newRenderer(t)
	e := entity(t, registry, "caregivers")

	form := resource.SubmittedForm(e, crud.Key{{Field: "caregiver_user_id", Value: 3}}, resource.Input{
		"gender":      `<script>alert(1)</script>`,
		"hourly_rate": "abc",
	})

	rec := httptest.NewRecorder()
	require.NoError(t, renderer.Render(rec, http.StatusUnprocessableEntity, PageForm, &Page{
		Title: e.Title,
		Form:  form,
		Error: `hourly_rate: invalid decimal value "abc"`,
	}))

	body := rec.Body.String()
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body, `<h1>Edit Caregivers</h1>`)
	assert.Contains(t, body, `action="/caregivers/edit/3"`)
	assert.Contains(t, body, `name="caregiver_user_id" type="number" value="3" required readonly>`)
	assert.Contains(t, body, `name="hourly_rate" type="number" value="abc" step="0.01">`)
	assert.Contains(t, body, `invalid decimal value &#34;abc&#34;`)
	assert.NotContains(t, body, `<script>alert(1)</script>`)
}

func TestRender_NewForm(t *testing.T) {
	renderer, registry := newRenderer(t)
	e := entity(t, registry, "users")

	form := resource.SubmittedForm(e, nil, resource.Input{})
	rec := httptest.NewRecorder()
	require.NoError(t, renderer.Render(rec, http.StatusOK, PageForm, &Page{Title: e.Title, Form: form}))

	body := rec.Body.String()
	assert.Contains(t, body, `<h1>New Users</h1>`)
	assert.Contains(t, body, `action="/users/create"`)
	assert.Contains(t, body, `name="email" type="email" value="" required>`)
	assert.Contains(t, body, `<textarea id="profile_description" name="profile_description"></textarea>`)
}

func TestRender_Error(t *testing.T) {
	renderer, _ := newRenderer(t)

	rec := httptest.NewRecorder()
	require.NoError(t, renderer.Render(rec, http.StatusNotFound, PageError, &Page{
		Title:  "Not Found",
		Status: http.StatusNotFound,
	}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Not Found</h1>")
}

func TestRender_UnknownPage(t *testing.T) {
	renderer, _ := newRenderer(t)
	rec := httptest.NewRecorder()
	assert.Error(t, renderer.Render(rec, http.StatusOK, "missing", &Page{}))
	assert.Empty(t, rec.Body.String())
}

func TestRender_BadURLParameter(t *testing.T) {
	renderer, registry := newRenderer(t)
	e := entity(t, registry, "jobs")

	rec := httptest.NewRecorder()
	err := renderer.Render(rec, http.StatusOK, PageList, &Page{
		Title: e.Title,
		Listing: &resource.Listing{
			Entity:  e,
			Columns: e.ListColumns,
			Rows:    []resource.Row{{Key: nil, Cells: []string{"1", "1", "x", "2025-10-01"}}},
		},
	})
	assert.Error(t, err)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, http.StatusOK, rec.Code)
}
