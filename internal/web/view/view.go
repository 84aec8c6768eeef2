// Package view renders the HTML pages of the application from templates
// embedded in the binary.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/careboard/careboard/internal/codec"
	"github.com/careboard/careboard/internal/orm/crud"
	"github.com/careboard/careboard/internal/orm/schema"
	"github.com/careboard/careboard/internal/resource"
	"github.com/careboard/careboard/internal/web/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageDashboard = "dashboard"
	PageList      = "list"
	PageForm      = "form"
	PageError     = "error"
)

var pages = []string{PageDashboard, PageList, PageForm, PageError}

// URLBuilder builds the path of a named route
type URLBuilder interface {
	URL(name string, params ...string) (string, error)
}

// Page is the data passed to every template. Only the fields of the page
// being rendered are set.
type Page struct {
	Title   string
	Nav     []*schema.EntityDescriptor
	Flashes []session.Flash

	// Error is shown above a re-rendered form
	Error string

	Counts  []resource.EntityCount
	Listing *resource.Listing
	Form    *resource.Form
	Status  int
}

// Renderer executes the page templates
type Renderer struct {
	templates map[string]*template.Template
	nav       []*schema.EntityDescriptor
}

// New parses every page template. nav lists the entities shown in the
// navigation bar.
func New(urls URLBuilder, nav []*schema.EntityDescriptor) (*Renderer, error) {
	funcs := template.FuncMap{
		"url":      urlFunc(urls),
		"textarea": func(t schema.InputType) bool { return t == schema.InputTextarea },
		"inc":      func(n int) int { return n + 1 },
		"step": func(p codec.Parser) string {
			if p == codec.ParserDecimal {
				return "0.01"
			}
			return ""
		},
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages)), nav: nav}
	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// Render writes page with the given status. The page is executed into a
// buffer first so a template failure never sends a partial response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *Page) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data.Nav == nil {
		data.Nav = r.nav
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// urlFunc is the "url" template function. Arguments after the route name
// may be strings, integers or record keys, and are flattened into the
// route's parameters.
func urlFunc(urls URLBuilder) func(name string, args ...any) (string, error) {
	return func(name string, args ...any) (string, error) {
		var params []string
		for _, arg := range args {
			switch v := arg.(type) {
			case string:
				params = append(params, v)
			case int64:
				params = append(params, fmt.Sprint(v))
			case int:
				params = append(params, fmt.Sprint(v))
			case crud.Key:
				params = append(params, v.Segments()...)
			default:
				return "", fmt.Errorf("url %s: unsupported parameter %T", name, arg)
			}
		}
		return urls.URL(name, params...)
	}
}
