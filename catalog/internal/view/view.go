// Package view renders the catalog's HTML pages.
package view

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Astemirdum/local-library/catalog/internal/form"
	"github.com/Astemirdum/local-library/catalog/internal/model"
)

//go:embed templates/*.html
var templates embed.FS

const layout = "layout.html"

// Page is the data every template receives; Data is page specific.
type Page struct {
	Title  string
	Data   interface{}
	Errors []form.FieldError
}

// ErrorData is the Data of the "error" page.
type ErrorData struct {
	Status  int
	Message string
	Detail  string
}

var funcs = template.FuncMap{
	"statuses": model.Statuses,
	"statusClass": func(s model.Status) string {
		switch s {
		case model.StatusAvailable:
			return "text-success"
		case model.StatusMaintenance:
			return "text-danger"
		default:
			return "text-warning"
		}
	},
}

// Renderer implements echo.Renderer. Each page is parsed together with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New(layout).Funcs(funcs).ParseFS(templates, "templates/"+layout)
	if err != nil {
		return nil, errors.Wrap(err, "parse layout")
	}
	files, err := fs.Glob(templates, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "glob templates")
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := path.Base(file)
		if name == layout {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, errors.Wrapf(err, "clone layout for %s", name)
		}
		if t, err = t.ParseFS(templates, file); err != nil {
			return nil, errors.Wrapf(err, "parse %s", name)
		}
		r.pages[strings.TrimSuffix(name, ".html")] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return errors.Errorf("view %q not found", name)
	}
	return t.ExecuteTemplate(w, layout, data)
}
