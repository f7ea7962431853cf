package echoapi

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/fdpfeedback/assets"
	"github.com/trezcool/fdpfeedback/core"
)

// Page templates
const (
	formPage      = "form"
	dashboardPage = "dashboard"
)

// templateRenderer renders the web pages embedded in assets.FS. Each page is parsed with the base layout.
type templateRenderer struct {
	templates map[string]*template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer(conf *core.Config) (*templateRenderer, error) {
	dir := assets.WebTemplatesDir
	base := path.Join(dir, "_base.gohtml")

	fps, err := fs.Glob(assets.FS, path.Join(dir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "listing web templates")
	}

	r := &templateRenderer{templates: make(map[string]*template.Template, len(fps))}
	for _, fp := range fps {
		fname := path.Base(fp)
		if strings.HasPrefix(fname, "_") {
			continue
		}
		tmpl, err := template.ParseFS(assets.FS, base, fp)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", fname)
		}
		if conf.Debug || conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		r.templates[strings.TrimSuffix(fname, path.Ext(fname))] = tmpl
	}
	return r, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}
