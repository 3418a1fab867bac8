// Package templates holds the page templates. Every page is parsed
// together with base.html and partials.html.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
)

const (
	baseTemplate     = "base.html"
	partialsTemplate = "partials.html"
	dir              = "html"
)

//go:embed html/*.html
var files embed.FS

func Load() (map[string]*template.Template, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template)
	for _, e := range entries {
		name := e.Name()
		if path.Ext(name) != ".html" || name == baseTemplate || name == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcs).ParseFS(files,
			path.Join(dir, baseTemplate),
			path.Join(dir, partialsTemplate),
			path.Join(dir, name),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return templates, nil
}

func MustLoad() map[string]*template.Template {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

var funcs = template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"dict":  dict,
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", values[i])
		}
		m[key] = values[i+1]
	}
	return m, nil
}
