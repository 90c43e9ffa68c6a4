// Package render provides HTML template rendering for the reader site and
// the admin interface. Each side has its own base layout; page templates
// are parsed against their layout from an embedded filesystem.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthline/internal/flash"
	"healthline/internal/middleware"
	"healthline/internal/session"
)

//go:embed templates/site/*.html templates/admin/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static serves the embedded static assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// PageData holds all data passed to templates.
type PageData struct {
	Title     string          // Page title for the <title> tag
	Section   string          // Active nav section (e.g. "home", "articles")
	Session   *session.Data   // Current user session (nil if anonymous)
	CSRFToken string          // CSRF token for forms and fetch headers
	Flashes   []flash.Message // One-time notification messages
	Data      map[string]any  // Page-specific data
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
}

// standaloneTemplates render as full HTML pages without a base layout.
var standaloneTemplates = map[string]bool{
	"admin/login":      true,
	"admin/2fa_setup":  true,
	"admin/2fa_verify": true,
}

// New creates a Renderer by parsing the site and admin template sets from
// the embedded filesystem.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	for _, set := range []string{"site", "admin"} {
		entries, err := templateFS.ReadDir("templates/" + set)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" {
				continue
			}

			tmplName := set + "/" + strings.TrimSuffix(name, ".html")

			var tmpl *template.Template
			var parseErr error
			if standaloneTemplates[tmplName] {
				tmpl, parseErr = template.New(name).Funcs(funcMap).ParseFS(
					templateFS, "templates/"+set+"/"+name,
				)
			} else {
				tmpl, parseErr = template.New("base.html").Funcs(funcMap).ParseFS(
					templateFS, "templates/"+set+"/base.html", "templates/"+set+"/"+name,
				)
			}
			if parseErr != nil {
				return nil, fmt.Errorf("parse template %s: %w", tmplName, parseErr)
			}

			r.templates[tmplName] = tmpl
		}
	}

	return r, nil
}

var funcMap = template.FuncMap{
	// deref safely dereferences a string pointer for use in templates.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// safeHTML marks pre-rendered markdown output as safe to embed.
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
	"fmtDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"add": func(a, b int) int {
		return a + b
	},
	// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
	"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
		return ptr != nil && *ptr == val
	},
}

// Page renders a named template ("site/home", "admin/dashboard", ...).
// Session, CSRF token, and queued flash messages are filled in from the
// request when the caller left them empty.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	if data == nil {
		data = &PageData{}
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.GetCSRFToken(r)
	}
	if data.Flashes == nil {
		data.Flashes = flash.Pop(w, r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name[strings.IndexByte(name, '/')+1:] + ".html"
	}

	if err := tmpl.ExecuteTemplate(w, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
