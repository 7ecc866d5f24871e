// Package views renders the front-end's HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"webshop/internal/models"
	"webshop/internal/web/session"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var files embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives; Data holds the page specific part.
type Page struct {
	Title     string
	User      *session.CurrentUser
	Flash     string
	Error     string
	CartCount int
	Data      interface{}
}

type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

var funcs = template.FuncMap{
	"money": func(amount float64) string {
		return fmt.Sprintf("€ %.2f", amount)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02 Jan 2006 15:04")
	},
	"add": func(a, b int) int { return a + b },
	"hasRole": func(roles []string, role string) bool {
		return slices.Contains(roles, role)
	},
	"statuses": func() []models.OrderStatus {
		return []models.OrderStatus{models.OrderPending, models.OrderPaid, models.OrderShipped, models.OrderDelivered, models.OrderCancelled}
	},
	"canCancel": func(status models.OrderStatus) bool {
		return status == models.OrderPending
	},
	"nextStatuses": func(status models.OrderStatus) []models.OrderStatus {
		var next []models.OrderStatus
		for _, s := range []models.OrderStatus{models.OrderPaid, models.OrderShipped, models.OrderDelivered, models.OrderCancelled} {
			if status.CanTransitionTo(s) {
				next = append(next, s)
			}
		}
		return next
	},
}

// New parses every page together with the shared layout.
func New(logger zerolog.Logger) (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(files, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		pages[strings.TrimSuffix(path.Base(name), ".html")] = tmpl
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data *Page) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error().Str("page", page).Msg("Unknown template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error().Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
