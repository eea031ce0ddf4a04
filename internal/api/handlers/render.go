package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/yarin-claude-code/stocks/internal/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages rendered inside the layout; fragments are served bare
var (
	layoutPages   = []string{"login", "dashboard", "custom_domains"}
	fragmentPages = []string{"history"}
)

var templateFuncs = template.FuncMap{
	"pct":  func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"f1":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
	"sub":  func(a, b int) int { return a - b },
	"join": strings.Join,
}

// Renderer executes the embedded HTML templates
// ⭐ SSOT: HTML is produced only through this type
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded template
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}

	for _, name := range layoutPages {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}

	for _, name := range fragmentPages {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}

	return r, nil
}

// Page renders a full page
func (r *Renderer) Page(w http.ResponseWriter, status int, page string, data interface{}) {
	r.execute(w, status, page, "layout", data)
}

// Fragment renders one named block of a page, for in-place updates
func (r *Renderer) Fragment(w http.ResponseWriter, status int, page, block string, data interface{}) {
	r.execute(w, status, page, block, data)
}

func (r *Renderer) execute(w http.ResponseWriter, status int, page, block string, data interface{}) {
	t, ok := r.pages[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// basePage is the data every layout page needs
type basePage struct {
	Title      string
	Header     string
	SignedIn   bool
	UserName   string
	MarketOpen bool
}

func newBasePage(title string, user *auth.Session, marketOpen bool) basePage {
	return basePage{
		Title:      title,
		SignedIn:   user != nil,
		UserName:   user.DisplayName(),
		MarketOpen: marketOpen,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// seeOther redirects a form post back to a page
func seeOther(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
