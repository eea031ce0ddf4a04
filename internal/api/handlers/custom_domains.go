package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/customdomains"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

// EditorFactory builds the custom domain editor of a view session
type EditorFactory func(sessionID string) *customdomains.Editor

const editorKey = "custom_domains"

// CustomDomainHandler serves the custom domain page. Every mutation
// redirects back to the page, which shows the outcome inline.
type CustomDomainHandler struct {
	newEditor EditorFactory
	clock     MarketClock
	render    *Renderer
	logger    *logger.Logger
}

// NewCustomDomainHandler creates a new custom domain handler
func NewCustomDomainHandler(newEditor EditorFactory, clock MarketClock, render *Renderer, log *logger.Logger) *CustomDomainHandler {
	return &CustomDomainHandler{
		newEditor: newEditor,
		clock:     clock,
		render:    render,
		logger:    log,
	}
}

type customDomainsPage struct {
	basePage
	State customdomains.State
}

// Page renders the custom domain list with its forms
// GET /domains/custom
func (h *CustomDomainHandler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.render.Page(w, http.StatusOK, "custom_domains", customDomainsPage{
		basePage: newBasePage("Custom domains", auth.FromContext(ctx), h.clock.IsOpen()),
		State:    h.editor(r).State(ctx),
	})
}

// Create submits the create form
// POST /domains/custom
func (h *CustomDomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.editor(r).Create(r.Context(), r.PostFormValue("name"), r.PostFormValue("tickers")); err != nil {
		h.logger.WithError(err).Debug("Custom domain create rejected")
	}
	seeOther(w, r, "/domains/custom")
}

// StartEdit opens inline editing
// POST /domains/custom/{id}/edit
func (h *CustomDomainHandler) StartEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(w, r)
	if !ok {
		return
	}

	ed := h.editor(r)
	d, found := ed.Find(r.Context(), id)
	if !found {
		respondError(w, http.StatusNotFound, "Domain not found")
		return
	}

	ed.StartEdit(d)
	seeOther(w, r, "/domains/custom")
}

// CancelEdit closes inline editing
// POST /domains/custom/{id}/cancel
func (h *CustomDomainHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	h.editor(r).CancelEdit()
	seeOther(w, r, "/domains/custom")
}

// Save replaces a domain's tickers
// POST /domains/custom/{id}
func (h *CustomDomainHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(w, r)
	if !ok {
		return
	}

	if err := h.editor(r).Save(r.Context(), id, r.PostFormValue("tickers")); err != nil {
		h.logger.WithError(err).WithField("id", id).Debug("Custom domain update rejected")
	}
	seeOther(w, r, "/domains/custom")
}

// Delete removes a domain
// POST /domains/custom/{id}/delete
func (h *CustomDomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := domainID(w, r)
	if !ok {
		return
	}

	_ = h.editor(r).Delete(r.Context(), id)
	seeOther(w, r, "/domains/custom")
}

func (h *CustomDomainHandler) editor(r *http.Request) *customdomains.Editor {
	s := viewstate.FromContext(r.Context())
	return s.Extra(editorKey, func() interface{} {
		return h.newEditor(s.ID)
	}).(*customdomains.Editor)
}

func domainID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid domain id")
		return 0, false
	}
	return id, true
}
