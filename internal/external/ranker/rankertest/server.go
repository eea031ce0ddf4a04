// Package rankertest provides an in-memory ranking API for tests.
package rankertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yarin-claude-code/stocks/internal/contracts"
)

// Server is a fake ranking API keeping per-token state in memory. All
// setters are safe while requests are in flight.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	snapshot    *contracts.RankingsSnapshot
	history     map[string][]contracts.HistoryPoint
	prefs       map[string][]string // by bearer token
	custom      map[string][]contracts.CustomDomain
	nextID      int
	fail        map[string]int    // route key -> forced status
	failBody    map[string]string // route key -> forced body
	calls       map[string]int
	prefWrites  chan []string
	lastHistory string
}

// NewServer starts a fake API serving snap
func NewServer(snap *contracts.RankingsSnapshot) *Server {
	s := &Server{
		snapshot:   snap,
		history:    make(map[string][]contracts.HistoryPoint),
		prefs:      make(map[string][]string),
		custom:     make(map[string][]contracts.CustomDomain),
		nextID:     1,
		fail:       make(map[string]int),
		failBody:   make(map[string]string),
		calls:      make(map[string]int),
		prefWrites: make(chan []string, 64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/rankings", s.handle("rankings", s.rankings))
	mux.HandleFunc("GET /api/rankings/{domain}", s.handle("domain_rankings", s.domainRankings))
	mux.HandleFunc("GET /api/domains", s.handle("domains", s.domains))
	mux.HandleFunc("GET /api/history/{ticker}", s.handle("history", s.historyHandler))
	mux.HandleFunc("GET /api/health", s.handle("health", s.health))
	mux.HandleFunc("GET /api/preferences", s.handle("get_preferences", s.authed(s.getPrefs)))
	mux.HandleFunc("PUT /api/preferences", s.handle("put_preferences", s.authed(s.putPrefs)))
	mux.HandleFunc("GET /api/domains/custom", s.handle("list_custom", s.authed(s.listCustom)))
	mux.HandleFunc("POST /api/domains/custom", s.handle("create_custom", s.authed(s.createCustom)))
	mux.HandleFunc("PUT /api/domains/custom/{id}", s.handle("update_custom", s.authed(s.updateCustom)))
	mux.HandleFunc("DELETE /api/domains/custom/{id}", s.handle("delete_custom", s.authed(s.deleteCustom)))

	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL returns the URL including the /api prefix
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// SetSnapshot replaces the served rankings
func (s *Server) SetSnapshot(snap *contracts.RankingsSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

// SetHistory sets the history served for ticker
func (s *Server) SetHistory(ticker string, points []contracts.HistoryPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[strings.ToUpper(ticker)] = points
}

// SetPreferences seeds the saved domains for token
func (s *Server) SetPreferences(token string, domains []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[token] = domains
}

// Preferences returns the saved domains for token
func (s *Server) Preferences(token string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.prefs[token]
	return d, ok
}

// SeedCustomDomain adds a custom domain owned by token
func (s *Server) SeedCustomDomain(token, name string, tickers ...string) contracts.CustomDomain {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := contracts.CustomDomain{ID: s.nextID, Name: name, Tickers: tickers}
	s.nextID++
	s.custom[token] = append(s.custom[token], d)
	return d
}

// Fail forces route to answer status with body until cleared with status 0.
// Route keys: rankings, domain_rankings, domains, history, health,
// get_preferences, put_preferences, list_custom, create_custom,
// update_custom, delete_custom.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, route)
		delete(s.failBody, route)
		return
	}
	s.fail[route] = status
	s.failBody[route] = body
}

// Calls returns how many requests route received
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns the number of requests received on any route
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// NextPreferenceWrite waits for the next PUT /preferences body
func (s *Server) NextPreferenceWrite(timeout time.Duration) ([]string, bool) {
	select {
	case d := <-s.prefWrites:
		return d, true
	case <-time.After(timeout):
		return nil, false
	}
}

// LastHistoryQuery returns the raw query of the last history request
func (s *Server) LastHistoryQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHistory
}

func (s *Server) handle(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		status, forced := s.fail[route]
		body := s.failBody[route]
		s.mu.Unlock()

		if forced {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
			return
		}
		next(w, r)
	}
}

type authedHandler func(w http.ResponseWriter, r *http.Request, token string)

func (s *Server) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		next(w, r, token)
	}
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	if snap == nil {
		snap = &contracts.RankingsSnapshot{Domains: []contracts.DomainRanking{}}
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) domainRankings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	if stocks := snap.Stocks(r.PathValue("domain")); stocks != nil {
		writeJSON(w, http.StatusOK, stocks)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Domain not found or no data"})
}

func (s *Server) domains(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	names := snap.DomainNames()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, contracts.DomainList{Domains: names})
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lastHistory = r.URL.RawQuery
	points := s.history[strings.ToUpper(r.PathValue("ticker"))]
	s.mu.Unlock()
	if points == nil {
		points = []contracts.HistoryPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.snapshot
	s.mu.Unlock()
	h := contracts.Health{Status: "ok", Timestamp: time.Now().UTC()}
	if snap != nil && snap.LastFetched != nil {
		h.LastFetched = snap.LastFetched
		h.DataAvailable = true
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) getPrefs(w http.ResponseWriter, r *http.Request, token string) {
	s.mu.Lock()
	d := s.prefs[token]
	s.mu.Unlock()
	if d == nil {
		d = []string{}
	}
	writeJSON(w, http.StatusOK, contracts.Preferences{Domains: d})
}

func (s *Server) putPrefs(w http.ResponseWriter, r *http.Request, token string) {
	var body contracts.Preferences
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	s.mu.Lock()
	s.prefs[token] = body.Domains
	s.mu.Unlock()

	select {
	case s.prefWrites <- body.Domains:
	default:
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) listCustom(w http.ResponseWriter, r *http.Request, token string) {
	s.mu.Lock()
	list := append([]contracts.CustomDomain{}, s.custom[token]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createCustom(w http.ResponseWriter, r *http.Request, token string) {
	var body struct {
		Name    string   `json:"name"`
		Tickers []string `json:"tickers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}
	d := s.SeedCustomDomain(token, body.Name, body.Tickers...)
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateCustom(w http.ResponseWriter, r *http.Request, token string) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	var body struct {
		Tickers []string `json:"tickers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.custom[token] {
		if d.ID == id {
			s.custom[token][i].Tickers = body.Tickers
			writeJSON(w, http.StatusOK, s.custom[token][i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Domain not found"})
}

func (s *Server) deleteCustom(w http.ResponseWriter, r *http.Request, token string) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.custom[token]
	for i, d := range list {
		if d.ID == id {
			s.custom[token] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Domain not found"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
