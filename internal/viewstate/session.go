package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
)

// PreferenceStore reads and writes the user's saved domains.
// *ranker.Client satisfies it.
type PreferenceStore interface {
	GetPreferences(ctx context.Context) ([]string, error)
	PutPreferences(ctx context.Context, domains []string) error
}

// View is the resolved state of one dashboard render
type View struct {
	Loaded       bool                     `json:"loaded"`
	Domains      []string                 `json:"domains"`
	ActiveDomain string                   `json:"active_domain"`
	Stocks       []contracts.StockRanking `json:"stocks"`
	BestOverall  *contracts.StockRanking  `json:"best_overall"`
	Selected     *contracts.StockRanking  `json:"selected"`
	LastFetched  *time.Time               `json:"last_fetched,omitempty"`
}

// Session is the transient view-state of one browser session. Nothing in
// it is persisted except through the preference writes it issues.
type Session struct {
	ID string

	user         *auth.Session
	store        PreferenceStore
	logger       *logger.Logger
	metrics      *metrics.Recorder
	writeTimeout time.Duration
	now          func() time.Time
	writes       *sync.WaitGroup

	mu          sync.Mutex
	prefsLoaded bool
	prefs       []string // nil: no preferences, distinct from empty
	autoSaved   bool
	explicit    string
	selected    *contracts.StockRanking
	visible     bool
	lastSeen    time.Time

	extras sync.Map
}

// User returns the signed-in user this view session belongs to, or nil
func (s *Session) User() *auth.Session {
	return s.user
}

// EnsurePreferences loads the saved domains once per session. Anonymous
// sessions have no preferences. A failed read counts as an empty list.
func (s *Session) EnsurePreferences(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefsLoaded {
		return
	}

	if s.user == nil {
		s.prefs = nil
		s.prefsLoaded = true
		return
	}

	prefs, err := s.store.GetPreferences(auth.WithSession(ctx, s.user))
	if err != nil {
		s.logger.WithError(err).Warn("Preferences read failed, treating as empty")
		s.metrics.RecordError("preference_read")
		prefs = []string{}
	}
	if prefs == nil {
		prefs = []string{}
	}

	s.prefs = prefs
	s.prefsLoaded = true
}

// Preferences returns the local copy of the saved domains (nil when there
// are none) and whether they have been loaded
func (s *Session) Preferences() ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prefs...), s.prefsLoaded
}

// Resolve computes the view for snap. A nil snap is the loading state.
// The first resolve that finds loaded, empty preferences and a domain to
// show saves that domain as the preference, once per session.
func (s *Session) Resolve(snap *contracts.RankingsSnapshot) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = s.now()

	v := View{Selected: copyStock(s.selected)}
	if snap == nil {
		return v
	}

	v.Loaded = true
	v.Domains = snap.DomainNames()
	v.ActiveDomain = ResolveActiveDomain(s.explicit, s.prefs, v.Domains)
	v.Stocks = snap.Stocks(v.ActiveDomain)
	v.BestOverall = copyStock(snap.BestOverall)
	v.LastFetched = snap.LastFetched

	if s.prefsLoaded && s.prefs != nil && len(s.prefs) == 0 && v.ActiveDomain != "" && !s.autoSaved {
		s.autoSaved = true
		s.prefs = []string{v.ActiveDomain}
		s.writePreferences(s.prefs)
	}

	return v
}

// SelectDomain records an explicit domain choice and saves it as the
// preference. The local copy changes immediately whatever the outcome of
// the write.
func (s *Session) SelectDomain(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = s.now()
	s.explicit = name
	s.prefs = []string{name}
	s.writePreferences(s.prefs)
}

// SelectStock opens the detail overlay for a copy of stock. Changing the
// domain afterwards leaves the overlay open.
func (s *Session) SelectStock(stock contracts.StockRanking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
	s.selected = &stock
}

// CloseStock closes the detail overlay
func (s *Session) CloseStock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
	s.selected = nil
}

// SetVisible records whether the page is in the foreground. Polling only
// runs while some session is visible.
func (s *Session) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
	s.visible = visible
}

// Visible reports the last visibility the page reported
func (s *Session) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Touch marks the session as active
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
}

// LastSeen returns the time of the last interaction
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Extra returns a per-session value stored under key, creating it with
// create on first use
func (s *Session) Extra(key string, create func() interface{}) interface{} {
	if v, ok := s.extras.Load(key); ok {
		return v
	}
	v, _ := s.extras.LoadOrStore(key, create())
	return v
}

// writePreferences issues a fire-and-forget write; s.mu must be held.
// Failures are logged and counted, never retried or surfaced.
func (s *Session) writePreferences(domains []string) {
	if s.user == nil {
		return
	}

	body := append([]string(nil), domains...)
	user := s.user
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()

		ctx, cancel := context.WithTimeout(auth.WithSession(context.Background(), user), s.writeTimeout)
		defer cancel()

		if err := s.store.PutPreferences(ctx, body); err != nil {
			s.logger.WithError(err).WithField("domains", body).Warn("Preference write failed")
			s.metrics.RecordError("preference_write")
		}
	}()
}

func copyStock(st *contracts.StockRanking) *contracts.StockRanking {
	if st == nil {
		return nil
	}
	c := *st
	return &c
}
