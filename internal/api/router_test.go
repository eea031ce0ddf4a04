package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarin-claude-code/stocks/internal/api"
	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/internal/external/ranker/rankertest"
	"github.com/yarin-claude-code/stocks/internal/feed"
	"github.com/yarin-claude-code/stocks/internal/scheduler"
	"github.com/yarin-claude-code/stocks/internal/scheduler/jobs"
	"github.com/yarin-claude-code/stocks/internal/viewstate"
	"github.com/yarin-claude-code/stocks/pkg/config"
	"github.com/yarin-claude-code/stocks/pkg/httputil"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
	"github.com/yarin-claude-code/stocks/pkg/redis"
)

type openClock bool

func (c openClock) IsOpen() bool { return bool(c) }

type env struct {
	t        *testing.T
	upstream *rankertest.Server
	srv      *httptest.Server
	http     *http.Client
	sessions *viewstate.Manager
	token    string
}

func newEnv(t *testing.T, snap *contracts.RankingsSnapshot) *env {
	t.Helper()

	upstream := rankertest.NewServer(snap)
	cfg := &config.Config{
		Dashboard: config.DashboardConfig{
			PollInterval:           5 * time.Minute,
			HistoryDays:            30,
			SessionTTL:             time.Minute,
			PreferenceWriteTimeout: time.Second,
			WriteLimit:             30,
		},
		MetricsEnabled: true,
	}

	log := logger.Nop()
	rec := metrics.New()
	hc := httputil.New(cfg, log).DisableRetry().WithObserver(rec)
	client := ranker.NewClient(hc, upstream.BaseURL(), auth.Context{}, log)

	rc, err := redis.New(cfg)
	require.NoError(t, err)
	cache := redis.NewCache(rc, "test")

	sessions := viewstate.NewManager(client, viewstate.Options{
		TTL:          cfg.Dashboard.SessionTTL,
		WriteTimeout: cfg.Dashboard.PreferenceWriteTimeout,
	}, log, rec)

	rankings := feed.New(client, cache, log, rec)
	sched := scheduler.New(log)
	require.NoError(t, sched.AddJob(jobs.NewFeedRefreshJob(rankings, sessions, cfg.Dashboard.PollInterval, log, rec)))

	handler, err := api.NewHandler(api.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  rec,
		Client:   client,
		Feed:     rankings,
		Sessions: sessions,
		Cache:    cache,
		Limiter:  redis.NewRateLimiter(rc, "test"),
		Clock:    openClock(true),
		Jobs:     sched,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	e := &env{
		t:        t,
		upstream: upstream,
		srv:      srv,
		http:     &http.Client{Jar: jar},
		sessions: sessions,
		token: signToken(t, jwt.MapClaims{
			"sub":           "user-1",
			"email":         "joe@example.com",
			"user_metadata": map[string]interface{}{"display_name": "Trader Joe"},
		}),
	}

	t.Cleanup(func() {
		sessions.Wait()
		srv.Close()
		upstream.Close()
	})
	return e
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func (e *env) do(method, path string, form url.Values) (*http.Response, *goquery.Document) {
	e.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(e.t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := e.http.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	require.NoError(e.t, err)
	return resp, doc
}

func (e *env) get(path string) (*http.Response, *goquery.Document) {
	return e.do(http.MethodGet, path, nil)
}

func (e *env) post(path string, form url.Values) (*http.Response, *goquery.Document) {
	return e.do(http.MethodPost, path, form)
}

func (e *env) login() *goquery.Document {
	e.t.Helper()
	resp, doc := e.post("/login", url.Values{"token": {e.token}})
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	require.Equal(e.t, "/dashboard", resp.Request.URL.Path)
	e.sessions.Wait()
	return doc
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func TestRootRedirects(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	noFollow := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := noFollow.Get(e.srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestPagesRequireLogin(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))

	for _, path := range []string{"/dashboard", "/domains/custom", "/history/AIX"} {
		resp, doc := e.get(path)
		assert.Equal(t, "/login", resp.Request.URL.Path, path)
		assert.Equal(t, 1, doc.Find("#login").Length(), path)
	}
	assert.Equal(t, 0, e.upstream.TotalCalls())
}

func TestLoginRejectsBadTokens(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))

	resp, doc := e.post("/login", url.Values{"token": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Access token is required", text(doc, "#login-error"))

	expired := signToken(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()})
	resp, doc = e.post("/login", url.Values{"token": {expired}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "Access token has expired", text(doc, "#login-error"))
}

func TestDashboardRendersRankings(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI", "Energy"))

	doc := e.login()

	assert.Equal(t, "Algorithm Chose: AIX To Invest", text(doc, "header.top h1"))
	assert.Equal(t, "Market Open", text(doc, "#market"))
	assert.Equal(t, "Trader Joe", text(doc, "#user"))
	assert.Equal(t, "AIX", text(doc, "#best-ticker"))
	assert.Equal(t, "5-day momentum +1.23%", text(doc, "#best-momentum"))
	assert.Equal(t, "AI", text(doc, "#domains button.active"))
	assert.Equal(t, 2, doc.Find("#domains button").Length())
	assert.Equal(t, 1, doc.Find("#cards .card").Length())
	assert.Equal(t, "90.0", text(doc, "#cards .card .score"))
	assert.Equal(t, 0, doc.Find("#loading").Length())

	// First view with no saved preference stores the resolved domain
	written, ok := e.upstream.NextPreferenceWrite(2 * time.Second)
	require.True(t, ok)
	assert.Equal(t, []string{"AI"}, written)
}

func TestDashboardLoadingStateWhenRankingsFail(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.upstream.Fail("rankings", http.StatusServiceUnavailable, `{"detail":"down"}`)

	doc := e.login()

	assert.Equal(t, 1, doc.Find("#loading").Length())
	assert.Equal(t, 0, doc.Find("#best-overall").Length())
	assert.Equal(t, "Smart Stock Ranker", text(doc, "header.top h1"))

	e.upstream.Fail("rankings", 0, "")
	_, doc = e.get("/dashboard")
	assert.Equal(t, "AIX", text(doc, "#best-ticker"))
}

func TestSavedPreferenceWinsOverSnapshotOrder(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI", "Energy"))
	e.upstream.SetPreferences(e.token, []string{"Energy"})

	doc := e.login()

	assert.Equal(t, "Energy", text(doc, "#domains button.active"))
	assert.Equal(t, "ENERX", text(doc, "#cards .card .ticker"))
}

func TestSelectDomainSavesPreference(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI", "Energy"))
	e.login()

	_, doc := e.post("/dashboard/domain", url.Values{"domain": {"Energy"}})
	assert.Equal(t, "Energy", text(doc, "#active-domain"))

	e.sessions.Wait()
	saved, ok := e.upstream.Preferences(e.token)
	require.True(t, ok)
	assert.Equal(t, []string{"Energy"}, saved)
}

func TestSelectDomainRejectsUnknownName(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI", "Energy"))
	e.login()

	resp, _ := e.post("/dashboard/domain", url.Values{"domain": {"Bogus"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	e.sessions.Wait()
	saved, ok := e.upstream.Preferences(e.token)
	require.True(t, ok)
	assert.Equal(t, []string{"AI"}, saved)

	_, doc := e.get("/dashboard")
	assert.Equal(t, "AI", text(doc, "#active-domain"))
}

func TestStockOverlaySurvivesDomainSwitch(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI", "Energy"))
	e.login()

	_, doc := e.post("/dashboard/stock", url.Values{"ticker": {"AIX"}})
	assert.Equal(t, "AIX", text(doc, "#overlay-ticker"))
	assert.Equal(t, "Strong Buy", text(doc, "#overlay-grade"))
	assert.Equal(t, 5, doc.Find("#overlay .factor").Length())
	assert.Equal(t, "0.012", text(doc, `[data-factor="momentum"] .value`))
	assert.Equal(t, "N/A", text(doc, `[data-factor="financial_ratio"] .value`))

	_, doc = e.post("/dashboard/domain", url.Values{"domain": {"Energy"}})
	assert.Equal(t, "Energy", text(doc, "#active-domain"))
	assert.Equal(t, "AIX", text(doc, "#overlay-ticker"))

	_, doc = e.post("/dashboard/stock/close", url.Values{})
	assert.Equal(t, 0, doc.Find("#overlay").Length())
}

func TestSelectUnknownStock(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()

	resp, _ := e.post("/dashboard/stock", url.Values{"ticker": {"NOPE"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardFragment(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()

	resp, doc := e.get("/dashboard/fragment")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "AIX", text(doc, "#best-ticker"))
	assert.Equal(t, 0, doc.Find("header.top").Length())
}

func TestHistoryFragment(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.upstream.SetHistory("AIX", []contracts.HistoryPoint{
		{SnapDate: "2025-03-01", CompositeScore: 70, Rank: 2, TrendSlope: 0.1},
		{SnapDate: "2025-03-02", CompositeScore: 82, Rank: 1, TrendSlope: 0.9},
	})
	e.login()

	_, doc := e.get("/history/aix")
	assert.Contains(t, text(doc, "#trend"), "Up")
	assert.Equal(t, "2025-03-01", text(doc, "#history-first"))
	assert.Equal(t, "2025-03-02", text(doc, "#history-last"))
	assert.NotEmpty(t, doc.Find("polyline").AttrOr("points", ""))
	assert.Equal(t, "days=30", e.upstream.LastHistoryQuery())

	_, doc = e.get("/history/NONE")
	assert.Equal(t, 1, doc.Find("#history-empty").Length())

	e.upstream.Fail("history", http.StatusInternalServerError, `{}`)
	_, doc = e.get("/history/AIX")
	assert.Equal(t, 1, doc.Find("#history-error").Length())
}

func TestCustomDomainFlow(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()

	_, doc := e.get("/domains/custom")
	assert.Equal(t, 1, doc.Find("#no-domains").Length())

	_, doc = e.post("/domains/custom", url.Values{"name": {"My Picks"}, "tickers": {"aapl, msft , googl"}})
	item := doc.Find(`#domain-list li[data-id="1"]`)
	require.Equal(t, 1, item.Length())
	assert.Equal(t, "My Picks", strings.TrimSpace(item.Find("strong").Text()))
	assert.Equal(t, "AAPL, MSFT, GOOGL", strings.TrimSpace(item.Find(".tickers").Text()))
	assert.Empty(t, doc.Find(`input[name="name"]`).AttrOr("value", ""))

	_, doc = e.post("/domains/custom/1/edit", url.Values{})
	assert.Equal(t, "AAPL, MSFT, GOOGL", strings.TrimSpace(doc.Find(`#domain-list li[data-id="1"] textarea`).Text()))

	_, doc = e.post("/domains/custom/1", url.Values{"tickers": {"nvda\ntsm"}})
	assert.Equal(t, "NVDA, TSM", strings.TrimSpace(doc.Find(`#domain-list li[data-id="1"] .tickers`).Text()))

	_, doc = e.post("/domains/custom/1/delete", url.Values{})
	assert.Equal(t, 0, doc.Find(`#domain-list li[data-id="1"]`).Length())
	assert.Equal(t, 1, doc.Find("#no-domains").Length())
}

func TestCustomDomainErrorsAreInline(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()

	_, doc := e.post("/domains/custom", url.Values{"name": {""}, "tickers": {"AAPL"}})
	assert.Equal(t, ranker.MsgNameRequired, text(doc, "#create-error"))
	assert.Equal(t, 0, e.upstream.Calls("create_custom"))

	e.upstream.Fail("create_custom", http.StatusUnprocessableEntity, `{"detail":"ticker XYZ not found"}`)
	_, doc = e.post("/domains/custom", url.Values{"name": {"Bad"}, "tickers": {"xyz"}})
	assert.Equal(t, "ticker XYZ not found", text(doc, "#create-error"))
	assert.Equal(t, "Bad", doc.Find(`input[name="name"]`).AttrOr("value", ""))

	e.upstream.Fail("create_custom", http.StatusInternalServerError, `{}`)
	_, doc = e.post("/domains/custom", url.Values{"name": {"Bad"}, "tickers": {"xyz"}})
	assert.Equal(t, ranker.MsgCreateFailed, text(doc, "#create-error"))
}

func TestViewAPI(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI", "Energy"))

	resp, _ := e.get("/api/view")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	e.login()

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/view", nil)
	require.NoError(t, err)
	resp, err = e.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var view viewstate.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.True(t, view.Loaded)
	assert.Equal(t, "AI", view.ActiveDomain)
	assert.Equal(t, []string{"AI", "Energy"}, view.Domains)
	require.NotNil(t, view.BestOverall)
	assert.Equal(t, "AIX", view.BestOverall.Ticker)
}

func TestVisibilityReport(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()
	require.True(t, e.sessions.AnyVisible())

	resp, _ := e.post("/dashboard/visibility", url.Values{"state": {"hidden"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, e.sessions.AnyVisible())

	resp, _ = e.post("/dashboard/visibility", url.Values{"state": {"bogus"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.post("/dashboard/visibility", url.Values{"state": {"visible"}})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, e.sessions.AnyVisible())
}

func TestLogoutClearsSession(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()

	resp, _ := e.post("/logout", url.Values{})
	assert.Equal(t, "/login", resp.Request.URL.Path)

	resp, _ = e.get("/dashboard")
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestHealth(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))

	resp, err := http.Get(e.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Status   string                        `json:"status"`
		Upstream *contracts.Health             `json:"upstream"`
		Jobs     map[string]scheduler.JobStats `json:"jobs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	require.NotNil(t, body.Upstream)
	assert.True(t, body.Upstream.DataAvailable)
	require.Contains(t, body.Jobs, "feed_refresh")
	assert.Equal(t, "@every 5m0s", body.Jobs["feed_refresh"].Schedule)
	assert.Zero(t, body.Jobs["feed_refresh"].TotalRuns)

	e.upstream.Fail("health", http.StatusServiceUnavailable, `{}`)
	resp2, err := http.Get(e.srv.URL + "/health")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body))
	assert.Equal(t, "degraded", body.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t, rankertest.Snapshot("AI"))
	e.login()

	resp, err := http.Get(e.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `ranker_http_requests_total{code="200",route="/dashboard"}`)
	assert.Contains(t, string(raw), "ranker_upstream_requests_total")
}
