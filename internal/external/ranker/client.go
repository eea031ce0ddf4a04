package ranker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yarin-claude-code/stocks/internal/auth"
	"github.com/yarin-claude-code/stocks/pkg/config"
	"github.com/yarin-claude-code/stocks/pkg/httputil"
	"github.com/yarin-claude-code/stocks/pkg/logger"
)

// maxErrorBody caps how much of a failed response is kept for diagnostics
const maxErrorBody = 4 << 10

// Client handles communication with the ranking API
// ⭐ SSOT: ranking API calls happen only in this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // includes the /api prefix
	creds      auth.CredentialProvider
}

// NewClient creates a new ranking API client. baseURL must include the /api
// prefix (config.APIBaseURL).
func NewClient(httpClient *httputil.Client, baseURL string, creds auth.CredentialProvider, log *logger.Logger) *Client {
	if creds == nil {
		creds = auth.NewStatic("")
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("component", "ranker"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
	}
}

// session returns the caller's session, or nil when anonymous
func (c *Client) session(ctx context.Context) *auth.Session {
	return c.creds.Session(ctx)
}

func (c *Client) url(path string, params url.Values) string {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// getJSON performs a GET and decodes a 200 body into dest. Any other status
// yields ErrFetch wrapping a *StatusError.
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, header http.Header, dest interface{}) error {
	resp, err := c.httpClient.Get(ctx, c.url(path, params), header)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetch, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %w", ErrFetch, newStatusError(op, resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", ErrFetch, op, err)
	}

	return nil
}

// newStatusError consumes the response body
func newStatusError(op string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}

func bearer(s *auth.Session) http.Header {
	if s == nil {
		return nil
	}
	return httputil.BearerHeader(s.AccessToken)
}

// NewFromConfig wires a client against cfg's ranker with retries disabled
// and requests reported to obs (may be nil).
func NewFromConfig(cfg *config.Config, creds auth.CredentialProvider, log *logger.Logger, obs httputil.Observer) *Client {
	hc := httputil.New(cfg, log).DisableRetry()
	if obs != nil {
		hc.WithObserver(obs)
	}
	return NewClient(hc, cfg.APIBaseURL(), creds, log)
}
