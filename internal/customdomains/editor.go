// Package customdomains holds the per-session form state of the custom
// domain page and runs its mutations against the ranking API.
package customdomains

import (
	"context"
	"strings"
	"sync"

	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/internal/external/ranker"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/redis"
)

// MsgRateLimited is shown when a session mutates too often
const MsgRateLimited = "Too many changes, please wait a minute"

// Store is the custom domain collection upstream. *ranker.Client
// satisfies it.
type Store interface {
	ListCustomDomains(ctx context.Context) ([]contracts.CustomDomain, error)
	CreateCustomDomain(ctx context.Context, name string, tickers []string) (*contracts.CustomDomain, error)
	UpdateCustomDomain(ctx context.Context, id int, tickers []string) (*contracts.CustomDomain, error)
	DeleteCustomDomain(ctx context.Context, id int) error
}

// State is what the custom domain page renders
type State struct {
	Domains []contracts.CustomDomain

	// Create form
	Name        string
	TickersText string
	CreateError string

	// Inline edit, EditingID 0 when nothing is being edited
	EditingID int
	EditText  string
	EditError string

	// Collection-level failure (list or delete)
	ListError string
}

// Editor is the custom domain page of one view session
type Editor struct {
	sessionID string
	store     Store
	cache     *redis.Cache
	limiter   *redis.RateLimiter
	perMinute int
	logger    *logger.Logger

	mu          sync.Mutex
	name        string
	tickersText string
	createError string
	editingID   int
	editText    string
	editError   string
	listError   string
}

// NewEditor creates the editor for a view session. cache and limiter may
// be nil.
func NewEditor(sessionID string, store Store, cache *redis.Cache, limiter *redis.RateLimiter, perMinute int, log *logger.Logger) *Editor {
	return &Editor{
		sessionID: sessionID,
		store:     store,
		cache:     cache,
		limiter:   limiter,
		perMinute: perMinute,
		logger:    log.WithFields(map[string]interface{}{"component": "customdomains", "view_session": sessionID}),
	}
}

// State lists the domains through the cache and returns them with the
// current form state. A list failure shows an empty list and a message.
func (e *Editor) State(ctx context.Context) State {
	domains, err := e.list(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.logger.WithError(err).Warn("Custom domain list failed")
		e.listError = ranker.UserMessage(err)
		domains = []contracts.CustomDomain{}
	} else if e.listError == ranker.MsgListFailed {
		e.listError = ""
	}

	return State{
		Domains:     domains,
		Name:        e.name,
		TickersText: e.tickersText,
		CreateError: e.createError,
		EditingID:   e.editingID,
		EditText:    e.editText,
		EditError:   e.editError,
		ListError:   e.listError,
	}
}

// Create submits the create form. On success the form is reset; on
// failure the inputs are kept and the message is shown inline.
func (e *Editor) Create(ctx context.Context, name, rawTickers string) error {
	e.mu.Lock()
	e.name = name
	e.tickersText = rawTickers
	e.createError = ""
	e.mu.Unlock()

	if err := e.allow(ctx); err != nil {
		e.setCreateError(err)
		return err
	}

	created, err := e.store.CreateCustomDomain(ctx, strings.TrimSpace(name), ranker.ParseTickers(rawTickers))
	if err != nil {
		e.setCreateError(err)
		return err
	}

	e.mu.Lock()
	e.name = ""
	e.tickersText = ""
	e.mu.Unlock()

	if created != nil {
		e.logger.WithField("id", created.ID).Debug("Custom domain created")
	}
	e.invalidate(ctx)
	return nil
}

// StartEdit opens inline editing of d, prefilled with its tickers
func (e *Editor) StartEdit(d contracts.CustomDomain) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editingID = d.ID
	e.editText = strings.Join(d.Tickers, ", ")
	e.editError = ""
}

// CancelEdit closes inline editing without saving
func (e *Editor) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetEdit()
}

// Save replaces the tickers of domain id with the parsed rawTickers
func (e *Editor) Save(ctx context.Context, id int, rawTickers string) error {
	e.mu.Lock()
	e.editingID = id
	e.editText = rawTickers
	e.editError = ""
	e.mu.Unlock()

	if err := e.allow(ctx); err != nil {
		e.setEditError(err)
		return err
	}

	if _, err := e.store.UpdateCustomDomain(ctx, id, ranker.ParseTickers(rawTickers)); err != nil {
		e.setEditError(err)
		return err
	}

	e.mu.Lock()
	e.resetEdit()
	e.mu.Unlock()

	e.invalidate(ctx)
	return nil
}

// Delete removes domain id. There is no undo.
func (e *Editor) Delete(ctx context.Context, id int) error {
	e.mu.Lock()
	e.listError = ""
	e.mu.Unlock()

	if err := e.allow(ctx); err != nil {
		e.setListError(err)
		return err
	}

	if err := e.store.DeleteCustomDomain(ctx, id); err != nil {
		e.logger.WithError(err).WithField("id", id).Warn("Custom domain delete failed")
		e.setListError(err)
		return err
	}

	e.mu.Lock()
	if e.editingID == id {
		e.resetEdit()
	}
	e.mu.Unlock()

	e.invalidate(ctx)
	return nil
}

// Find returns the listed domain with id
func (e *Editor) Find(ctx context.Context, id int) (contracts.CustomDomain, bool) {
	domains, err := e.list(ctx)
	if err != nil {
		return contracts.CustomDomain{}, false
	}
	for _, d := range domains {
		if d.ID == id {
			return d, true
		}
	}
	return contracts.CustomDomain{}, false
}

func (e *Editor) list(ctx context.Context) ([]contracts.CustomDomain, error) {
	if e.cache == nil {
		return e.store.ListCustomDomains(ctx)
	}

	var domains []contracts.CustomDomain
	err := e.cache.GetOrSet(ctx, redis.CustomDomainsKey(e.sessionID), &domains, redis.TTLCustomDomains, func() (interface{}, error) {
		return e.store.ListCustomDomains(ctx)
	})
	if err != nil {
		return nil, err
	}
	if domains == nil {
		domains = []contracts.CustomDomain{}
	}
	return domains, nil
}

func (e *Editor) invalidate(ctx context.Context) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Delete(ctx, redis.CustomDomainsKey(e.sessionID)); err != nil {
		e.logger.WithError(err).Warn("Custom domain cache invalidation failed")
	}
}

func (e *Editor) allow(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	ok, _, err := e.limiter.Allow(ctx, redis.CustomDomainWriteLimit(e.sessionID, e.perMinute))
	if err != nil {
		// Fail open
		e.logger.WithError(err).Warn("Rate limiter unavailable")
		return nil
	}
	if !ok {
		return &ranker.ValidationError{Message: MsgRateLimited}
	}
	return nil
}

func (e *Editor) resetEdit() {
	e.editingID = 0
	e.editText = ""
	e.editError = ""
}

func (e *Editor) setCreateError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.createError = ranker.UserMessage(err)
}

func (e *Editor) setEditError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editError = ranker.UserMessage(err)
}

func (e *Editor) setListError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listError = ranker.UserMessage(err)
}
