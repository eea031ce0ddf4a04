// Package feed holds the rankings snapshot shared by every dashboard viewer.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yarin-claude-code/stocks/internal/contracts"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
	"github.com/yarin-claude-code/stocks/pkg/redis"
)

// Fetcher loads a fresh snapshot from the ranking API
type Fetcher interface {
	FetchRankings(ctx context.Context) (*contracts.RankingsSnapshot, error)
}

// Feed caches the latest snapshot. A snapshot is replaced wholesale and
// never mutated, so readers may hold on to it.
// ⭐ SSOT: dashboard views read rankings only from here
type Feed struct {
	fetcher Fetcher
	cache   *redis.Cache
	logger  *logger.Logger
	metrics *metrics.Recorder
	group   singleflight.Group

	mu        sync.RWMutex
	snapshot  *contracts.RankingsSnapshot
	fetchedAt time.Time
	lastErr   error
	now       func() time.Time

	loadTimeout time.Duration
}

// New creates a feed. cache may be nil.
func New(fetcher Fetcher, cache *redis.Cache, log *logger.Logger, rec *metrics.Recorder) *Feed {
	return &Feed{
		fetcher: fetcher,
		cache:   cache,
		logger:  log.WithField("component", "feed"),
		metrics: rec,
		now:     time.Now,

		loadTimeout: 30 * time.Second,
	}
}

// Current returns the held snapshot without any I/O, or nil before the
// first successful load
func (f *Feed) Current() *contracts.RankingsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot
}

// Status describes the feed for health reporting
type Status struct {
	Loaded    bool      `json:"loaded"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Status returns the feed's load state
func (f *Feed) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	st := Status{Loaded: f.snapshot != nil, FetchedAt: f.fetchedAt}
	if f.lastErr != nil {
		st.LastError = f.lastErr.Error()
	}
	return st
}

// Snapshot returns the held snapshot, loading it on first use. Concurrent
// first loads share one request. A failed first load returns the error
// and leaves the feed empty; callers render the loading state.
func (f *Feed) Snapshot(ctx context.Context) (*contracts.RankingsSnapshot, error) {
	if snap := f.Current(); snap != nil {
		return snap, nil
	}

	if f.cache != nil {
		var cached contracts.RankingsSnapshot
		found, err := f.cache.Get(ctx, redis.SnapshotKey(), &cached)
		if err != nil {
			f.logger.WithError(err).Warn("Snapshot cache read failed")
		}
		if found {
			f.store(&cached)
			return &cached, nil
		}
	}

	// The shared load outlives any single caller's request
	ch := f.group.DoChan("load", func() (interface{}, error) {
		if f.Current() != nil {
			return nil, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.loadTimeout)
		defer cancel()
		return nil, f.fetch(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load rankings: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("load rankings: %w", res.Err)
		}
	}
	return f.Current(), nil
}

// Refresh fetches a new snapshot and replaces the held one. On failure the
// previous snapshot stays in place; the next tick tries again.
func (f *Feed) Refresh(ctx context.Context) error {
	_, err, _ := f.group.Do("refresh", func() (interface{}, error) {
		return nil, f.fetch(ctx)
	})
	if err != nil {
		return fmt.Errorf("refresh rankings: %w", err)
	}
	return nil
}

func (f *Feed) fetch(ctx context.Context) error {
	snap, err := f.fetcher.FetchRankings(ctx)
	if err != nil {
		f.mu.Lock()
		f.lastErr = err
		f.mu.Unlock()
		f.metrics.RecordFeedRefresh("error")
		f.logger.WithError(err).Warn("Rankings fetch failed")
		return err
	}

	f.store(snap)
	f.metrics.RecordFeedRefresh("ok")

	if f.cache != nil {
		if err := f.cache.Set(ctx, redis.SnapshotKey(), snap, redis.TTLSnapshot); err != nil {
			f.logger.WithError(err).Warn("Snapshot cache write failed")
		}
	}

	f.logger.WithField("domains", len(snap.Domains)).Debug("Rankings fetched")
	return nil
}

func (f *Feed) store(snap *contracts.RankingsSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = snap
	f.fetchedAt = f.now()
	f.lastErr = nil
}
