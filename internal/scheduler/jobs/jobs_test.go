package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yarin-claude-code/stocks/internal/scheduler"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
)

type fakeFeed struct {
	calls int32
	err   error
}

func (f *fakeFeed) Refresh(ctx context.Context) error {
	atomic.AddInt32(&f.calls, 1)
	return f.err
}

type fakeViewers bool

func (v fakeViewers) AnyVisible() bool { return bool(v) }

type fakeSweeper struct{ n, calls, lens int }

func (s *fakeSweeper) Sweep() int {
	s.calls++
	return s.n
}

func (s *fakeSweeper) Len() int {
	s.lens++
	return 3
}

func TestFeedRefreshSkipsWhenHidden(t *testing.T) {
	feed := &fakeFeed{}
	rec := metrics.New()
	job := NewFeedRefreshJob(feed, fakeViewers(false), 5*time.Minute, logger.Nop(), rec)

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, atomic.LoadInt32(&feed.calls))
	n, err := testutil.GatherAndCount(rec.Registry(), "ranker_feed_refreshes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFeedRefreshRunsWhenVisible(t *testing.T) {
	feed := &fakeFeed{err: errors.New("upstream down")}
	job := NewFeedRefreshJob(feed, fakeViewers(true), 5*time.Minute, logger.Nop(), nil)

	err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&feed.calls))
}

func TestFeedRefreshSchedule(t *testing.T) {
	job := NewFeedRefreshJob(&fakeFeed{}, fakeViewers(true), 5*time.Minute, logger.Nop(), nil)
	assert.Equal(t, "feed_refresh", job.Name())
	assert.Equal(t, "@every 5m0s", job.Schedule())

	s := scheduler.New(logger.Nop())
	assert.NoError(t, s.AddJob(job))
}

func TestMaintenanceJobs(t *testing.T) {
	sessions := &fakeSweeper{n: 2}
	cache := &fakeSweeper{n: 7}

	gc := NewSessionGCJob(sessions, logger.Nop())
	cleanup := NewCacheCleanupJob(cache, logger.Nop())

	require.NoError(t, gc.Run(context.Background()))
	require.NoError(t, cleanup.Run(context.Background()))
	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, 1, cache.calls)
	assert.Equal(t, 1, sessions.lens)

	s := scheduler.New(logger.Nop())
	require.NoError(t, s.AddJob(gc))
	require.NoError(t, s.AddJob(cleanup))
	stats := s.GetJobStats()
	assert.Contains(t, stats, "session_gc")
	assert.Contains(t, stats, "cache_cleanup")
}

func TestFailedRefreshWaitsForNextTick(t *testing.T) {
	feed := &fakeFeed{err: errors.New("upstream down")}
	job := NewFeedRefreshJob(feed, fakeViewers(true), time.Second, logger.Nop(), nil)

	s := scheduler.New(logger.Nop(), scheduler.WithRetries(0, 0))
	require.NoError(t, s.AddJob(job))
	s.Start()

	require.Eventually(t, func() bool {
		return s.GetJobStats()["feed_refresh"].TotalRuns >= 1
	}, 5*time.Second, 10*time.Millisecond)
	s.Stop()

	stats := s.GetJobStats()["feed_refresh"]
	assert.Equal(t, stats.TotalRuns, stats.FailureCount)
	assert.Equal(t, int32(stats.TotalRuns), atomic.LoadInt32(&feed.calls), "one attempt per tick")
}
