package jobs

import (
	"context"
	"time"

	"github.com/yarin-claude-code/stocks/internal/scheduler"
	"github.com/yarin-claude-code/stocks/pkg/logger"
	"github.com/yarin-claude-code/stocks/pkg/metrics"
)

// Refresher reloads the shared rankings snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// VisibilitySource reports whether any viewer has the dashboard in the
// foreground
type VisibilitySource interface {
	AnyVisible() bool
}

// FeedRefreshJob polls the ranking API while someone is watching
type FeedRefreshJob struct {
	feed     Refresher
	viewers  VisibilitySource
	interval time.Duration
	logger   *logger.Logger
	metrics  *metrics.Recorder
}

// NewFeedRefreshJob creates a new feed refresh job
func NewFeedRefreshJob(feed Refresher, viewers VisibilitySource, interval time.Duration, log *logger.Logger, rec *metrics.Recorder) *FeedRefreshJob {
	return &FeedRefreshJob{
		feed:     feed,
		viewers:  viewers,
		interval: interval,
		logger:   log,
		metrics:  rec,
	}
}

// Name returns the job name
func (j *FeedRefreshJob) Name() string {
	return "feed_refresh"
}

// Schedule returns the poll interval
func (j *FeedRefreshJob) Schedule() string {
	return scheduler.Every(j.interval)
}

// Run refreshes the feed unless every view is hidden. A failed refresh is
// not retried before the next tick.
func (j *FeedRefreshJob) Run(ctx context.Context) error {
	if !j.viewers.AnyVisible() {
		j.logger.Debug("No visible dashboard, skipping rankings poll")
		j.metrics.RecordFeedRefresh("skipped")
		return nil
	}

	return j.feed.Refresh(ctx)
}
