package jobs

import (
	"context"

	"github.com/yarin-claude-code/stocks/pkg/logger"
)

// SessionSweeper evicts idle view sessions
type SessionSweeper interface {
	Sweep() int
	Len() int
}

// CacheSweeper drops expired cache entries
type CacheSweeper interface {
	Sweep() int
}

// SessionGCJob evicts view sessions nobody has touched for a while
type SessionGCJob struct {
	sessions SessionSweeper
	logger   *logger.Logger
}

// NewSessionGCJob creates a new session GC job
func NewSessionGCJob(sessions SessionSweeper, log *logger.Logger) *SessionGCJob {
	return &SessionGCJob{
		sessions: sessions,
		logger:   log,
	}
}

// Name returns the job name
func (j *SessionGCJob) Name() string {
	return "session_gc"
}

// Schedule returns the cron schedule (every minute)
func (j *SessionGCJob) Schedule() string {
	return "0 * * * * *"
}

// Run executes the sweep
func (j *SessionGCJob) Run(ctx context.Context) error {
	removed := j.sessions.Sweep()
	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"active":  j.sessions.Len(),
		}).Debug("Session GC completed")
	}
	return nil
}

// CacheCleanupJob drops expired in-memory cache entries
type CacheCleanupJob struct {
	cache  CacheSweeper
	logger *logger.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache CacheSweeper, log *logger.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *CacheCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cache cleanup
func (j *CacheCleanupJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled cache cleanup")

	left := j.cache.Sweep()
	j.logger.WithField("entries", left).Debug("Cache cleanup completed")

	return nil
}
