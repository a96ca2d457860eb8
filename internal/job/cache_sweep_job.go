package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jasha9/digitaltwin/internal/semcache"
)

// CacheSweepJob drops expired answer-cache entries so lookups do not keep
// scanning dead rows between organic cleanups.
type CacheSweepJob struct {
	cache *semcache.Cache
}

func NewCacheSweepJob(cache *semcache.Cache) *CacheSweepJob {
	return &CacheSweepJob{cache: cache}
}

func (j *CacheSweepJob) Name() string {
	return "answer_cache_sweep"
}

func (j *CacheSweepJob) Run(ctx context.Context) error {
	if j.cache == nil {
		return nil
	}
	removed := j.cache.PurgeExpired()
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired cache entries purged", zap.Int("removed", removed))
	}
	return nil
}
