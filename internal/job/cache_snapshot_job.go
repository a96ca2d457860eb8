package job

import (
	"context"

	"github.com/jasha9/digitaltwin/internal/kvstore"
	"github.com/jasha9/digitaltwin/internal/semcache"
)

// CacheSnapshotJob periodically writes the answer cache to the key-value
// store so a restart can warm-start instead of regenerating everything.
type CacheSnapshotJob struct {
	cache *semcache.Cache
	store kvstore.Store
	key   string
}

func NewCacheSnapshotJob(cache *semcache.Cache, store kvstore.Store, key string) *CacheSnapshotJob {
	return &CacheSnapshotJob{cache: cache, store: store, key: key}
}

func (j *CacheSnapshotJob) Name() string {
	return "answer_cache_snapshot"
}

func (j *CacheSnapshotJob) Run(ctx context.Context) error {
	if j.cache == nil || j.store == nil {
		return nil
	}
	return j.cache.SaveTo(ctx, j.store, j.key)
}
