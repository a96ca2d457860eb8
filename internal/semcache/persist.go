package semcache

import (
	"context"
	"encoding/json"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jasha9/digitaltwin/internal/kvstore"
	"github.com/jasha9/digitaltwin/internal/model"
)

// SnapshotKey is the fixed namespace under which cache snapshots live in
// the key-value store.
const SnapshotKey = "digitaltwin:semcache:v1"

type snapshot struct {
	Entries []model.CacheEntry `json:"entries"`
}

// SaveTo serializes all live entries to the key-value store. The snapshot
// is a warm-start optimization, not a durability contract.
func (c *Cache) SaveTo(ctx context.Context, store kvstore.Store, key string) error {
	if key == "" {
		key = SnapshotKey
	}
	nowMs := c.now().UnixMilli()
	c.mu.Lock()
	snap := snapshot{Entries: make([]model.CacheEntry, 0, len(c.entries))}
	for _, entry := range c.entries {
		if entry.Expired(nowMs) {
			continue
		}
		snap.Entries = append(snap.Entries, *entry)
	}
	c.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, data); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("cache snapshot saved", zap.Int("entries", len(snap.Entries)))
	return nil
}

// LoadFrom restores entries from a snapshot. Errors and malformed data are
// logged and swallowed: a missing snapshot only means a cold cache.
func (c *Cache) LoadFrom(ctx context.Context, store kvstore.Store, key string) {
	if key == "" {
		key = SnapshotKey
	}
	logger := logutil.GetLogger(ctx)
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache snapshot load failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("cache snapshot is malformed, starting cold", zap.Error(err))
		return
	}
	nowMs := c.now().UnixMilli()
	restored := 0
	c.mu.Lock()
	for i := range snap.Entries {
		entry := snap.Entries[i]
		if entry.ID == "" || entry.NormalizedQuestion == "" || entry.Expired(nowMs) {
			continue
		}
		if _, exists := c.byNorm[entry.NormalizedQuestion]; exists {
			continue
		}
		stored := entry
		c.entries[stored.ID] = &stored
		c.byNorm[stored.NormalizedQuestion] = stored.ID
		for _, keyword := range ExtractKeywords(stored.NormalizedQuestion) {
			ids := c.keywordIdx[keyword]
			if ids == nil {
				ids = make(map[string]bool)
				c.keywordIdx[keyword] = ids
			}
			ids[stored.ID] = true
		}
		restored++
		if len(c.entries) >= c.cfg.Capacity {
			break
		}
	}
	c.mu.Unlock()
	logger.Info("cache snapshot restored", zap.Int("entries", restored))
}
