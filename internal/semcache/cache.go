package semcache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jasha9/digitaltwin/internal/classify"
	"github.com/jasha9/digitaltwin/internal/model"
)

const (
	DefaultCapacity            = 1000
	DefaultTTL                 = 24 * time.Hour
	DefaultSimilarityThreshold = 0.75
	// Percent of entries dropped when the cache is still over capacity
	// after expired entries are purged.
	evictionPercent = 20
)

type Config struct {
	Capacity            int
	DefaultTTL          time.Duration
	SimilarityThreshold float64
}

// Cache is a multi-strategy question->answer cache. Lookup tries exact,
// fuzzy (edit distance), keyword-overlap and topic-overlap matching in that
// order, returning the first result at or above the similarity threshold.
// The expensive tiers only run when the cheap ones miss.
type Cache struct {
	mu         sync.Mutex
	cfg        Config
	classifier *classify.Classifier

	entries    map[string]*model.CacheEntry
	byNorm     map[string]string
	keywordIdx map[string]map[string]bool

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	now func() time.Time
}

func New(cfg Config, classifier *classify.Classifier) *Cache {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return &Cache{
		cfg:        cfg,
		classifier: classifier,
		entries:    make(map[string]*model.CacheEntry),
		byNorm:     make(map[string]string),
		keywordIdx: make(map[string]map[string]bool),
		now:        time.Now,
	}
}

type StoreInput struct {
	Answer         string
	Sources        []model.Source
	Classification *model.ContextClassification
	Quality        float64
	TTL            time.Duration
}

// Store inserts a cache entry for the question and returns the entry id.
// A same-normalized-question entry is replaced. Cleanup runs on every store.
func (c *Cache) Store(question string, in StoreInput) string {
	normalized := Normalize(question)
	if normalized == "" || in.Answer == "" {
		return ""
	}
	cls := in.Classification
	if cls == nil {
		derived := c.classifier.Classify(question)
		cls = &derived
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	nowMs := c.now().UnixMilli()
	entry := &model.CacheEntry{
		ID:                 uuid.NewString(),
		NormalizedQuestion: normalized,
		Answer:             in.Answer,
		Sources:            in.Sources,
		Classification:     cls,
		Topics:             cls.Topics,
		Quality:            in.Quality,
		CreatedAt:          nowMs,
		LastAccessedAt:     nowMs,
		ExpiresAt:          nowMs + ttl.Milliseconds(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if oldID, ok := c.byNorm[normalized]; ok {
		c.removeLocked(oldID)
	}
	c.entries[entry.ID] = entry
	c.byNorm[normalized] = entry.ID
	for _, keyword := range ExtractKeywords(normalized) {
		ids := c.keywordIdx[keyword]
		if ids == nil {
			ids = make(map[string]bool)
			c.keywordIdx[keyword] = ids
		}
		ids[entry.ID] = true
	}
	c.cleanupLocked()
	return entry.ID
}

type Hit struct {
	Entry      model.CacheEntry
	Similarity float64
	Strategy   string
}

// Get looks the question up through the four match strategies. A hit
// updates the entry's access time and hit count in place.
func (c *Cache) Get(question string) (*Hit, bool) {
	normalized := Normalize(question)
	if normalized == "" {
		return nil, false
	}
	nowMs := c.now().UnixMilli()

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry := c.liveEntryByNormLocked(normalized, nowMs); entry != nil {
		return c.touchLocked(entry, 1.0, "exact", nowMs), true
	}
	if entry, sim := c.fuzzyMatchLocked(normalized, nowMs); entry != nil {
		return c.touchLocked(entry, sim, "fuzzy", nowMs), true
	}
	if entry, sim := c.keywordMatchLocked(normalized, nowMs); entry != nil {
		return c.touchLocked(entry, sim, "keyword", nowMs), true
	}
	if entry, sim := c.topicMatchLocked(question, nowMs); entry != nil {
		return c.touchLocked(entry, sim, "semantic", nowMs), true
	}
	c.misses++
	return nil, false
}

func (c *Cache) liveEntryByNormLocked(normalized string, nowMs int64) *model.CacheEntry {
	id, ok := c.byNorm[normalized]
	if !ok {
		return nil
	}
	entry := c.entries[id]
	if entry == nil {
		return nil
	}
	if entry.Expired(nowMs) {
		c.removeLocked(id)
		c.expirations++
		return nil
	}
	return entry
}

func (c *Cache) fuzzyMatchLocked(normalized string, nowMs int64) (*model.CacheEntry, float64) {
	var best *model.CacheEntry
	bestSim := 0.0
	for _, entry := range c.entries {
		if entry.Expired(nowMs) {
			continue
		}
		sim := fuzzySimilarity(normalized, entry.NormalizedQuestion)
		if sim >= c.cfg.SimilarityThreshold && sim > bestSim {
			best = entry
			bestSim = sim
		}
	}
	return best, bestSim
}

func (c *Cache) keywordMatchLocked(normalized string, nowMs int64) (*model.CacheEntry, float64) {
	keywords := ExtractKeywords(normalized)
	if len(keywords) == 0 {
		return nil, 0
	}
	candidates := map[string]bool{}
	for _, keyword := range keywords {
		for id := range c.keywordIdx[keyword] {
			candidates[id] = true
		}
	}
	var best *model.CacheEntry
	bestSim := 0.0
	for id := range candidates {
		entry := c.entries[id]
		if entry == nil || entry.Expired(nowMs) {
			continue
		}
		sim := jaccard(keywords, ExtractKeywords(entry.NormalizedQuestion))
		if sim >= c.cfg.SimilarityThreshold && sim > bestSim {
			best = entry
			bestSim = sim
		}
	}
	return best, bestSim
}

func (c *Cache) topicMatchLocked(question string, nowMs int64) (*model.CacheEntry, float64) {
	topics := c.classifier.Classify(question).Topics
	if len(topics) == 0 {
		return nil, 0
	}
	var best *model.CacheEntry
	bestSim := 0.0
	for _, entry := range c.entries {
		if entry.Expired(nowMs) || len(entry.Topics) == 0 {
			continue
		}
		sim := jaccard(topics, entry.Topics)
		if sim >= c.cfg.SimilarityThreshold && sim > bestSim {
			best = entry
			bestSim = sim
		}
	}
	return best, bestSim
}

func (c *Cache) touchLocked(entry *model.CacheEntry, sim float64, strategy string, nowMs int64) *Hit {
	entry.LastAccessedAt = nowMs
	entry.HitCount++
	c.hits++
	return &Hit{Entry: *entry, Similarity: sim, Strategy: strategy}
}

type InvalidateCriteria struct {
	QuestionContains string
	QuestionType     model.QuestionType
	OlderThan        time.Duration
	QualityBelow     float64
	QualityAbove     float64
}

// Invalidate removes entries matching any provided criterion and returns
// the number removed.
func (c *Cache) Invalidate(criteria InvalidateCriteria) int {
	nowMs := c.now().UnixMilli()
	c.mu.Lock()
	defer c.mu.Unlock()
	var doomed []string
	for id, entry := range c.entries {
		if criteria.QuestionContains != "" && strings.Contains(entry.NormalizedQuestion, Normalize(criteria.QuestionContains)) {
			doomed = append(doomed, id)
			continue
		}
		if criteria.QuestionType != "" && entry.Classification != nil && entry.Classification.Type == criteria.QuestionType {
			doomed = append(doomed, id)
			continue
		}
		if criteria.OlderThan > 0 && nowMs-entry.CreatedAt > criteria.OlderThan.Milliseconds() {
			doomed = append(doomed, id)
			continue
		}
		if criteria.QualityBelow > 0 && entry.Quality < criteria.QualityBelow {
			doomed = append(doomed, id)
			continue
		}
		if criteria.QualityAbove > 0 && entry.Quality > criteria.QualityAbove {
			doomed = append(doomed, id)
			continue
		}
	}
	for _, id := range doomed {
		c.removeLocked(id)
	}
	return len(doomed)
}

// PurgeExpired drops all expired entries and returns the number removed.
func (c *Cache) PurgeExpired() int {
	nowMs := c.now().UnixMilli()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeExpiredLocked(nowMs)
}

func (c *Cache) purgeExpiredLocked(nowMs int64) int {
	var doomed []string
	for id, entry := range c.entries {
		if entry.Expired(nowMs) {
			doomed = append(doomed, id)
		}
	}
	for _, id := range doomed {
		c.removeLocked(id)
	}
	c.expirations += uint64(len(doomed))
	return len(doomed)
}

// cleanupLocked enforces the capacity bound: expired entries go first, then
// the least-recently-accessed 20%.
func (c *Cache) cleanupLocked() {
	if len(c.entries) <= c.cfg.Capacity {
		return
	}
	nowMs := c.now().UnixMilli()
	c.purgeExpiredLocked(nowMs)
	if len(c.entries) <= c.cfg.Capacity {
		return
	}
	byAccess := make([]*model.CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		byAccess = append(byAccess, entry)
	}
	sort.Slice(byAccess, func(i, j int) bool {
		return byAccess[i].LastAccessedAt < byAccess[j].LastAccessedAt
	})
	drop := len(byAccess) * evictionPercent / 100
	if drop < 1 {
		drop = 1
	}
	for _, entry := range byAccess[:drop] {
		c.removeLocked(entry.ID)
	}
	c.evictions += uint64(drop)
}

func (c *Cache) removeLocked(id string) {
	entry := c.entries[id]
	if entry == nil {
		return
	}
	delete(c.entries, id)
	if c.byNorm[entry.NormalizedQuestion] == id {
		delete(c.byNorm, entry.NormalizedQuestion)
	}
	for _, keyword := range ExtractKeywords(entry.NormalizedQuestion) {
		if ids := c.keywordIdx[keyword]; ids != nil {
			delete(ids, id)
			if len(ids) == 0 {
				delete(c.keywordIdx, keyword)
			}
		}
	}
}

type Stats struct {
	Size        int    `json:"size"`
	Capacity    int    `json:"capacity"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:        len(c.entries),
		Capacity:    c.cfg.Capacity,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
	}
}
