package semcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jasha9/digitaltwin/internal/classify"
	"github.com/jasha9/digitaltwin/internal/model"
)

func newTestCache(cfg Config) (*Cache, *time.Time) {
	cache := New(cfg, classify.NewClassifier())
	now := time.Unix(1700000000, 0)
	cache.now = func() time.Time { return now }
	return cache, &now
}

func TestCache_ExactHit(t *testing.T) {
	cache, _ := newTestCache(Config{})
	id := cache.Store("What is your GPA?", StoreInput{Answer: "My GPA is 3.8.", Quality: 0.8})
	require.NotEmpty(t, id)

	hit, ok := cache.Get("what is your GPA")
	require.True(t, ok)
	require.Equal(t, "exact", hit.Strategy)
	require.Equal(t, 1.0, hit.Similarity)
	require.Equal(t, "My GPA is 3.8.", hit.Entry.Answer)
	require.Equal(t, 1, hit.Entry.HitCount)
}

func TestCache_FuzzyHit(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Store("What is your GPA?", StoreInput{Answer: "My GPA is 3.8.", Quality: 0.8})

	hit, ok := cache.Get("whats ur gpa")
	require.True(t, ok)
	require.Equal(t, "fuzzy", hit.Strategy)
	require.GreaterOrEqual(t, hit.Similarity, 0.75)
}

func TestCache_KeywordHit(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Store("Which Python projects have you built for automation?", StoreInput{Answer: "I built several automation tools.", Quality: 0.7})

	hit, ok := cache.Get("Built automation projects using Python?")
	require.True(t, ok)
	require.Equal(t, "keyword", hit.Strategy)
	require.GreaterOrEqual(t, hit.Similarity, 0.75)
}

func TestCache_MissBelowThreshold(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Store("What is your GPA?", StoreInput{Answer: "My GPA is 3.8.", Quality: 0.8})

	_, ok := cache.Get("Describe your leadership style during incidents")
	require.False(t, ok)
	require.Equal(t, uint64(1), cache.Stats().Misses)
}

func TestCache_TTLExpiry(t *testing.T) {
	cache, now := newTestCache(Config{})
	cache.Store("What is your GPA?", StoreInput{Answer: "My GPA is 3.8.", TTL: time.Hour})

	*now = now.Add(30 * time.Minute)
	_, ok := cache.Get("What is your GPA?")
	require.True(t, ok)

	*now = now.Add(time.Hour)
	_, ok = cache.Get("What is your GPA?")
	require.False(t, ok)
	require.Equal(t, 0, cache.Stats().Size)
}

func TestCache_ReplaceSameQuestion(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Store("What is your GPA?", StoreInput{Answer: "old"})
	cache.Store("What is your GPA?", StoreInput{Answer: "new"})

	require.Equal(t, 1, cache.Stats().Size)
	hit, ok := cache.Get("What is your GPA?")
	require.True(t, ok)
	require.Equal(t, "new", hit.Entry.Answer)
}

func TestCache_CapacityEviction(t *testing.T) {
	cache, now := newTestCache(Config{Capacity: 5})
	for i := 0; i < 6; i++ {
		cache.Store(fmt.Sprintf("question number %d about my career path", i), StoreInput{Answer: "answer"})
		*now = now.Add(time.Minute)
	}

	stats := cache.Stats()
	require.Equal(t, 5, stats.Size)
	require.Equal(t, uint64(1), stats.Evictions)

	// Oldest-access entry went, the newest stayed.
	require.NotContains(t, cache.byNorm, Normalize("question number 0 about my career path"))
	require.Contains(t, cache.byNorm, Normalize("question number 5 about my career path"))
}

func TestCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cache.Store("What Python frameworks do you use?", StoreInput{Answer: "a", Quality: 0.9})
	cache.Store("What is your leadership style?", StoreInput{Answer: "b", Quality: 0.3})

	removed := cache.Invalidate(InvalidateCriteria{QualityBelow: 0.5})
	require.Equal(t, 1, removed)
	require.Equal(t, 1, cache.Stats().Size)

	removed = cache.Invalidate(InvalidateCriteria{QuestionContains: "python"})
	require.Equal(t, 1, removed)
	require.Equal(t, 0, cache.Stats().Size)
}

func TestCache_PurgeExpired(t *testing.T) {
	cache, now := newTestCache(Config{})
	cache.Store("short lived question about my projects", StoreInput{Answer: "a", TTL: time.Minute})
	cache.Store("long lived question about my projects history", StoreInput{Answer: "b", TTL: time.Hour})

	*now = now.Add(10 * time.Minute)
	require.Equal(t, 1, cache.PurgeExpired())
	require.Equal(t, 1, cache.Stats().Size)
	require.Equal(t, uint64(1), cache.Stats().Expirations)
}

func TestCache_EmptyInputsIgnored(t *testing.T) {
	cache, _ := newTestCache(Config{})
	require.Empty(t, cache.Store("", StoreInput{Answer: "a"}))
	require.Empty(t, cache.Store("question", StoreInput{}))
	_, ok := cache.Get("   ")
	require.False(t, ok)
}

func TestCache_TopicHit(t *testing.T) {
	cache, _ := newTestCache(Config{})
	cls := &model.ContextClassification{
		Type:   model.QuestionTypeTechnical,
		Topics: []string{"docker", "kubernetes", "deployment"},
	}
	cache.Store("Zz qq xx rr?", StoreInput{Answer: "deploy story", Classification: cls})

	hit, ok := cache.Get("Do you use Docker and Kubernetes for deployment?")
	require.True(t, ok)
	require.Equal(t, "semantic", hit.Strategy)
}
