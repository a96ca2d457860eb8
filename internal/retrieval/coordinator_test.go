package retrieval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErr "github.com/jasha9/digitaltwin/internal/pkg/errors"
	"github.com/jasha9/digitaltwin/internal/vectorstore"
)

type fakeStore struct {
	calls    int
	failures int
	results  []vectorstore.QueryResult
}

func (f *fakeStore) Query(ctx context.Context, text string, topK int, includeMetadata bool) ([]vectorstore.QueryResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, fmt.Errorf("connection reset")
	}
	return f.results, nil
}

func (f *fakeStore) Info(ctx context.Context) (*vectorstore.IndexInfo, error) {
	return &vectorstore.IndexInfo{VectorCount: int64(len(f.results))}, nil
}

func fragmentResult(id, title, content string) vectorstore.QueryResult {
	return vectorstore.QueryResult{
		ID:    id,
		Score: 0.9,
		Metadata: map[string]interface{}{
			"title":   title,
			"content": content,
		},
	}
}

func newTestCoordinator(store vectorstore.Store, cfg Config) (*Coordinator, *[]time.Duration) {
	c := NewCoordinator(store, cfg)
	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return c, &sleeps
}

func TestRetrieve_RetriesWithGrowingBackoff(t *testing.T) {
	store := &fakeStore{
		failures: 2,
		results:  []vectorstore.QueryResult{fragmentResult("dt-edu-1", "Education", "BSc Computer Science")},
	}
	c, sleeps := newTestCoordinator(store, Config{})

	fragments, err := c.Retrieve(context.Background(), "tell me about your education")
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	require.Equal(t, 3, store.calls)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestRetrieve_ExhaustedAttempts(t *testing.T) {
	store := &fakeStore{failures: 10}
	c, sleeps := newTestCoordinator(store, Config{})

	_, err := c.Retrieve(context.Background(), "question")
	require.ErrorIs(t, err, appErr.ErrVectorQueryFailed)
	require.Equal(t, 3, store.calls)
	require.Len(t, *sleeps, 2)
}

func TestRetrieve_FiltersByNamespaceAndContent(t *testing.T) {
	store := &fakeStore{results: []vectorstore.QueryResult{
		fragmentResult("other-1", "Noise", "from another corpus"),
		fragmentResult("dt-skills-1", "Skills", "Go, Python, SQL"),
		{ID: "dt-empty-1", Score: 0.8, Metadata: map[string]interface{}{"title": "Empty"}},
		{ID: "dt-untitled-1", Score: 0.7, Metadata: map[string]interface{}{"content": "some details"}},
	}}
	c, _ := newTestCoordinator(store, Config{})

	fragments, err := c.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	require.Equal(t, "dt-skills-1", fragments[0].ID)
	require.Equal(t, "Information", fragments[1].Title)
}

func TestRetrieve_TrimsToTopK(t *testing.T) {
	store := &fakeStore{results: []vectorstore.QueryResult{
		fragmentResult("dt-1", "A", "a"),
		fragmentResult("dt-2", "B", "b"),
		fragmentResult("dt-3", "C", "c"),
	}}
	c, _ := newTestCoordinator(store, Config{TopK: 2})

	fragments, err := c.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	require.Len(t, fragments, 2)
}

func TestRetrieve_NoRelevantDataNotRetried(t *testing.T) {
	store := &fakeStore{results: []vectorstore.QueryResult{
		fragmentResult("other-1", "Noise", "wrong namespace"),
	}}
	c, sleeps := newTestCoordinator(store, Config{})

	_, err := c.Retrieve(context.Background(), "question")
	require.ErrorIs(t, err, appErr.ErrNoRelevantData)
	require.Equal(t, 1, store.calls)
	require.Empty(t, *sleeps)
}

func TestRetrieve_OverfetchesTopK(t *testing.T) {
	var gotTopK int
	store := &topKRecorder{topK: &gotTopK}
	c, _ := newTestCoordinator(store, Config{TopK: 3})

	_, _ = c.Retrieve(context.Background(), "question")
	require.Equal(t, 9, gotTopK)
}

func TestRetrieve_ScoreClamped(t *testing.T) {
	store := &fakeStore{results: []vectorstore.QueryResult{
		{ID: "dt-1", Score: 1.7, Metadata: map[string]interface{}{"content": "x"}},
	}}
	c, _ := newTestCoordinator(store, Config{})

	fragments, err := c.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	require.Equal(t, 1.0, fragments[0].Score)
}

type topKRecorder struct {
	topK *int
}

func (r *topKRecorder) Query(ctx context.Context, text string, topK int, includeMetadata bool) ([]vectorstore.QueryResult, error) {
	*r.topK = topK
	return nil, nil
}

func (r *topKRecorder) Info(ctx context.Context) (*vectorstore.IndexInfo, error) {
	return &vectorstore.IndexInfo{}, nil
}
