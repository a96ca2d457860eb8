package twin

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jasha9/digitaltwin/internal/ai"
	"github.com/jasha9/digitaltwin/internal/classify"
	"github.com/jasha9/digitaltwin/internal/generate"
	"github.com/jasha9/digitaltwin/internal/prompt"
	"github.com/jasha9/digitaltwin/internal/retrieval"
	"github.com/jasha9/digitaltwin/internal/semcache"
	"github.com/jasha9/digitaltwin/internal/vectorstore"
)

type fakeVectorStore struct {
	calls   int
	err     error
	results []vectorstore.QueryResult
	info    vectorstore.IndexInfo
	infoErr error
}

func (f *fakeVectorStore) Query(ctx context.Context, text string, topK int, includeMetadata bool) ([]vectorstore.QueryResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeVectorStore) Info(ctx context.Context) (*vectorstore.IndexInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &f.info, nil
}

type fakeChatProvider struct {
	calls  int
	answer string
	err    error
}

func (f *fakeChatProvider) Name() string { return "fake" }

func (f *fakeChatProvider) Complete(ctx context.Context, mdl string, messages []ai.Message, opts ai.Options) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func educationResults() []vectorstore.QueryResult {
	return []vectorstore.QueryResult{
		{
			ID:    "dt-education-1",
			Score: 0.92,
			Metadata: map[string]interface{}{
				"title":   "Education",
				"content": "BSc Computer Science, GPA 3.8, graduated 2024.",
			},
		},
	}
}

func newTestService(t *testing.T, store *fakeVectorStore, provider *fakeChatProvider) (*Service, *semcache.Cache) {
	t.Helper()
	classifier := classify.NewClassifier()
	cache := semcache.New(semcache.Config{}, classifier)
	retriever := retrieval.NewCoordinator(store, retrieval.Config{MaxAttempts: 1})
	generator, err := generate.NewCoordinator([]generate.Candidate{
		{Name: "fake", Provider: provider, Model: "fake-model", MaxRetries: 1},
	})
	require.NoError(t, err)
	service := NewService(classifier, cache, retriever, generator, prompt.NewBuilder("Jasha"), store)
	return service, cache
}

func TestQuery_EndToEnd(t *testing.T) {
	store := &fakeVectorStore{results: educationResults()}
	provider := &fakeChatProvider{answer: "I studied Computer Science and graduated with a 3.8 GPA in 2024."}
	service, _ := newTestService(t, store, provider)

	resp := service.Query(context.Background(), "Tell me about your education", nil)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Answer)
	require.False(t, resp.Cached)
	require.Len(t, resp.Sources, 1)
	require.Equal(t, "Education", resp.Sources[0].Title)
	require.Empty(t, resp.Error)
}

func TestQuery_SecondCallServedFromCache(t *testing.T) {
	store := &fakeVectorStore{results: educationResults()}
	provider := &fakeChatProvider{answer: "I studied Computer Science and graduated with a 3.8 GPA in 2024."}
	service, _ := newTestService(t, store, provider)

	first := service.Query(context.Background(), "Tell me about your education", nil)
	require.True(t, first.Success)

	second := service.Query(context.Background(), "Tell me about your education", nil)
	require.True(t, second.Success)
	require.True(t, second.Cached)
	require.Equal(t, first.Answer, second.Answer)
	require.Equal(t, 1, store.calls)
	require.Equal(t, 1, provider.calls)
}

func TestQuery_OffTopicRedirect(t *testing.T) {
	store := &fakeVectorStore{results: educationResults()}
	provider := &fakeChatProvider{answer: "unused"}
	service, cache := newTestService(t, store, provider)

	resp := service.Query(context.Background(), "What's your favorite pasta recipe?", nil)
	require.True(t, resp.Success)
	require.False(t, resp.Cached)
	require.Contains(t, resp.Answer, "professional")
	require.Equal(t, 0, store.calls)
	require.Equal(t, 0, provider.calls)

	// The redirect is a real answer and gets cached like one.
	hit, ok := cache.Get("What's your favorite pasta recipe?")
	require.True(t, ok)
	require.Equal(t, resp.Answer, hit.Entry.Answer)
}

func TestQuery_EmptyQuestion(t *testing.T) {
	service, _ := newTestService(t, &fakeVectorStore{}, &fakeChatProvider{})

	resp := service.Query(context.Background(), "   ", nil)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)
}

func TestQuery_LongQuestionTruncated(t *testing.T) {
	store := &fakeVectorStore{results: educationResults()}
	provider := &fakeChatProvider{answer: "answer text"}
	service, _ := newTestService(t, store, provider)

	question := "tell me about your education " + strings.Repeat("x", 2000)
	resp := service.Query(context.Background(), question, nil)
	require.True(t, resp.Success)
}

func TestQuery_NoRelevantData(t *testing.T) {
	store := &fakeVectorStore{results: nil}
	provider := &fakeChatProvider{answer: "unused"}
	service, _ := newTestService(t, store, provider)

	resp := service.Query(context.Background(), "What certifications do you hold?", nil)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "don't have specific information")
	require.Equal(t, 0, provider.calls)
}

func TestQuery_RetrievalFailure(t *testing.T) {
	store := &fakeVectorStore{err: fmt.Errorf("connection reset")}
	provider := &fakeChatProvider{answer: "unused"}
	service, _ := newTestService(t, store, provider)

	resp := service.Query(context.Background(), "What is your work experience?", nil)
	require.False(t, resp.Success)
	require.Contains(t, resp.Error, "knowledge base")
	require.Equal(t, 0, provider.calls)
}

func TestQuery_GenerationFailure(t *testing.T) {
	store := &fakeVectorStore{results: educationResults()}
	provider := &fakeChatProvider{err: fmt.Errorf("model overloaded")}
	service, cache := newTestService(t, store, provider)

	resp := service.Query(context.Background(), "Tell me about your education", nil)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)

	// A failed generation must not poison the cache.
	_, ok := cache.Get("Tell me about your education")
	require.False(t, ok)
}

func TestTestConnectivity(t *testing.T) {
	store := &fakeVectorStore{info: vectorstore.IndexInfo{VectorCount: 42}}
	service, _ := newTestService(t, store, &fakeChatProvider{})

	report := service.TestConnectivity(context.Background())
	require.True(t, report.Success)
	require.Equal(t, int64(42), report.VectorCount)

	store.infoErr = fmt.Errorf("dns failure")
	report = service.TestConnectivity(context.Background())
	require.False(t, report.Success)
	require.Contains(t, report.Message, "unreachable")
}
