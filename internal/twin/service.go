package twin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jasha9/digitaltwin/internal/classify"
	"github.com/jasha9/digitaltwin/internal/generate"
	"github.com/jasha9/digitaltwin/internal/model"
	appErr "github.com/jasha9/digitaltwin/internal/pkg/errors"
	"github.com/jasha9/digitaltwin/internal/prompt"
	"github.com/jasha9/digitaltwin/internal/relevance"
	"github.com/jasha9/digitaltwin/internal/retrieval"
	"github.com/jasha9/digitaltwin/internal/semcache"
	"github.com/jasha9/digitaltwin/internal/vectorstore"
)

// Questions longer than this are truncated, not rejected.
const maxQuestionRunes = 1000

// Shorter life for off-topic redirects: the answer is canned, keeping it
// around a full day buys nothing.
const redirectTTL = 6 * time.Hour

// Service is the query orchestrator. It sequences relevance filtering,
// cache lookup, retrieval, classification, prompt construction and
// generation, and is the error boundary for the whole pipeline: no error
// crosses into caller-facing code, failures become success=false responses.
type Service struct {
	classifier *classify.Classifier
	cache      *semcache.Cache
	retriever  *retrieval.Coordinator
	generator  *generate.Coordinator
	prompts    *prompt.Builder
	store      vectorstore.Store

	now func() time.Time
}

func NewService(
	classifier *classify.Classifier,
	cache *semcache.Cache,
	retriever *retrieval.Coordinator,
	generator *generate.Coordinator,
	prompts *prompt.Builder,
	store vectorstore.Store,
) *Service {
	return &Service{
		classifier: classifier,
		cache:      cache,
		retriever:  retriever,
		generator:  generator,
		prompts:    prompts,
		store:      store,
		now:        time.Now,
	}
}

// Query answers a profile question. The response always comes back non-nil;
// Success=false carries a human-readable error instead of a Go error.
func (s *Service) Query(ctx context.Context, question string, history []model.ConversationTurn) *model.DigitalTwinResponse {
	start := s.now()
	logger := logutil.GetLogger(ctx)

	question = strings.TrimSpace(question)
	if question == "" {
		return s.failure(start, appErr.ErrInvalidInput, "please ask a question")
	}
	if runes := []rune(question); len(runes) > maxQuestionRunes {
		question = string(runes[:maxQuestionRunes])
	}

	if verdict := relevance.Check(question); !verdict.IsRelevant {
		// An off-topic redirect is a correct, cacheable answer, not an error.
		logger.Debug("question redirected as off-topic")
		answer := verdict.RedirectAnswer
		if answer == "" {
			answer = relevance.GenericRedirect()
		}
		s.cache.Store(question, semcache.StoreInput{
			Answer:  answer,
			Quality: 0.4,
			TTL:     redirectTTL,
		})
		return s.success(start, answer, nil, false)
	}

	if hit, ok := s.cache.Get(question); ok {
		logger.Debug("cache hit",
			zap.String("strategy", hit.Strategy),
			zap.Float64("similarity", hit.Similarity),
		)
		return s.success(start, hit.Entry.Answer, hit.Entry.Sources, true)
	}

	fragments, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		if appErr.IsNoRelevantData(err) {
			return s.failure(start, err, "I don't have specific information about that topic.")
		}
		logger.Error("retrieval failed", zap.Error(err))
		return s.failure(start, err, "I couldn't reach my knowledge base just now. Please try again in a moment.")
	}

	cls := s.classifier.Classify(question)
	messages := s.prompts.Build(question, fragments, cls, history)

	answer, err := s.generator.Generate(ctx, messages, cls)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return s.failure(start, err, "I couldn't put an answer together right now. Please try again shortly.")
	}

	sources := make([]model.Source, 0, len(fragments))
	for _, fragment := range fragments {
		sources = append(sources, model.Source{Title: fragment.Title, Relevance: fragment.Score})
	}
	quality := scoreQuality(answer, len(sources))
	s.cache.Store(question, semcache.StoreInput{
		Answer:         answer,
		Sources:        sources,
		Classification: &cls,
		Quality:        quality,
	})
	logger.Info("query answered",
		zap.String("type", string(cls.Type)),
		zap.Int("sources", len(sources)),
		zap.Float64("quality", quality),
	)
	return s.success(start, answer, sources, false)
}

// TestConnectivity probes the vector index and reports round-trip time and
// vector count.
func (s *Service) TestConnectivity(ctx context.Context) *model.ConnectivityReport {
	start := s.now()
	info, err := s.store.Info(ctx)
	elapsed := s.now().Sub(start).Milliseconds()
	if err != nil {
		return &model.ConnectivityReport{
			Success:        false,
			Message:        fmt.Sprintf("vector index unreachable: %v", err),
			ResponseTimeMs: elapsed,
		}
	}
	return &model.ConnectivityReport{
		Success:        true,
		Message:        "vector index reachable",
		VectorCount:    info.VectorCount,
		ResponseTimeMs: elapsed,
	}
}

func (s *Service) success(start time.Time, answer string, sources []model.Source, cached bool) *model.DigitalTwinResponse {
	return &model.DigitalTwinResponse{
		Success:     true,
		Answer:      answer,
		Sources:     sources,
		Cached:      cached,
		QueryTimeMs: s.now().Sub(start).Milliseconds(),
	}
}

func (s *Service) failure(start time.Time, err error, message string) *model.DigitalTwinResponse {
	if message == "" {
		message = err.Error()
	}
	return &model.DigitalTwinResponse{
		Success:     false,
		Error:       message,
		QueryTimeMs: s.now().Sub(start).Milliseconds(),
	}
}
