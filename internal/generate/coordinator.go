package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jasha9/digitaltwin/internal/ai"
	"github.com/jasha9/digitaltwin/internal/model"
	appErr "github.com/jasha9/digitaltwin/internal/pkg/errors"
)

const (
	DefaultMaxRetries = 2
	DefaultRetryDelay = 500 * time.Millisecond
)

// Candidate is one model in the fallback chain: fast/cheap first, larger
// second, alternate provider last.
type Candidate struct {
	Name       string
	Provider   ai.IChatProvider
	Model      string
	MaxRetries int
	RetryDelay time.Duration
}

// Generation parameters per classified question type. Token budgets bound
// answer length: background/company answers get room for detail, general
// chit-chat stays short. A cost knob, not a correctness one.
var optionsByType = map[model.QuestionType]ai.Options{
	model.QuestionTypeTechnical:  {Temperature: 0.6, MaxTokens: 450},
	model.QuestionTypeBehavioral: {Temperature: 0.7, MaxTokens: 400},
	model.QuestionTypeCompany:    {Temperature: 0.7, MaxTokens: 350},
	model.QuestionTypeGeneral:    {Temperature: 0.7, MaxTokens: 250},
}

// Coordinator runs a two-dimensional retry: per-candidate retries absorb
// transient errors (rate limits, timeouts), the candidate chain absorbs a
// provider going down entirely.
type Coordinator struct {
	candidates []Candidate

	sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(candidates []Candidate) (*Coordinator, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("at least one generation candidate is required")
	}
	for i := range candidates {
		if candidates[i].MaxRetries <= 0 {
			candidates[i].MaxRetries = DefaultMaxRetries
		}
		if candidates[i].RetryDelay <= 0 {
			candidates[i].RetryDelay = DefaultRetryDelay
		}
		if candidates[i].Name == "" {
			candidates[i].Name = candidates[i].Model
		}
	}
	return &Coordinator{candidates: candidates, sleep: sleepContext}, nil
}

// Generate returns the first non-empty completion from the candidate chain.
// ErrGenerationExhausted is returned only when every candidate has failed
// every retry.
func (c *Coordinator) Generate(ctx context.Context, messages []ai.Message, cls model.ContextClassification) (string, error) {
	opts, ok := optionsByType[cls.Type]
	if !ok {
		opts = optionsByType[model.QuestionTypeGeneral]
	}
	logger := logutil.GetLogger(ctx)
	var lastErr error
	for _, candidate := range c.candidates {
		for attempt := 1; attempt <= candidate.MaxRetries; attempt++ {
			text, err := candidate.Provider.Complete(ctx, candidate.Model, messages, opts)
			if err == nil && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text), nil
			}
			if err == nil {
				err = fmt.Errorf("empty completion")
			}
			lastErr = fmt.Errorf("%s: %w: %w", candidate.Name, appErr.ErrGenerationFailed, err)
			logger.Warn("generation attempt failed",
				zap.String("candidate", candidate.Name),
				zap.String("model", candidate.Model),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if attempt < candidate.MaxRetries {
				// Linear per-candidate delay; fallback to the next
				// candidate happens without waiting.
				if err := c.sleep(ctx, candidate.RetryDelay*time.Duration(attempt)); err != nil {
					return "", err
				}
			}
		}
		logger.Warn("generation candidate exhausted, falling back",
			zap.String("candidate", candidate.Name),
		)
	}
	return "", fmt.Errorf("%w: %w", appErr.ErrGenerationExhausted, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
