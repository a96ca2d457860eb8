package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/jasha9/digitaltwin/internal/model"
	appErr "github.com/jasha9/digitaltwin/internal/pkg/errors"
	"github.com/jasha9/digitaltwin/internal/vectorstore"
)

const (
	DefaultTopK        = 3
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second
	// The index mixes namespaces; over-fetch so enough profile fragments
	// survive the namespace filter.
	overfetchFactor = 3
)

type Config struct {
	TopK            int
	MaxAttempts     int
	Backoff         time.Duration
	NamespacePrefix string
}

// Coordinator wraps the vector store with retry, backoff and result
// filtering. Each attempt is a fresh query; partial results are never
// reused across attempts.
type Coordinator struct {
	store vectorstore.Store
	cfg   Config

	sleep func(ctx context.Context, d time.Duration) error
}

func NewCoordinator(store vectorstore.Store, cfg Config) *Coordinator {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.NamespacePrefix == "" {
		cfg.NamespacePrefix = "dt-"
	}
	return &Coordinator{store: store, cfg: cfg, sleep: sleepContext}
}

// Retrieve queries the vector index for profile fragments relevant to the
// question. Transient failures are retried with growing backoff; an empty
// result set after filtering is reported as ErrNoRelevantData and never
// retried, since retrying cannot fix an empty corpus.
func (c *Coordinator) Retrieve(ctx context.Context, question string) ([]model.RetrievedFragment, error) {
	logger := logutil.GetLogger(ctx)
	var results []vectorstore.QueryResult
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		var err error
		results, err = c.store.Query(ctx, question, c.cfg.TopK*overfetchFactor, true)
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = err
		logger.Warn("vector query failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.MaxAttempts),
			zap.Error(err),
		)
		if attempt < c.cfg.MaxAttempts {
			if err := c.sleep(ctx, c.cfg.Backoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrVectorQueryFailed, lastErr)
	}

	fragments := c.filter(results)
	if len(fragments) == 0 {
		return nil, appErr.ErrNoRelevantData
	}
	return fragments, nil
}

// filter keeps only namespace-qualified fragments with extractable content
// and trims the survivors to topK.
func (c *Coordinator) filter(results []vectorstore.QueryResult) []model.RetrievedFragment {
	fragments := make([]model.RetrievedFragment, 0, c.cfg.TopK)
	for _, result := range results {
		if !strings.HasPrefix(result.ID, c.cfg.NamespacePrefix) {
			continue
		}
		content := metadataString(result.Metadata, "content")
		if content == "" {
			continue
		}
		title := metadataString(result.Metadata, "title")
		if title == "" {
			title = "Information"
		}
		fragments = append(fragments, model.RetrievedFragment{
			ID:        result.ID,
			Score:     clamp01(result.Score),
			Title:     title,
			Content:   content,
			SourceTag: metadataString(result.Metadata, "source"),
		})
		if len(fragments) >= c.cfg.TopK {
			break
		}
	}
	return fragments
}

func metadataString(metadata map[string]interface{}, key string) string {
	if metadata == nil {
		return ""
	}
	value, _ := metadata[key].(string)
	return strings.TrimSpace(value)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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
