package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jasha9/digitaltwin/internal/ai"
)

// QueryResult mirrors what a hosted vector index returns: an id, a
// similarity score and free-form metadata.
type QueryResult struct {
	ID       string
	Score    float64
	Metadata map[string]interface{}
}

type IndexInfo struct {
	VectorCount int64
}

type Store interface {
	Query(ctx context.Context, text string, topK int, includeMetadata bool) ([]QueryResult, error)
	Info(ctx context.Context) (*IndexInfo, error)
}

// Deps carries collaborators a store implementation may need. The pgvector
// store embeds query text locally; upstash embeds server-side and ignores it.
type Deps struct {
	Embedder ai.IEmbedder
}

type Factory func(args interface{}, deps Deps) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(storeType string, args interface{}, deps Deps) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(storeType))
	if key == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported vector store type: %s", storeType)
	}
	return factory(args, deps)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("vector store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode vector store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vector store config: %w", err)
	}
	return nil
}
