package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Persona       PersonaConfig    `json:"persona"`
	AdminToken    string           `json:"admin_token"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	RateLimitMS   int              `json:"rate_limit_ms"`
	VectorStore   TypedConfig      `json:"vector_store"`
	KVStore       TypedConfig      `json:"kv_store"`
	AI            AIConfig         `json:"ai"`
	Cache         CacheConfig      `json:"cache"`
	Retrieval     RetrievalConfig  `json:"retrieval"`
}

type TypedConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type PersonaConfig struct {
	Name string `json:"name"`
}

type AIConfig struct {
	Providers map[string]interface{} `json:"providers"`
	Models    []ModelConfig          `json:"models"`
	Embedding *EmbeddingConfig       `json:"embedding"`
}

type ModelConfig struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	MaxRetries   int    `json:"max_retries"`
	RetryDelayMS int    `json:"retry_delay_ms"`
}

type EmbeddingConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type CacheConfig struct {
	Capacity            int     `json:"capacity"`
	TTLHours            int     `json:"ttl_hours"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	SnapshotKey         string  `json:"snapshot_key"`
	SweepSpec           string  `json:"sweep_spec"`
	SnapshotSpec        string  `json:"snapshot_spec"`
}

type RetrievalConfig struct {
	TopK            int    `json:"top_k"`
	MaxAttempts     int    `json:"max_attempts"`
	BackoffMS       int    `json:"backoff_ms"`
	NamespacePrefix string `json:"namespace_prefix"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.VectorStore.Type == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	if len(cfg.AI.Models) == 0 {
		return nil, fmt.Errorf("ai.models requires at least one entry")
	}
	for i, model := range cfg.AI.Models {
		if model.Provider == "" || model.Model == "" {
			return nil, fmt.Errorf("ai.models[%d] provider/model are required", i)
		}
		if _, ok := cfg.AI.Providers[model.Provider]; !ok {
			return nil, fmt.Errorf("ai.models[%d] references unconfigured provider %q", i, model.Provider)
		}
	}
	if cfg.VectorStore.Type == "pgvector" && cfg.AI.Embedding == nil {
		return nil, fmt.Errorf("ai.embedding is required for the pgvector store")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.KVStore.Type == "" {
		cfg.KVStore.Type = "memory"
	}
	if cfg.Cache.SweepSpec == "" {
		cfg.Cache.SweepSpec = "*/30 * * * *"
	}
	if cfg.Cache.SnapshotSpec == "" {
		cfg.Cache.SnapshotSpec = "0 * * * *"
	}
	return &cfg, nil
}
