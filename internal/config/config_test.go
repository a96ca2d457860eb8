package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `{
	"port": 8080,
	"vector_store": {"type": "upstash", "data": {"url": "https://x", "token": "t"}},
	"ai": {
		"providers": {"groq": {"api_key": "k"}},
		"models": [{"provider": "groq", "model": "llama-3.1-8b-instant"}]
	}
}`

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "upstash", cfg.VectorStore.Type)
	require.Equal(t, "memory", cfg.KVStore.Type)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.NotEmpty(t, cfg.Cache.SweepSpec)
	require.NotEmpty(t, cfg.Cache.SnapshotSpec)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing port", `{"vector_store": {"type": "upstash"}, "ai": {"providers": {"groq": {}}, "models": [{"provider": "groq", "model": "m"}]}}`},
		{"missing vector store", `{"port": 8080, "ai": {"providers": {"groq": {}}, "models": [{"provider": "groq", "model": "m"}]}}`},
		{"no models", `{"port": 8080, "vector_store": {"type": "upstash"}, "ai": {"providers": {"groq": {}}}}`},
		{"unconfigured provider", `{"port": 8080, "vector_store": {"type": "upstash"}, "ai": {"providers": {}, "models": [{"provider": "groq", "model": "m"}]}}`},
		{"pgvector without embedding", `{"port": 8080, "vector_store": {"type": "pgvector"}, "ai": {"providers": {"groq": {}}, "models": [{"provider": "groq", "model": "m"}]}}`},
		{"bad json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
