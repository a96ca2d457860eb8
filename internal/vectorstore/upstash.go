package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErr "github.com/jasha9/digitaltwin/internal/pkg/errors"
)

type upstashConfig struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// upstashStore talks to an Upstash Vector index over its REST API. The
// index embeds raw text server-side, so queries carry text, not vectors.
type upstashStore struct {
	url    string
	token  string
	client *http.Client
}

type upstashQueryRequest struct {
	Data            string `json:"data"`
	TopK            int    `json:"topK"`
	IncludeMetadata bool   `json:"includeMetadata"`
}

type upstashQueryResult struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

type upstashQueryResponse struct {
	Result []upstashQueryResult `json:"result"`
}

type upstashInfoResponse struct {
	Result struct {
		VectorCount int64 `json:"vectorCount"`
	} `json:"result"`
}

func init() {
	Register("upstash", createUpstashStore)
}

func createUpstashStore(args interface{}, _ Deps) (Store, error) {
	cfg := &upstashConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(cfg.URL)
	token := strings.TrimSpace(cfg.Token)
	if url == "" || token == "" {
		return nil, fmt.Errorf("upstash url/token: %w", appErr.ErrMissingCredentials)
	}
	return &upstashStore{
		url:    strings.TrimRight(url, "/"),
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *upstashStore) Query(ctx context.Context, text string, topK int, includeMetadata bool) ([]QueryResult, error) {
	reqBody := upstashQueryRequest{
		Data:            text,
		TopK:            topK,
		IncludeMetadata: includeMetadata,
	}
	var out upstashQueryResponse
	if err := s.call(ctx, "/query-data", reqBody, &out); err != nil {
		return nil, err
	}
	results := make([]QueryResult, 0, len(out.Result))
	for _, item := range out.Result {
		results = append(results, QueryResult{
			ID:       item.ID,
			Score:    item.Score,
			Metadata: item.Metadata,
		})
	}
	return results, nil
}

func (s *upstashStore) Info(ctx context.Context) (*IndexInfo, error) {
	var out upstashInfoResponse
	if err := s.call(ctx, "/info", nil, &out); err != nil {
		return nil, err
	}
	return &IndexInfo{VectorCount: out.Result.VectorCount}, nil
}

func (s *upstashStore) call(ctx context.Context, path string, body interface{}, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstash request failed: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
