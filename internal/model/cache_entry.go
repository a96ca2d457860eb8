package model

// CacheEntry is owned exclusively by the semantic cache. Access metadata
// (LastAccessedAt, HitCount) is mutated in place on every hit; everything
// else is fixed at store time. Timestamps are unix milliseconds.
type CacheEntry struct {
	ID                 string                 `json:"id"`
	NormalizedQuestion string                 `json:"normalized_question"`
	Answer             string                 `json:"answer"`
	Sources            []Source               `json:"sources,omitempty"`
	Classification     *ContextClassification `json:"classification,omitempty"`
	Topics             []string               `json:"topics,omitempty"`
	Quality            float64                `json:"quality"`
	HitCount           int                    `json:"hit_count"`
	CreatedAt          int64                  `json:"created_at"`
	LastAccessedAt     int64                  `json:"last_accessed_at"`
	ExpiresAt          int64                  `json:"expires_at"`
}

func (e *CacheEntry) Expired(nowMs int64) bool {
	return e.ExpiresAt > 0 && nowMs >= e.ExpiresAt
}
