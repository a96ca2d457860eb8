package model

// RetrievedFragment is a single profile chunk returned by the vector index.
// The ID carries a namespace prefix that identifies it as profile data;
// fragments without extractable content are dropped before use.
type RetrievedFragment struct {
	ID        string  `json:"id"`
	Score     float64 `json:"score"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	SourceTag string  `json:"source_tag"`
}
