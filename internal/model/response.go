package model

type Source struct {
	Title     string  `json:"title"`
	Relevance float64 `json:"relevance"`
}

type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DigitalTwinResponse is the externally visible query result. It is
// immutable once constructed; failures are carried in Error with
// Success=false instead of being propagated as Go errors.
type DigitalTwinResponse struct {
	Success     bool     `json:"success"`
	Answer      string   `json:"answer,omitempty"`
	Sources     []Source `json:"sources,omitempty"`
	Cached      bool     `json:"cached"`
	QueryTimeMs int64    `json:"query_time_ms"`
	Error       string   `json:"error,omitempty"`
}

type ConnectivityReport struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	VectorCount    int64  `json:"vector_count,omitempty"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}
