package model

// QueryRequest represents request for POST /query
type QueryRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id,omitempty"`
}

// YieldResult is one formatted yield entry of a query answer
type YieldResult struct {
	Chain      string  `json:"chain"`
	Project    string  `json:"project"`
	Symbol     string  `json:"symbol"`
	TVLUsd     int64   `json:"tvlUsd"`
	APYBase    float64 `json:"apyBase"`
	Stablecoin bool    `json:"stablecoin"`
}

// QueryResponse represents response for POST /query
type QueryResponse struct {
	Response       []YieldResult `json:"response"`
	ThreadID       string        `json:"thread_id"`
	ProcessingTime float64       `json:"processing_time"` // seconds
}

// ThreadPoolInfo describes the agent worker pool
type ThreadPoolInfo struct {
	MaxWorkers    int `json:"max_workers"`
	ActiveThreads int `json:"active_threads"`
}

// HealthResponse represents response for GET /health
type HealthResponse struct {
	Status         string         `json:"status"`
	ThreadPoolInfo ThreadPoolInfo `json:"thread_pool_info"`
}
