package models

import "time"

type LookupRecord struct {
	ID          string
	UserID      string
	Query       string
	ResolvedURL string
	Outcome     string
	CacheHit    bool
	LatencyMS   int
	CreatedAt   time.Time
}

type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type LookupStats struct {
	TotalLookups int          `json:"total_lookups"`
	NotFound     int          `json:"not_found"`
	CacheHits    int          `json:"cache_hits"`
	AvgLatencyMS float64      `json:"avg_latency_ms"`
	TopQueries   []QueryCount `json:"top_queries"`
}
