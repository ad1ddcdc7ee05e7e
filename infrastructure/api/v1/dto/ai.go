// Package dto defines the request and response shapes of the v1 API.
package dto

import (
	"encoding/json"
	"time"
)

// UpsertEmbeddingRequest is the body of POST /ai/reports/{reportID}/embed.
type UpsertEmbeddingRequest struct {
	// Subject is optional free text, e.g. the lesson topic.
	Subject string `json:"subject"`
	// Content is the report text to embed.
	Content string `json:"content"`
}

// SearchResult is one ranked semantic search match.
type SearchResult struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	ReportID  int64     `json:"report_id"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Score     float64   `json:"score"`
}

// SearchResponse is the body of GET /ai/search.
type SearchResponse struct {
	StudentID int64          `json:"student_id"`
	Query     string         `json:"query"`
	K         int            `json:"k"`
	Results   []SearchResult `json:"results"`
}

// PlanResponse is the body of GET /ai/study-plan.
type PlanResponse struct {
	ID        int64           `json:"id"`
	StudentID int64           `json:"student_id"`
	WeekStart string          `json:"week_start"`
	Goals     string          `json:"goals"`
	Tasks     json.RawMessage `json:"tasks"`
}

// ReindexResponse is the body of POST /admin/ai/reindex.
type ReindexResponse struct {
	StudentID int64 `json:"student_id"`
	Reindexed int   `json:"reindexed"`
}

// PurgeReindexResponse is the body of POST /admin/ai/purge-and-reindex.
type PurgeReindexResponse struct {
	StudentID int64 `json:"student_id"`
	Deleted   int64 `json:"deleted"`
	Reindexed int   `json:"reindexed"`
}
