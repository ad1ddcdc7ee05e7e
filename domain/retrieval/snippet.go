// Package retrieval holds the embedding store contract and the context
// filtering policy for retrieval-augmented generation.
package retrieval

import (
	"context"
	"time"
)

// Snippet is one ranked similarity-search result. Score is a cosine
// similarity style value (1 − distance), higher means closer.
type Snippet struct {
	id        int64
	studentID int64
	reportID  int64
	subject   string
	content   string
	createdAt time.Time
	score     float64
}

// NewSnippet creates a new Snippet.
func NewSnippet(id, studentID, reportID int64, subject, content string, createdAt time.Time, score float64) Snippet {
	return Snippet{
		id:        id,
		studentID: studentID,
		reportID:  reportID,
		subject:   subject,
		content:   content,
		createdAt: createdAt,
		score:     score,
	}
}

// ID returns the embedding row identifier.
func (s Snippet) ID() int64 { return s.id }

// StudentID returns the student identifier.
func (s Snippet) StudentID() int64 { return s.studentID }

// ReportID returns the source report identifier.
func (s Snippet) ReportID() int64 { return s.reportID }

// Subject returns the free-text subject, possibly empty.
func (s Snippet) Subject() string { return s.subject }

// Content returns the text that was embedded.
func (s Snippet) Content() string { return s.content }

// CreatedAt returns the store-assigned row timestamp.
func (s Snippet) CreatedAt() time.Time { return s.createdAt }

// Score returns the similarity score.
func (s Snippet) Score() float64 { return s.score }

// Store is the vector similarity store for report embeddings.
type Store interface {
	// Insert writes one embedding row for (studentID, reportID), replacing
	// any previous row for the same pair.
	Insert(ctx context.Context, studentID, reportID int64, subject, content string, vector []float64) error

	// SearchTopK returns up to k rows for the student ordered by descending
	// similarity to the query vector. A non-empty subjectFilter narrows rows
	// by case-insensitive substring match on subject.
	SearchTopK(ctx context.Context, studentID int64, vector []float64, k int, subjectFilter string) ([]Snippet, error)

	// DeleteAllForStudent removes every embedding row for the student and
	// returns the number of rows deleted.
	DeleteAllForStudent(ctx context.Context, studentID int64) (int64, error)
}
