package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/provider"
	"github.com/sounditout/backend/internal/database"
)

// SQL specific to pgvector (extension, schema, cosine search).
const (
	pgvCreateExtension = `CREATE EXTENSION IF NOT EXISTS vector`

	pgvCreateTableTemplate = `
CREATE TABLE IF NOT EXISTS report_embeddings (
    id BIGSERIAL PRIMARY KEY,
    student_id BIGINT NOT NULL,
    report_id BIGINT NOT NULL,
    subject TEXT,
    content TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    embedding VECTOR(%d) NOT NULL
)`

	// One row per (student, report): reindexing replaces the prior
	// embedding instead of accumulating stale duplicates.
	pgvCreateUniqueIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS report_embeddings_student_report_idx
ON report_embeddings (student_id, report_id)`

	pgvCreateSearchIndex = `
CREATE INDEX IF NOT EXISTS report_embeddings_embedding_idx
ON report_embeddings
USING ivfflat (embedding vector_cosine_ops)
WITH (lists = 100)`

	pgvInsert = `
INSERT INTO report_embeddings (student_id, report_id, subject, content, embedding)
VALUES (?, ?, ?, ?, ?::vector)
ON CONFLICT (student_id, report_id) DO UPDATE
SET subject = EXCLUDED.subject,
    content = EXCLUDED.content,
    embedding = EXCLUDED.embedding,
    created_at = now()`

	pgvSearch = `
SELECT id, student_id, report_id, subject, content, created_at,
       1 - (embedding <=> ?::vector) AS score
FROM report_embeddings
WHERE student_id = ?
ORDER BY embedding <=> ?::vector
LIMIT ?`

	pgvSearchWithSubject = `
SELECT id, student_id, report_id, subject, content, created_at,
       1 - (embedding <=> ?::vector) AS score
FROM report_embeddings
WHERE student_id = ?
  AND subject ILIKE '%' || ? || '%'
ORDER BY embedding <=> ?::vector
LIMIT ?`

	pgvDeleteByStudent = `DELETE FROM report_embeddings WHERE student_id = ?`
)

// ErrPgvectorInitializationFailed indicates pgvector initialization failed.
var ErrPgvectorInitializationFailed = errors.New("failed to initialize pgvector store")

// embeddingRow is the named scan target for similarity search rows, so the
// rest of the system never indexes result tuples by position.
type embeddingRow struct {
	ID        int64     `gorm:"column:id"`
	StudentID int64     `gorm:"column:student_id"`
	ReportID  int64     `gorm:"column:report_id"`
	Subject   string    `gorm:"column:subject"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Score     float64   `gorm:"column:score"`
}

func (r embeddingRow) toSnippet() retrieval.Snippet {
	return retrieval.NewSnippet(r.ID, r.StudentID, r.ReportID, r.Subject, r.Content, r.CreatedAt, r.Score)
}

// PgvectorEmbeddingStore implements retrieval.Store on PostgreSQL with the
// pgvector extension.
type PgvectorEmbeddingStore struct {
	db          database.Database
	embedder    provider.Embedder
	logger      *slog.Logger
	initialized bool
	mu          sync.Mutex
}

// NewPgvectorEmbeddingStore creates a PgvectorEmbeddingStore.
func NewPgvectorEmbeddingStore(db database.Database, embedder provider.Embedder, logger *slog.Logger) *PgvectorEmbeddingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgvectorEmbeddingStore{
		db:       db,
		embedder: embedder,
		logger:   logger,
	}
}

func (s *PgvectorEmbeddingStore) initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	db := s.db.Session(ctx)
	if err := db.Exec(pgvCreateExtension).Error; err != nil {
		return errors.Join(ErrPgvectorInitializationFailed, err)
	}

	// The table needs a fixed vector dimension, which only the embedding
	// model knows. Probe it once.
	resp, err := s.embedder.Embed(ctx, provider.NewEmbeddingRequest([]string{"dimension probe"}))
	if err != nil {
		return errors.Join(ErrPgvectorInitializationFailed, fmt.Errorf("probe embedding dimension: %w", err))
	}
	embeddings := resp.Embeddings()
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return errors.Join(ErrPgvectorInitializationFailed, errors.New("failed to obtain embedding dimension from provider"))
	}
	dimension := len(embeddings[0])

	if err := db.Exec(fmt.Sprintf(pgvCreateTableTemplate, dimension)).Error; err != nil {
		return errors.Join(ErrPgvectorInitializationFailed, err)
	}
	if err := db.Exec(pgvCreateUniqueIndex).Error; err != nil {
		return errors.Join(ErrPgvectorInitializationFailed, err)
	}
	if err := db.Exec(pgvCreateSearchIndex).Error; err != nil {
		s.logger.Warn("failed to create ivfflat index (may already exist)", "error", err)
	}

	s.initialized = true
	return nil
}

// Insert writes one embedding row, replacing the previous row for the same
// (student, report) pair.
func (s *PgvectorEmbeddingStore) Insert(ctx context.Context, studentID, reportID int64, subject, content string, vector []float64) error {
	if err := s.initialize(ctx); err != nil {
		return err
	}

	literal := database.NewPgVector(vector).String()
	err := s.db.Session(ctx).Exec(pgvInsert, studentID, reportID, subject, content, literal).Error
	if err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}

// SearchTopK performs cosine-distance similarity search for the student,
// returning rows with score = 1 − distance in descending score order.
func (s *PgvectorEmbeddingStore) SearchTopK(ctx context.Context, studentID int64, vector []float64, k int, subjectFilter string) ([]retrieval.Snippet, error) {
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []retrieval.Snippet{}, nil
	}

	literal := database.NewPgVector(vector).String()

	var rows []embeddingRow
	var err error
	if subjectFilter != "" {
		err = s.db.Session(ctx).Raw(pgvSearchWithSubject, literal, studentID, subjectFilter, literal, k).Scan(&rows).Error
	} else {
		err = s.db.Session(ctx).Raw(pgvSearch, literal, studentID, literal, k).Scan(&rows).Error
	}
	if err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}

	snippets := make([]retrieval.Snippet, len(rows))
	for i, row := range rows {
		snippets[i] = row.toSnippet()
	}
	return snippets, nil
}

// DeleteAllForStudent removes every embedding row for the student.
func (s *PgvectorEmbeddingStore) DeleteAllForStudent(ctx context.Context, studentID int64) (int64, error) {
	if err := s.initialize(ctx); err != nil {
		return 0, err
	}

	result := s.db.Session(ctx).Exec(pgvDeleteByStudent, studentID)
	if result.Error != nil {
		return 0, fmt.Errorf("delete embeddings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

var _ retrieval.Store = (*PgvectorEmbeddingStore)(nil)
