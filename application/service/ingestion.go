package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/provider"
)

// Ingestion builds and persists report embeddings. Callers on the request
// path should go through Pool.Enqueue instead of calling
// UpsertReportEmbedding directly; embeddings are an enhancement and must
// never block or fail a report write.
type Ingestion struct {
	embedder   provider.Embedder
	embeddings retrieval.Store
	students   report.StudentStore
	reports    report.Store
	logger     *slog.Logger
}

// NewIngestion creates an Ingestion service.
func NewIngestion(
	embedder provider.Embedder,
	embeddings retrieval.Store,
	students report.StudentStore,
	reports report.Store,
	logger *slog.Logger,
) *Ingestion {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestion{
		embedder:   embedder,
		embeddings: embeddings,
		students:   students,
		reports:    reports,
		logger:     logger,
	}
}

// UpsertReportEmbedding embeds one report document and writes it to the
// embedding store, replacing any prior row for the same (student, report)
// pair. Subject and content may be empty but never null-like: empty strings
// are embedded as-is within the composed document.
func (s *Ingestion) UpsertReportEmbedding(ctx context.Context, studentID, reportID int64, subject, content string) error {
	doc := fmt.Sprintf("Subject: %s\n\n%s\n", subject, content)

	resp, err := s.embedder.Embed(ctx, provider.NewEmbeddingRequest([]string{doc}))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	vectors := resp.Embeddings()
	if len(vectors) != 1 {
		return fmt.Errorf("%w: expected 1 vector, got %d", ErrEmbedding, len(vectors))
	}

	if err := s.embeddings.Insert(ctx, studentID, reportID, subject, content, vectors[0]); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

// ReindexStudentReports rebuilds embeddings for every report of a student.
// Per-report failures are logged and skipped so one bad report cannot abort
// a backfill. Returns the number of successful upserts.
func (s *Ingestion) ReindexStudentReports(ctx context.Context, studentID int64) (int, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return 0, err
	}

	reports, err := s.reports.ByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("list reports for reindex: %w", err)
	}

	count := 0
	for _, r := range reports {
		err := s.UpsertReportEmbedding(ctx, studentID, r.ID(), r.Subject(), r.EmbeddingDocument())
		if err != nil {
			s.logger.Warn("reindex: skipping report",
				"student_id", studentID,
				"report_id", r.ID(),
				"error", err,
			)
			continue
		}
		count++
	}

	s.logger.Info("reindex complete",
		"student_id", studentID,
		"reindexed", count,
		"total", len(reports),
	)
	return count, nil
}

// PurgeStudent deletes all embedding rows for a student. Used before a full
// reindex to guarantee no stale rows survive.
func (s *Ingestion) PurgeStudent(ctx context.Context, studentID int64) (int64, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return 0, err
	}
	return s.embeddings.DeleteAllForStudent(ctx, studentID)
}
