package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sounditout/backend/domain/report"
)

func testReport(id, studentID int64, topic string) report.Report {
	return report.NewReport(id, studentID, time.Now().UTC(), report.Fields{
		LessonTopic: topic,
		Notes:       "notes for " + topic,
	})
}

func TestUpsertReportEmbedding(t *testing.T) {
	embeddings := &fakeEmbeddingStore{}
	ingestion := NewIngestion(&fakeEmbedder{}, embeddings, newFakeStudentStore(), newFakeReportStore(), nil)

	err := ingestion.UpsertReportEmbedding(context.Background(), 1, 2, "Fractions", "Struggled with mixed numbers")
	require.NoError(t, err)

	rows := embeddings.insertedRows()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].studentID)
	assert.Equal(t, int64(2), rows[0].reportID)
	assert.Equal(t, "Fractions", rows[0].subject)
	assert.Equal(t, "Struggled with mixed numbers", rows[0].content)
	assert.NotEmpty(t, rows[0].vector)
}

func TestUpsertReportEmbeddingEmbedderFailure(t *testing.T) {
	embeddings := &fakeEmbeddingStore{}
	ingestion := NewIngestion(&fakeEmbedder{fail: true}, embeddings, newFakeStudentStore(), newFakeReportStore(), nil)

	err := ingestion.UpsertReportEmbedding(context.Background(), 1, 2, "s", "c")
	assert.ErrorIs(t, err, ErrEmbedding)
	assert.Empty(t, embeddings.insertedRows())
}

func TestReindexStudentReports(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	reports := newFakeReportStore(
		testReport(1, 1, "fractions"),
		testReport(2, 1, "decimals"),
		testReport(3, 1, "percentages"),
		testReport(4, 2, "other student"),
	)
	embeddings := &fakeEmbeddingStore{}
	ingestion := NewIngestion(&fakeEmbedder{}, embeddings, students, reports, nil)

	count, err := ingestion.ReindexStudentReports(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Len(t, embeddings.insertedRows(), 3)
}

func TestReindexSkipsFailingReport(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	reports := newFakeReportStore(
		testReport(1, 1, "fractions"),
		testReport(2, 1, "decimals"),
		testReport(3, 1, "percentages"),
	)
	embeddings := &fakeEmbeddingStore{failFor: map[int64]bool{2: true}}
	ingestion := NewIngestion(&fakeEmbedder{}, embeddings, students, reports, nil)

	count, err := ingestion.ReindexStudentReports(context.Background(), 1)
	require.NoError(t, err)

	// One bad report never aborts the backfill.
	assert.Equal(t, 2, count)
	assert.Len(t, embeddings.insertedRows(), 2)
}

func TestReindexUnknownStudent(t *testing.T) {
	ingestion := NewIngestion(&fakeEmbedder{}, &fakeEmbeddingStore{}, newFakeStudentStore(), newFakeReportStore(), nil)

	_, err := ingestion.ReindexStudentReports(context.Background(), 42)
	assert.ErrorIs(t, err, report.ErrNotFound)
}

func TestPurgeStudent(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	embeddings := &fakeEmbeddingStore{}
	ingestion := NewIngestion(&fakeEmbedder{}, embeddings, students, newFakeReportStore(), nil)

	require.NoError(t, ingestion.UpsertReportEmbedding(context.Background(), 1, 1, "a", "x"))
	require.NoError(t, ingestion.UpsertReportEmbedding(context.Background(), 1, 2, "b", "y"))

	deleted, err := ingestion.PurgeStudent(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(2), deleted)
	assert.Empty(t, embeddings.insertedRows())
}

func TestPurgeUnknownStudent(t *testing.T) {
	ingestion := NewIngestion(&fakeEmbedder{}, &fakeEmbeddingStore{}, newFakeStudentStore(), newFakeReportStore(), nil)

	_, err := ingestion.PurgeStudent(context.Background(), 42)
	assert.ErrorIs(t, err, report.ErrNotFound)
}
