package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sounditout/backend/domain/report"
)

// recordingEnqueuer captures Enqueue calls without running anything.
type recordingEnqueuer struct {
	calls  []insertedEmbedding
	accept bool
}

func (e *recordingEnqueuer) Enqueue(studentID, reportID int64, subject, content string) bool {
	e.calls = append(e.calls, insertedEmbedding{
		studentID: studentID,
		reportID:  reportID,
		subject:   subject,
		content:   content,
	})
	return e.accept
}

func TestCreateReportSchedulesEmbedding(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	enqueuer := &recordingEnqueuer{accept: true}
	svc := NewReports(students, newFakeReportStore(), enqueuer, nil)

	saved, err := svc.Create(context.Background(), 1, report.Fields{
		LessonTopic: "Fractions",
		Notes:       "Good progress",
	})
	require.NoError(t, err)

	assert.NotZero(t, saved.ID())
	require.Len(t, enqueuer.calls, 1)
	assert.Equal(t, int64(1), enqueuer.calls[0].studentID)
	assert.Equal(t, saved.ID(), enqueuer.calls[0].reportID)
	assert.Equal(t, "Fractions", enqueuer.calls[0].subject)
	assert.Contains(t, enqueuer.calls[0].content, "Lesson topic: Fractions")
	assert.Contains(t, enqueuer.calls[0].content, "Notes: Good progress")
}

func TestCreateReportUnknownStudent(t *testing.T) {
	enqueuer := &recordingEnqueuer{accept: true}
	svc := NewReports(newFakeStudentStore(), newFakeReportStore(), enqueuer, nil)

	_, err := svc.Create(context.Background(), 42, report.Fields{})
	assert.ErrorIs(t, err, report.ErrNotFound)
	assert.Empty(t, enqueuer.calls)
}

func TestCreateReportSucceedsWhenQueueRejects(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	enqueuer := &recordingEnqueuer{accept: false}
	svc := NewReports(students, newFakeReportStore(), enqueuer, nil)

	saved, err := svc.Create(context.Background(), 1, report.Fields{Notes: "n"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID())
}

func TestCreateReportSucceedsWhenEmbedderDown(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	reports := newFakeReportStore()
	embeddings := &fakeEmbeddingStore{}
	ingestion := NewIngestion(&fakeEmbedder{fail: true}, embeddings, students, reports, nil)
	pool := NewPool(ingestion, 1, 10, nil)
	pool.Start(context.Background())
	svc := NewReports(students, reports, pool, nil)

	saved, err := svc.Create(context.Background(), 1, report.Fields{Notes: "n"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID())

	require.NoError(t, pool.Close())
	assert.Empty(t, embeddings.insertedRows())

	// The write survived the embedding failure.
	got, err := svc.Get(context.Background(), saved.ID())
	require.NoError(t, err)
	assert.Equal(t, saved.ID(), got.ID())
}

func TestUpdateReportSchedulesReembedding(t *testing.T) {
	students := newFakeStudentStore(report.NewStudent(1, 10, "Ada"))
	reports := newFakeReportStore(testReport(7, 1, "fractions"))
	enqueuer := &recordingEnqueuer{accept: true}
	svc := NewReports(students, reports, enqueuer, nil)

	updated, err := svc.Update(context.Background(), 7, report.Fields{LessonTopic: "Decimals"})
	require.NoError(t, err)

	assert.Equal(t, "Decimals", updated.Fields().LessonTopic)
	require.Len(t, enqueuer.calls, 1)
	assert.Equal(t, int64(7), enqueuer.calls[0].reportID)
	assert.Equal(t, "Decimals", enqueuer.calls[0].subject)
}

func TestUpdateReportNotFound(t *testing.T) {
	svc := NewReports(newFakeStudentStore(), newFakeReportStore(), &recordingEnqueuer{accept: true}, nil)

	_, err := svc.Update(context.Background(), 404, report.Fields{})
	assert.ErrorIs(t, err, report.ErrNotFound)
}

func TestDeleteReport(t *testing.T) {
	reports := newFakeReportStore(testReport(3, 1, "fractions"))
	svc := NewReports(newFakeStudentStore(), reports, &recordingEnqueuer{accept: true}, nil)

	require.NoError(t, svc.Delete(context.Background(), 3))

	_, err := svc.Get(context.Background(), 3)
	assert.ErrorIs(t, err, report.ErrNotFound)
}
