package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTaskTimeout bounds one background embedding task, covering the
// model call and the store write.
const DefaultTaskTimeout = 2 * time.Minute

// Enqueuer dispatches a report embedding task without blocking the caller.
type Enqueuer interface {
	// Enqueue schedules the task and reports whether it was accepted.
	// A full queue drops the task; the report write proceeds either way.
	Enqueue(studentID, reportID int64, subject, content string) bool
}

type embedTask struct {
	studentID int64
	reportID  int64
	subject   string
	content   string
}

// Pool runs report embedding tasks on a fixed set of workers fed by a
// bounded queue, keeping AI work off the request path. Task failures are
// logged with the student and report IDs (enough to drive a manual reindex)
// and swallowed.
//
// Ordering across tasks is not guaranteed: rapid create/update pairs for the
// same report may land out of order when more than one worker is running.
// Callers needing strict ordering must serialize updates per report.
type Pool struct {
	ingestion *Ingestion
	tasks     chan embedTask
	workers   int
	timeout   time.Duration
	logger    *slog.Logger
	group     *errgroup.Group
}

// NewPool creates a Pool with the given worker count and queue capacity.
func NewPool(ingestion *Ingestion, workers, capacity int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		ingestion: ingestion,
		tasks:     make(chan embedTask, capacity),
		workers:   workers,
		timeout:   DefaultTaskTimeout,
		logger:    logger,
	}
}

// Start launches the workers. Workers run until Close is called and the
// queue has drained, or until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	p.group = group

	for i := 0; i < p.workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case t, ok := <-p.tasks:
					if !ok {
						return nil
					}
					p.run(ctx, t)
				}
			}
		})
	}
}

// Enqueue schedules an embedding task. It never blocks: when the queue is
// full the task is dropped with a warning, honoring the contract that the
// triggering report write must not be delayed.
func (p *Pool) Enqueue(studentID, reportID int64, subject, content string) bool {
	select {
	case p.tasks <- embedTask{studentID: studentID, reportID: reportID, subject: subject, content: content}:
		return true
	default:
		p.logger.Warn("embedding queue full, dropping task",
			"student_id", studentID,
			"report_id", reportID,
		)
		return false
	}
}

// Close stops accepting tasks and waits for queued work to drain.
func (p *Pool) Close() error {
	close(p.tasks)
	if p.group == nil {
		return nil
	}
	return p.group.Wait()
}

func (p *Pool) run(ctx context.Context, t embedTask) {
	taskCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.ingestion.UpsertReportEmbedding(taskCtx, t.studentID, t.reportID, t.subject, t.content)
	if err != nil {
		p.logger.Warn("background embedding failed",
			"student_id", t.studentID,
			"report_id", t.reportID,
			"error", err,
		)
	}
}

var _ Enqueuer = (*Pool)(nil)
