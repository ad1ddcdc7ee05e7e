package report

import (
	"context"
	"errors"
)

// ErrNotFound indicates the referenced student or report does not exist.
var ErrNotFound = errors.New("not found")

// StudentStore persists students.
type StudentStore interface {
	// Get returns the student with the given ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (Student, error)

	// GetByUserID returns the student owned by the given user account,
	// or ErrNotFound.
	GetByUserID(ctx context.Context, userID int64) (Student, error)

	// Save inserts or updates a student and returns it with its assigned ID.
	Save(ctx context.Context, student Student) (Student, error)
}

// Store persists progress reports.
type Store interface {
	// Get returns the report with the given ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (Report, error)

	// ByStudent returns all reports for a student, newest first.
	ByStudent(ctx context.Context, studentID int64) ([]Report, error)

	// Save inserts or updates a report and returns it with its assigned ID.
	Save(ctx context.Context, r Report) (Report, error)

	// Delete removes the report with the given ID, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
}
