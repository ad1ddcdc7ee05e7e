// Package plan holds the weekly study plan aggregate.
package plan

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// Task is one entry of a weekly plan's task list. It mirrors the JSON
// schema the chat model is instructed to produce.
type Task struct {
	Day   string   `json:"day"`
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

// Plan represents one generated weekly study plan.
type Plan struct {
	id        int64
	studentID int64
	weekStart time.Time
	goals     string
	tasks     datatypes.JSON
}

// NewPlan creates a new Plan.
func NewPlan(id, studentID int64, weekStart time.Time, goals string, tasks datatypes.JSON) Plan {
	return Plan{
		id:        id,
		studentID: studentID,
		weekStart: weekStart,
		goals:     goals,
		tasks:     tasks,
	}
}

// ID returns the plan identifier.
func (p Plan) ID() int64 { return p.id }

// StudentID returns the owning student identifier.
func (p Plan) StudentID() int64 { return p.studentID }

// WeekStart returns the Monday the plan week starts on.
func (p Plan) WeekStart() time.Time { return p.weekStart }

// Goals returns the raw goal text the plan was generated from.
func (p Plan) Goals() string { return p.goals }

// Tasks returns the validated task array as raw JSON.
func (p Plan) Tasks() datatypes.JSON { return p.tasks }

// WeekStart returns the Monday of the ISO week containing now, as a UTC
// date at midnight. Plans always anchor to this regardless of the caller's
// timezone.
func WeekStart(now time.Time) time.Time {
	t := now.UTC()
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// Store persists generated plans.
type Store interface {
	// Save inserts the plan and returns it with its assigned ID.
	Save(ctx context.Context, p Plan) (Plan, error)

	// ByStudent returns all plans for a student, newest week first.
	ByStudent(ctx context.Context, studentID int64) ([]Plan, error)
}
