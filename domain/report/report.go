// Package report holds the student and progress-report aggregates.
package report

import (
	"strings"
	"time"
)

// PlaceholderDocument is embedded in place of an empty report so the
// embedding model never receives an empty document.
const PlaceholderDocument = "No detailed notes were recorded for this report."

// Student represents a tutored student.
type Student struct {
	id     int64
	userID int64
	name   string
}

// NewStudent creates a new Student.
func NewStudent(id, userID int64, name string) Student {
	return Student{
		id:     id,
		userID: userID,
		name:   name,
	}
}

// ID returns the student identifier.
func (s Student) ID() int64 { return s.id }

// UserID returns the owning user account identifier.
func (s Student) UserID() int64 { return s.userID }

// Name returns the student's display name.
func (s Student) Name() string { return s.name }

// Fields holds the mutable free-text fields of a progress report.
type Fields struct {
	LessonTopic     string
	Difficulty      string
	Milestone       string
	Notes           string
	Accomplishments string
	Improvements    string
}

// Report represents one tutoring progress report.
type Report struct {
	id        int64
	studentID int64
	date      time.Time
	fields    Fields
}

// NewReport creates a new Report.
func NewReport(id, studentID int64, date time.Time, fields Fields) Report {
	return Report{
		id:        id,
		studentID: studentID,
		date:      date,
		fields:    fields,
	}
}

// ID returns the report identifier.
func (r Report) ID() int64 { return r.id }

// StudentID returns the owning student identifier.
func (r Report) StudentID() int64 { return r.studentID }

// Date returns the lesson date.
func (r Report) Date() time.Time { return r.date }

// Fields returns the free-text fields.
func (r Report) Fields() Fields { return r.fields }

// WithFields returns a copy with the free-text fields replaced.
func (r Report) WithFields(fields Fields) Report {
	r.fields = fields
	return r
}

// Subject returns the text used as the embedding subject, currently the
// lesson topic.
func (r Report) Subject() string {
	return r.fields.LessonTopic
}

// EmbeddingDocument builds the text that gets embedded for this report.
// Each non-blank free-text field is rendered on its own labelled line.
// A report with no usable text yields PlaceholderDocument.
func (r Report) EmbeddingDocument() string {
	lines := make([]string, 0, 4)
	appendLine := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		lines = append(lines, label+": "+strings.TrimSpace(value))
	}

	appendLine("Lesson topic", r.fields.LessonTopic)
	appendLine("Notes", r.fields.Notes)
	appendLine("Accomplishments", r.fields.Accomplishments)
	appendLine("Improvements needed", r.fields.Improvements)

	if len(lines) == 0 {
		return PlaceholderDocument
	}
	return strings.Join(lines, "\n")
}
