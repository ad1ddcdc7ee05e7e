// Package persistence provides database storage implementations.
package persistence

import (
	"time"

	"gorm.io/datatypes"

	"github.com/sounditout/backend/domain/plan"
	"github.com/sounditout/backend/domain/report"
)

// StudentEntity is the GORM model for students.
type StudentEntity struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	UserID int64  `gorm:"column:user_id;index"`
	Name   string `gorm:"column:name"`
}

// TableName returns the table name for StudentEntity.
func (StudentEntity) TableName() string { return "students" }

func (e StudentEntity) toDomain() report.Student {
	return report.NewStudent(e.ID, e.UserID, e.Name)
}

func studentEntity(s report.Student) StudentEntity {
	return StudentEntity{
		ID:     s.ID(),
		UserID: s.UserID(),
		Name:   s.Name(),
	}
}

// ReportEntity is the GORM model for progress reports.
type ReportEntity struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	StudentID       int64     `gorm:"column:student_id;index;not null"`
	Date            time.Time `gorm:"column:date"`
	LessonTopic     string    `gorm:"column:lesson_topic"`
	Difficulty      string    `gorm:"column:difficulty"`
	Milestone       string    `gorm:"column:milestone"`
	Notes           string    `gorm:"column:notes;type:text"`
	Accomplishments string    `gorm:"column:accomplishments;type:text"`
	Improvements    string    `gorm:"column:improvements_needed;type:text"`
}

// TableName returns the table name for ReportEntity.
func (ReportEntity) TableName() string { return "progress_reports" }

func (e ReportEntity) toDomain() report.Report {
	return report.NewReport(e.ID, e.StudentID, e.Date, report.Fields{
		LessonTopic:     e.LessonTopic,
		Difficulty:      e.Difficulty,
		Milestone:       e.Milestone,
		Notes:           e.Notes,
		Accomplishments: e.Accomplishments,
		Improvements:    e.Improvements,
	})
}

func reportEntity(r report.Report) ReportEntity {
	f := r.Fields()
	return ReportEntity{
		ID:              r.ID(),
		StudentID:       r.StudentID(),
		Date:            r.Date(),
		LessonTopic:     f.LessonTopic,
		Difficulty:      f.Difficulty,
		Milestone:       f.Milestone,
		Notes:           f.Notes,
		Accomplishments: f.Accomplishments,
		Improvements:    f.Improvements,
	}
}

// PlanEntity is the GORM model for study plans. Tasks holds the validated
// task array as a JSON document (jsonb on PostgreSQL), not individually
// indexed fields.
type PlanEntity struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	StudentID int64          `gorm:"column:student_id;index;not null"`
	WeekStart time.Time      `gorm:"column:week_start;not null"`
	Goals     string         `gorm:"column:goals;type:text"`
	Tasks     datatypes.JSON `gorm:"column:tasks;not null"`
}

// TableName returns the table name for PlanEntity.
func (PlanEntity) TableName() string { return "study_plans" }

func (e PlanEntity) toDomain() plan.Plan {
	return plan.NewPlan(e.ID, e.StudentID, e.WeekStart, e.Goals, e.Tasks)
}

func planEntity(p plan.Plan) PlanEntity {
	return PlanEntity{
		ID:        p.ID(),
		StudentID: p.StudentID(),
		WeekStart: p.WeekStart(),
		Goals:     p.Goals(),
		Tasks:     p.Tasks(),
	}
}
