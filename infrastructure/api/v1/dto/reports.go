package dto

import "time"

// StudentRequest is the body of POST /students.
type StudentRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// StudentResponse describes one student.
type StudentResponse struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// ReportRequest is the body of report create/update calls.
type ReportRequest struct {
	LessonTopic     string `json:"lesson_topic"`
	Difficulty      string `json:"difficulty"`
	Milestone       string `json:"milestone"`
	Notes           string `json:"notes"`
	Accomplishments string `json:"accomplishments"`
	Improvements    string `json:"improvements_needed"`
}

// ReportResponse describes one progress report.
type ReportResponse struct {
	ID              int64     `json:"id"`
	StudentID       int64     `json:"student_id"`
	Date            time.Time `json:"date"`
	LessonTopic     string    `json:"lesson_topic"`
	Difficulty      string    `json:"difficulty"`
	Milestone       string    `json:"milestone"`
	Notes           string    `json:"notes"`
	Accomplishments string    `json:"accomplishments"`
	Improvements    string    `json:"improvements_needed"`
}
