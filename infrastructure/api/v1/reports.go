package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sounditout/backend/application/service"
	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/infrastructure/api/middleware"
	"github.com/sounditout/backend/infrastructure/api/v1/dto"
)

// ReportsRouter handles student and progress-report CRUD endpoints.
type ReportsRouter struct {
	reports  *service.Reports
	students report.StudentStore
	logger   *slog.Logger
}

// NewReportsRouter creates a ReportsRouter.
func NewReportsRouter(reports *service.Reports, students report.StudentStore, logger *slog.Logger) *ReportsRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportsRouter{
		reports:  reports,
		students: students,
		logger:   logger,
	}
}

// Routes returns the chi router for student and report endpoints.
func (rt *ReportsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/students", rt.CreateStudent)
	router.Get("/students/{studentID}", rt.GetStudent)
	router.Post("/students/{studentID}/reports", rt.CreateReport)
	router.Get("/students/{studentID}/reports", rt.ListReports)
	router.Get("/reports/{reportID}", rt.GetReport)
	router.Put("/reports/{reportID}", rt.UpdateReport)
	router.Delete("/reports/{reportID}", rt.DeleteReport)

	return router
}

// CreateStudent handles POST /students.
func (rt *ReportsRouter) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var body dto.StudentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, r, fmt.Errorf("%w: %v", middleware.ErrBadRequest, err), rt.logger)
		return
	}
	if body.Name == "" {
		middleware.WriteError(w, r, fmt.Errorf("%w: name must not be blank", middleware.ErrBadRequest), rt.logger)
		return
	}

	saved, err := rt.students.Save(r.Context(), report.NewStudent(0, body.UserID, body.Name))
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, studentResponse(saved))
}

// GetStudent handles GET /students/{studentID}.
func (rt *ReportsRouter) GetStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	student, err := rt.students.Get(r.Context(), studentID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, studentResponse(student))
}

// CreateReport handles POST /students/{studentID}/reports.
func (rt *ReportsRouter) CreateReport(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	fields, err := decodeReportFields(r)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	saved, err := rt.reports.Create(r.Context(), studentID, fields)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, reportResponse(saved))
}

// ListReports handles GET /students/{studentID}/reports.
func (rt *ReportsRouter) ListReports(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathID(r, "studentID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	reports, err := rt.reports.ByStudent(r.Context(), studentID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	responses := make([]dto.ReportResponse, len(reports))
	for i, rep := range reports {
		responses[i] = reportResponse(rep)
	}
	middleware.WriteJSON(w, http.StatusOK, responses)
}

// GetReport handles GET /reports/{reportID}.
func (rt *ReportsRouter) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "reportID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	rep, err := rt.reports.Get(r.Context(), reportID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, reportResponse(rep))
}

// UpdateReport handles PUT /reports/{reportID}.
func (rt *ReportsRouter) UpdateReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "reportID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	fields, err := decodeReportFields(r)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	saved, err := rt.reports.Update(r.Context(), reportID, fields)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, reportResponse(saved))
}

// DeleteReport handles DELETE /reports/{reportID}.
func (rt *ReportsRouter) DeleteReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "reportID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	if err := rt.reports.Delete(r.Context(), reportID); err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeReportFields(r *http.Request) (report.Fields, error) {
	var body dto.ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return report.Fields{}, fmt.Errorf("%w: %v", middleware.ErrBadRequest, err)
	}
	return report.Fields{
		LessonTopic:     body.LessonTopic,
		Difficulty:      body.Difficulty,
		Milestone:       body.Milestone,
		Notes:           body.Notes,
		Accomplishments: body.Accomplishments,
		Improvements:    body.Improvements,
	}, nil
}

func studentResponse(s report.Student) dto.StudentResponse {
	return dto.StudentResponse{
		ID:     s.ID(),
		UserID: s.UserID(),
		Name:   s.Name(),
	}
}

func reportResponse(r report.Report) dto.ReportResponse {
	f := r.Fields()
	return dto.ReportResponse{
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
