// Package v1 implements the versioned HTTP API.
package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sounditout/backend/application/service"
	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/api/middleware"
	"github.com/sounditout/backend/infrastructure/api/v1/dto"
)

// defaultSearchK is the result count for GET /ai/search when k is omitted.
const defaultSearchK = 5

// AIRouter handles the AI pipeline endpoints.
type AIRouter struct {
	coach    *service.Coach
	reports  *service.Reports
	enqueuer service.Enqueuer
	logger   *slog.Logger
}

// NewAIRouter creates an AIRouter.
func NewAIRouter(coach *service.Coach, reports *service.Reports, enqueuer service.Enqueuer, logger *slog.Logger) *AIRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIRouter{
		coach:    coach,
		reports:  reports,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// Routes returns the chi router for AI endpoints.
func (rt *AIRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/reports/{reportID}/embed", rt.UpsertEmbedding)
	router.Get("/study-plan", rt.GeneratePlan)
	router.Get("/search", rt.Search)

	return router
}

// UpsertEmbedding handles POST /ai/reports/{reportID}/embed. The embedding
// is scheduled on the background pool; the response never waits for, or
// reports on, the model call.
func (rt *AIRouter) UpsertEmbedding(w http.ResponseWriter, r *http.Request) {
	reportID, err := pathID(r, "reportID")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	var body dto.UpsertEmbeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteError(w, r, fmt.Errorf("%w: %v", middleware.ErrBadRequest, err), rt.logger)
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		middleware.WriteError(w, r, fmt.Errorf("%w: content must not be blank", middleware.ErrBadRequest), rt.logger)
		return
	}

	// Fail fast on a dangling report before anything is scheduled.
	rep, err := rt.reports.Get(r.Context(), reportID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	rt.enqueuer.Enqueue(rep.StudentID(), rep.ID(), body.Subject, body.Content)
	w.WriteHeader(http.StatusAccepted)
}

// GeneratePlan handles GET /ai/study-plan?student_id=&goal=.
func (rt *AIRouter) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "student_id")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	goal := strings.TrimSpace(r.URL.Query().Get("goal"))
	if goal == "" {
		middleware.WriteError(w, r, fmt.Errorf("%w: goal must not be blank", middleware.ErrBadRequest), rt.logger)
		return
	}

	generated, err := rt.coach.GenerateWeeklyPlan(r.Context(), studentID, goal)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.PlanResponse{
		ID:        generated.ID(),
		StudentID: generated.StudentID(),
		WeekStart: generated.WeekStart().Format("2006-01-02"),
		Goals:     generated.Goals(),
		Tasks:     json.RawMessage(generated.Tasks()),
	})
}

// Search handles GET /ai/search?student_id=&query=&k=&subject=.
func (rt *AIRouter) Search(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "student_id")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		middleware.WriteError(w, r, fmt.Errorf("%w: query must not be blank", middleware.ErrBadRequest), rt.logger)
		return
	}

	k := defaultSearchK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.WriteError(w, r, fmt.Errorf("%w: k must be a positive integer", middleware.ErrBadRequest), rt.logger)
			return
		}
		k = parsed
	}

	subjectFilter := r.URL.Query().Get("subject")

	snippets, err := rt.coach.SearchTopK(r.Context(), studentID, query, k, subjectFilter)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SearchResponse{
		StudentID: studentID,
		Query:     query,
		K:         k,
		Results:   searchResults(snippets),
	})
}

func searchResults(snippets []retrieval.Snippet) []dto.SearchResult {
	results := make([]dto.SearchResult, len(snippets))
	for i, s := range snippets {
		results[i] = dto.SearchResult{
			ID:        s.ID(),
			StudentID: s.StudentID(),
			ReportID:  s.ReportID(),
			Subject:   s.Subject(),
			Content:   s.Content(),
			CreatedAt: s.CreatedAt(),
			Score:     s.Score(),
		}
	}
	return results
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", middleware.ErrBadRequest, name)
	}
	return id, nil
}

func queryID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", middleware.ErrBadRequest, name)
	}
	return id, nil
}
