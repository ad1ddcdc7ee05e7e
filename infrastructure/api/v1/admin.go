package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sounditout/backend/application/service"
	"github.com/sounditout/backend/infrastructure/api/middleware"
	"github.com/sounditout/backend/infrastructure/api/v1/dto"
)

// AdminRouter handles embedding maintenance endpoints.
type AdminRouter struct {
	ingestion *service.Ingestion
	logger    *slog.Logger
}

// NewAdminRouter creates an AdminRouter.
func NewAdminRouter(ingestion *service.Ingestion, logger *slog.Logger) *AdminRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminRouter{
		ingestion: ingestion,
		logger:    logger,
	}
}

// Routes returns the chi router for admin AI endpoints.
func (rt *AdminRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/reindex", rt.Reindex)
	router.Post("/purge-and-reindex", rt.PurgeAndReindex)

	return router
}

// Reindex handles POST /admin/ai/reindex?student_id=. It rebuilds embeddings
// for all of the student's reports, keeping existing rows for reports that
// fail.
func (rt *AdminRouter) Reindex(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "student_id")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	count, err := rt.ingestion.ReindexStudentReports(r.Context(), studentID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ReindexResponse{
		StudentID: studentID,
		Reindexed: count,
	})
}

// PurgeAndReindex handles POST /admin/ai/purge-and-reindex?student_id=.
// It deletes every embedding row for the student and rebuilds from scratch.
func (rt *AdminRouter) PurgeAndReindex(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "student_id")
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	deleted, err := rt.ingestion.PurgeStudent(r.Context(), studentID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	count, err := rt.ingestion.ReindexStudentReports(r.Context(), studentID)
	if err != nil {
		middleware.WriteError(w, r, err, rt.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.PurgeReindexResponse{
		StudentID: studentID,
		Deleted:   deleted,
		Reindexed: count,
	})
}
