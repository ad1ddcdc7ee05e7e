package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sounditout/backend/application/service"
	"github.com/sounditout/backend/domain/plan"
	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/api/v1/dto"
	"github.com/sounditout/backend/infrastructure/provider"
)

const stubPlanJSON = `{"tasks":[{"day":"Mon","title":"Review","steps":["worksheet"]}]}`

// stubEmbedder returns a fixed vector for every text.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, req provider.EmbeddingRequest) (provider.EmbeddingResponse, error) {
	embeddings := make([][]float64, len(req.Texts()))
	for i := range embeddings {
		embeddings[i] = []float64{0.1, 0.2}
	}
	return provider.NewEmbeddingResponse(embeddings), nil
}

// stubGenerator returns a fixed completion.
type stubGenerator struct{}

func (stubGenerator) ChatCompletion(context.Context, provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	return provider.NewChatCompletionResponse(stubPlanJSON, "stop"), nil
}

// stubStudents holds a single student with ID 1.
type stubStudents struct{}

func (stubStudents) Get(_ context.Context, id int64) (report.Student, error) {
	if id != 1 {
		return report.Student{}, report.ErrNotFound
	}
	return report.NewStudent(1, 10, "Ada"), nil
}

func (stubStudents) GetByUserID(_ context.Context, userID int64) (report.Student, error) {
	if userID != 10 {
		return report.Student{}, report.ErrNotFound
	}
	return report.NewStudent(1, 10, "Ada"), nil
}

func (stubStudents) Save(_ context.Context, s report.Student) (report.Student, error) {
	return report.NewStudent(1, s.UserID(), s.Name()), nil
}

// stubReports holds a single report with ID 5 owned by student 1.
type stubReports struct{}

func (stubReports) Get(_ context.Context, id int64) (report.Report, error) {
	if id != 5 {
		return report.Report{}, report.ErrNotFound
	}
	return report.NewReport(5, 1, time.Now().UTC(), report.Fields{LessonTopic: "Fractions"}), nil
}

func (stubReports) ByStudent(context.Context, int64) ([]report.Report, error) {
	return nil, nil
}

func (stubReports) Save(_ context.Context, r report.Report) (report.Report, error) {
	if r.ID() == 0 {
		r = report.NewReport(5, r.StudentID(), r.Date(), r.Fields())
	}
	return r, nil
}

func (stubReports) Delete(context.Context, int64) error { return nil }

// stubPlans assigns ID 1 on save.
type stubPlans struct{}

func (stubPlans) Save(_ context.Context, p plan.Plan) (plan.Plan, error) {
	return plan.NewPlan(1, p.StudentID(), p.WeekStart(), p.Goals(), p.Tasks()), nil
}

func (stubPlans) ByStudent(context.Context, int64) ([]plan.Plan, error) { return nil, nil }

// stubEmbeddings returns no matches.
type stubEmbeddings struct{}

func (stubEmbeddings) Insert(context.Context, int64, int64, string, string, []float64) error {
	return nil
}

func (stubEmbeddings) SearchTopK(context.Context, int64, []float64, int, string) ([]retrieval.Snippet, error) {
	return nil, nil
}

func (stubEmbeddings) DeleteAllForStudent(context.Context, int64) (int64, error) { return 0, nil }

// recordingEnqueuer captures enqueued report IDs.
type recordingEnqueuer struct {
	reportIDs []int64
}

func (e *recordingEnqueuer) Enqueue(_, reportID int64, _, _ string) bool {
	e.reportIDs = append(e.reportIDs, reportID)
	return true
}

func newTestAIRouter(enqueuer service.Enqueuer) *AIRouter {
	coach := service.NewCoach(stubEmbedder{}, stubGenerator{}, stubEmbeddings{}, stubStudents{}, stubPlans{}, retrieval.DefaultConfig(), nil)
	reports := service.NewReports(stubStudents{}, stubReports{}, enqueuer, nil)
	return NewAIRouter(coach, reports, enqueuer, nil)
}

func TestUpsertEmbeddingAccepted(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	router := newTestAIRouter(enqueuer)

	body := strings.NewReader(`{"subject": "Fractions", "content": "struggled with mixed numbers"}`)
	req := httptest.NewRequest(http.MethodPost, "/reports/5/embed", body)
	w := httptest.NewRecorder()
	router.Routes().ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []int64{5}, enqueuer.reportIDs)
}

func TestUpsertEmbeddingValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{
			name: "blank content",
			path: "/reports/5/embed",
			body: `{"subject": "s", "content": "   "}`,
			want: http.StatusBadRequest,
		},
		{
			name: "malformed body",
			path: "/reports/5/embed",
			body: `{"subject":`,
			want: http.StatusBadRequest,
		},
		{
			name: "non-numeric report id",
			path: "/reports/abc/embed",
			body: `{"content": "x"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown report",
			path: "/reports/404/embed",
			body: `{"content": "x"}`,
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enqueuer := &recordingEnqueuer{}
			router := newTestAIRouter(enqueuer)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.Routes().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Empty(t, enqueuer.reportIDs)
		})
	}
}

func TestGeneratePlan(t *testing.T) {
	router := newTestAIRouter(&recordingEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/study-plan?student_id=1&goal=pass+the+quiz", nil)
	w := httptest.NewRecorder()
	router.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.PlanResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, int64(1), resp.StudentID)
	assert.Equal(t, "pass the quiz", resp.Goals)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, resp.WeekStart)

	var tasks []plan.Task
	require.NoError(t, json.Unmarshal(resp.Tasks, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "Mon", tasks[0].Day)
}

func TestGeneratePlanValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing goal", query: "student_id=1", want: http.StatusBadRequest},
		{name: "blank goal", query: "student_id=1&goal=+", want: http.StatusBadRequest},
		{name: "missing student", query: "goal=x", want: http.StatusBadRequest},
		{name: "non-numeric student", query: "student_id=abc&goal=x", want: http.StatusBadRequest},
		{name: "unknown student", query: "student_id=7&goal=x", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestAIRouter(&recordingEnqueuer{})

			req := httptest.NewRequest(http.MethodGet, "/study-plan?"+tt.query, nil)
			w := httptest.NewRecorder()
			router.Routes().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestSearch(t *testing.T) {
	router := newTestAIRouter(&recordingEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/search?student_id=1&query=fractions&k=3", nil)
	w := httptest.NewRecorder()
	router.Routes().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.SearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.StudentID)
	assert.Equal(t, "fractions", resp.Query)
	assert.Equal(t, 3, resp.K)
}

func TestSearchValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "missing query", query: "student_id=1", want: http.StatusBadRequest},
		{name: "zero k", query: "student_id=1&query=x&k=0", want: http.StatusBadRequest},
		{name: "negative k", query: "student_id=1&query=x&k=-1", want: http.StatusBadRequest},
		{name: "non-numeric k", query: "student_id=1&query=x&k=many", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestAIRouter(&recordingEnqueuer{})

			req := httptest.NewRequest(http.MethodGet, "/search?"+tt.query, nil)
			w := httptest.NewRecorder()
			router.Routes().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
