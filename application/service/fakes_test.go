package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sounditout/backend/domain/plan"
	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/provider"
)

var errFakeProvider = errors.New("provider unavailable")

// fakeEmbedder implements provider.Embedder with a fixed vector per text.
type fakeEmbedder struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, req provider.EmbeddingRequest) (provider.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.fail {
		return provider.EmbeddingResponse{}, errFakeProvider
	}

	embeddings := make([][]float64, len(req.Texts()))
	for i := range embeddings {
		embeddings[i] = []float64{0.1, 0.2, 0.3}
	}
	return provider.NewEmbeddingResponse(embeddings), nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeGenerator implements provider.TextGenerator with a canned response.
type fakeGenerator struct {
	content string
	fail    bool
	lastReq provider.ChatCompletionRequest
}

func (f *fakeGenerator) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.fail {
		return provider.ChatCompletionResponse{}, errFakeProvider
	}
	return provider.NewChatCompletionResponse(f.content, "stop"), nil
}

// fakeStudentStore implements report.StudentStore over a map.
type fakeStudentStore struct {
	students map[int64]report.Student
}

func newFakeStudentStore(students ...report.Student) *fakeStudentStore {
	s := &fakeStudentStore{students: make(map[int64]report.Student)}
	for _, st := range students {
		s.students[st.ID()] = st
	}
	return s
}

func (s *fakeStudentStore) Get(_ context.Context, id int64) (report.Student, error) {
	st, ok := s.students[id]
	if !ok {
		return report.Student{}, report.ErrNotFound
	}
	return st, nil
}

func (s *fakeStudentStore) GetByUserID(_ context.Context, userID int64) (report.Student, error) {
	for _, st := range s.students {
		if st.UserID() == userID {
			return st, nil
		}
	}
	return report.Student{}, report.ErrNotFound
}

func (s *fakeStudentStore) Save(_ context.Context, student report.Student) (report.Student, error) {
	if student.ID() == 0 {
		student = report.NewStudent(int64(len(s.students)+1), student.UserID(), student.Name())
	}
	s.students[student.ID()] = student
	return student, nil
}

// fakeReportStore implements report.Store over a map.
type fakeReportStore struct {
	mu      sync.Mutex
	reports map[int64]report.Report
	nextID  int64
}

func newFakeReportStore(reports ...report.Report) *fakeReportStore {
	s := &fakeReportStore{reports: make(map[int64]report.Report), nextID: 1}
	for _, r := range reports {
		s.reports[r.ID()] = r
		if r.ID() >= s.nextID {
			s.nextID = r.ID() + 1
		}
	}
	return s
}

func (s *fakeReportStore) Get(_ context.Context, id int64) (report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	return r, nil
}

func (s *fakeReportStore) ByStudent(_ context.Context, studentID int64) ([]report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []report.Report
	for _, r := range s.reports {
		if r.StudentID() == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReportStore) Save(_ context.Context, r report.Report) (report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID() == 0 {
		r = report.NewReport(s.nextID, r.StudentID(), r.Date(), r.Fields())
		s.nextID++
	}
	s.reports[r.ID()] = r
	return r, nil
}

func (s *fakeReportStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return report.ErrNotFound
	}
	delete(s.reports, id)
	return nil
}

// fakePlanStore implements plan.Store over a slice.
type fakePlanStore struct {
	plans []plan.Plan
	fail  bool
}

func (s *fakePlanStore) Save(_ context.Context, p plan.Plan) (plan.Plan, error) {
	if s.fail {
		return plan.Plan{}, errors.New("plan store down")
	}
	saved := plan.NewPlan(int64(len(s.plans)+1), p.StudentID(), p.WeekStart(), p.Goals(), p.Tasks())
	s.plans = append(s.plans, saved)
	return saved, nil
}

func (s *fakePlanStore) ByStudent(_ context.Context, studentID int64) ([]plan.Plan, error) {
	var out []plan.Plan
	for _, p := range s.plans {
		if p.StudentID() == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

// insertedEmbedding records one fakeEmbeddingStore.Insert call.
type insertedEmbedding struct {
	studentID int64
	reportID  int64
	subject   string
	content   string
	vector    []float64
}

// fakeEmbeddingStore implements retrieval.Store with canned search results.
type fakeEmbeddingStore struct {
	mu        sync.Mutex
	inserted  []insertedEmbedding
	results   []retrieval.Snippet
	failFor   map[int64]bool // report IDs whose insert fails
	searchErr error
}

func (s *fakeEmbeddingStore) Insert(_ context.Context, studentID, reportID int64, subject, content string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[reportID] {
		return errors.New("insert rejected")
	}
	s.inserted = append(s.inserted, insertedEmbedding{
		studentID: studentID,
		reportID:  reportID,
		subject:   subject,
		content:   content,
		vector:    vector,
	})
	return nil
}

func (s *fakeEmbeddingStore) SearchTopK(_ context.Context, _ int64, _ []float64, k int, _ string) ([]retrieval.Snippet, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	results := s.results
	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *fakeEmbeddingStore) DeleteAllForStudent(_ context.Context, studentID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []insertedEmbedding
	var deleted int64
	for _, e := range s.inserted {
		if e.studentID == studentID {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.inserted = kept
	return deleted, nil
}

func (s *fakeEmbeddingStore) insertedRows() []insertedEmbedding {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]insertedEmbedding, len(s.inserted))
	copy(out, s.inserted)
	return out
}

func testSnippet(id int64, subject string, score float64) retrieval.Snippet {
	return retrieval.NewSnippet(id, 1, id, subject, "content "+subject, time.Now(), score)
}
