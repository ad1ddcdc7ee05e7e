package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sounditout/backend/domain/plan"
	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/infrastructure/provider"
)

// planTemperature keeps generation consistent rather than creative.
const planTemperature = 0.3

// systemPromptTemplate fixes the coach persona and the strict JSON output
// contract. The %s is the no-context sentinel so the instruction and the
// rendered context can never drift apart.
const systemPromptTemplate = `You are a tutoring coach. Create a realistic one-week study plan.
Use the student's past feedback (RAG context) ONLY if it is relevant.
If the RAG context equals %q, ignore it and base the plan solely on the student's goal.
Output STRICT JSON only with this schema (no extra text):
{
  "week_start": "YYYY-MM-DD",
  "goals": "string",
  "tasks": [
    { "day": "Mon|Tue|Wed|Thu|Fri|Sat|Sun", "title": "string", "steps": ["string", ...] }
  ]
}`

const userPromptTemplate = `Student goal: %s

RAG context:
%s`

// Coach generates weekly study plans with retrieval-augmented generation
// over a student's report embedding history, and exposes the raw top-K
// search used for diagnostics.
type Coach struct {
	embedder   provider.Embedder
	generator  provider.TextGenerator
	embeddings retrieval.Store
	students   report.StudentStore
	plans      plan.Store
	cfg        retrieval.Config
	logger     *slog.Logger
	now        func() time.Time
}

// NewCoach creates a Coach.
func NewCoach(
	embedder provider.Embedder,
	generator provider.TextGenerator,
	embeddings retrieval.Store,
	students report.StudentStore,
	plans plan.Store,
	cfg retrieval.Config,
	logger *slog.Logger,
) *Coach {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{
		embedder:   embedder,
		generator:  generator,
		embeddings: embeddings,
		students:   students,
		plans:      plans,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source. Used by tests to pin the week start.
func (c *Coach) WithClock(now func() time.Time) *Coach {
	c.now = now
	return c
}

// GenerateWeeklyPlan embeds the goal, retrieves and filters the student's
// report context, asks the chat model for a strict-JSON weekly plan, and
// persists the validated result.
//
// Failures are surfaced, never retried here: callers may re-issue the whole
// operation. A response that parses but carries no valid task array fails
// with plan.ErrInvalidTasks so the caller can distinguish a model/prompt
// regression from a transport failure.
func (c *Coach) GenerateWeeklyPlan(ctx context.Context, studentID int64, goalPrompt string) (plan.Plan, error) {
	if _, err := c.students.Get(ctx, studentID); err != nil {
		return plan.Plan{}, err
	}

	vector, err := c.embedText(ctx, goalPrompt)
	if err != nil {
		return plan.Plan{}, err
	}

	candidates, err := c.embeddings.SearchTopK(ctx, studentID, vector, c.cfg.Candidates(), "")
	if err != nil {
		return plan.Plan{}, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	filtered := retrieval.Filter(candidates, c.cfg)
	contextBlock := retrieval.ContextBlock(filtered)

	c.logger.Debug("plan generation context",
		"student_id", studentID,
		"candidates", len(candidates),
		"kept", len(filtered),
	)

	req := provider.NewChatCompletionRequest(
		provider.SystemMessage(fmt.Sprintf(systemPromptTemplate, retrieval.NoContextSentinel)),
		provider.UserMessage(fmt.Sprintf(userPromptTemplate, goalPrompt, contextBlock)),
	).WithTemperature(planTemperature).WithJSONObject()

	resp, err := c.generator.ChatCompletion(ctx, req)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	tasks, err := plan.ExtractTasks([]byte(resp.Content()))
	if err != nil {
		return plan.Plan{}, err
	}

	weekStart := plan.WeekStart(c.now())
	saved, err := c.plans.Save(ctx, plan.NewPlan(0, studentID, weekStart, goalPrompt, []byte(tasks)))
	if err != nil {
		return plan.Plan{}, fmt.Errorf("persist plan: %w", err)
	}

	c.logger.Info("weekly plan generated",
		"student_id", studentID,
		"plan_id", saved.ID(),
		"week_start", weekStart.Format("2006-01-02"),
	)
	return saved, nil
}

// SearchTopK embeds the query and returns the student's raw-ranked matches.
// Diagnostic path: no similarity cutoff is applied, and the store is always
// asked for at least the configured candidate count so ranking stays stable
// for small k.
func (c *Coach) SearchTopK(ctx context.Context, studentID int64, query string, k int, subjectFilter string) ([]retrieval.Snippet, error) {
	if _, err := c.students.Get(ctx, studentID); err != nil {
		return nil, err
	}

	vector, err := c.embedText(ctx, query)
	if err != nil {
		return nil, err
	}

	fetch := k
	if c.cfg.Candidates() > fetch {
		fetch = c.cfg.Candidates()
	}

	snippets, err := c.embeddings.SearchTopK(ctx, studentID, vector, fetch, subjectFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	if k < len(snippets) {
		snippets = snippets[:k]
	}
	return snippets, nil
}

func (c *Coach) embedText(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.embedder.Embed(ctx, provider.NewEmbeddingRequest([]string{text}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	vectors := resp.Embeddings()
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", ErrEmbedding, len(vectors))
	}
	return vectors[0], nil
}
