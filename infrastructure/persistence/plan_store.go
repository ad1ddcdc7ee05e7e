package persistence

import (
	"context"
	"fmt"

	"github.com/sounditout/backend/domain/plan"
	"github.com/sounditout/backend/internal/database"
)

// PlanStore is the GORM implementation of plan.Store.
type PlanStore struct {
	db database.Database
}

// NewPlanStore creates a PlanStore.
func NewPlanStore(db database.Database) *PlanStore {
	return &PlanStore{db: db}
}

// Save inserts the plan and returns it with its assigned ID. Plans are never
// updated in place; repeated generations for the same week create new rows.
func (s *PlanStore) Save(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	entity := planEntity(p)
	entity.ID = 0
	result := s.db.Session(ctx).Create(&entity)
	if result.Error != nil {
		return plan.Plan{}, fmt.Errorf("save plan: %w", result.Error)
	}
	return entity.toDomain(), nil
}

// ByStudent returns all plans for a student, newest week first.
func (s *PlanStore) ByStudent(ctx context.Context, studentID int64) ([]plan.Plan, error) {
	var entities []PlanEntity
	result := s.db.Session(ctx).
		Where("student_id = ?", studentID).
		Order("week_start DESC, id DESC").
		Find(&entities)
	if result.Error != nil {
		return nil, fmt.Errorf("list plans: %w", result.Error)
	}

	plans := make([]plan.Plan, len(entities))
	for i, e := range entities {
		plans[i] = e.toDomain()
	}
	return plans, nil
}

var _ plan.Store = (*PlanStore)(nil)
