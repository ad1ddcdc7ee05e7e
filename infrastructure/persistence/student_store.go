package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sounditout/backend/domain/report"
	"github.com/sounditout/backend/internal/database"
)

// StudentStore is the GORM implementation of report.StudentStore.
type StudentStore struct {
	db database.Database
}

// NewStudentStore creates a StudentStore.
func NewStudentStore(db database.Database) *StudentStore {
	return &StudentStore{db: db}
}

// Get returns the student with the given ID.
func (s *StudentStore) Get(ctx context.Context, id int64) (report.Student, error) {
	var entity StudentEntity
	result := s.db.Session(ctx).First(&entity, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return report.Student{}, fmt.Errorf("%w: student %d", report.ErrNotFound, id)
		}
		return report.Student{}, fmt.Errorf("get student: %w", result.Error)
	}
	return entity.toDomain(), nil
}

// GetByUserID returns the student owned by the given user account.
func (s *StudentStore) GetByUserID(ctx context.Context, userID int64) (report.Student, error) {
	var entity StudentEntity
	result := s.db.Session(ctx).Where("user_id = ?", userID).First(&entity)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return report.Student{}, fmt.Errorf("%w: student for user %d", report.ErrNotFound, userID)
		}
		return report.Student{}, fmt.Errorf("get student by user: %w", result.Error)
	}
	return entity.toDomain(), nil
}

// Save inserts or updates a student.
func (s *StudentStore) Save(ctx context.Context, student report.Student) (report.Student, error) {
	entity := studentEntity(student)
	result := s.db.Session(ctx).Save(&entity)
	if result.Error != nil {
		return report.Student{}, fmt.Errorf("save student: %w", result.Error)
	}
	return entity.toDomain(), nil
}

var _ report.StudentStore = (*StudentStore)(nil)
