package persistence

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/sounditout/backend/domain/retrieval"
	"github.com/sounditout/backend/internal/database"
)

// Float64Slice is a custom type for JSON serialization of []float64 in SQLite.
type Float64Slice []float64

// Scan implements sql.Scanner for reading JSON from SQLite.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer for writing JSON to SQLite.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// SQLiteEmbeddingEntity represents one report embedding row in SQLite.
type SQLiteEmbeddingEntity struct {
	ID        int64        `gorm:"column:id;primaryKey;autoIncrement"`
	StudentID int64        `gorm:"column:student_id;uniqueIndex:idx_report_embeddings_student_report"`
	ReportID  int64        `gorm:"column:report_id;uniqueIndex:idx_report_embeddings_student_report"`
	Subject   string       `gorm:"column:subject"`
	Content   string       `gorm:"column:content;type:text"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	Embedding Float64Slice `gorm:"column:embedding;type:json"`
}

// TableName returns the table name for SQLiteEmbeddingEntity.
func (SQLiteEmbeddingEntity) TableName() string { return "report_embeddings" }

// SQLiteEmbeddingStore implements retrieval.Store for SQLite. Embeddings are
// stored as JSON and cosine similarity is computed in memory; intended for
// development and tests, where student embedding histories are small.
type SQLiteEmbeddingStore struct {
	db database.Database
}

// NewSQLiteEmbeddingStore creates a SQLiteEmbeddingStore. The table is
// created through AutoMigrate since SQLite has no native vector type.
func NewSQLiteEmbeddingStore(db database.Database) (*SQLiteEmbeddingStore, error) {
	if err := db.GORM().AutoMigrate(&SQLiteEmbeddingEntity{}); err != nil {
		return nil, fmt.Errorf("migrate report_embeddings: %w", err)
	}
	return &SQLiteEmbeddingStore{db: db}, nil
}

// Insert writes one embedding row, replacing the previous row for the same
// (student, report) pair.
func (s *SQLiteEmbeddingStore) Insert(ctx context.Context, studentID, reportID int64, subject, content string, vector []float64) error {
	cp := make(Float64Slice, len(vector))
	copy(cp, vector)

	entity := SQLiteEmbeddingEntity{
		StudentID: studentID,
		ReportID:  reportID,
		Subject:   subject,
		Content:   content,
		Embedding: cp,
	}

	err := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "report_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"subject", "content", "embedding", "created_at"}),
	}).Create(&entity).Error
	if err != nil {
		return fmt.Errorf("insert embedding: %w", err)
	}
	return nil
}

// SearchTopK loads the student's rows and ranks them by cosine similarity
// in memory, descending. Ties keep ascending row ID order, so ranking is
// deterministic across runs.
func (s *SQLiteEmbeddingStore) SearchTopK(ctx context.Context, studentID int64, vector []float64, k int, subjectFilter string) ([]retrieval.Snippet, error) {
	if k <= 0 {
		return []retrieval.Snippet{}, nil
	}

	var entities []SQLiteEmbeddingEntity
	query := s.db.Session(ctx).Where("student_id = ?", studentID).Order("id ASC")
	if subjectFilter != "" {
		query = query.Where("LOWER(subject) LIKE ?", "%"+strings.ToLower(subjectFilter)+"%")
	}
	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}

	snippets := make([]retrieval.Snippet, len(entities))
	for i, e := range entities {
		score := cosineSimilarity(vector, e.Embedding)
		snippets[i] = retrieval.NewSnippet(e.ID, e.StudentID, e.ReportID, e.Subject, e.Content, e.CreatedAt, score)
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].Score() > snippets[j].Score()
	})

	if k > len(snippets) {
		k = len(snippets)
	}
	return snippets[:k], nil
}

// DeleteAllForStudent removes every embedding row for the student.
func (s *SQLiteEmbeddingStore) DeleteAllForStudent(ctx context.Context, studentID int64) (int64, error) {
	result := s.db.Session(ctx).Where("student_id = ?", studentID).Delete(&SQLiteEmbeddingEntity{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete embeddings: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 (opposite) and 1 (identical), or 0 when either
// vector has zero magnitude or the dimensions differ.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, magA, magB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(magA) * math.Sqrt(magB))
}

var _ retrieval.Store = (*SQLiteEmbeddingStore)(nil)
