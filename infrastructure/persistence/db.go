package persistence

import (
	"github.com/sounditout/backend/internal/database"
)

// Migrate creates or updates the relational tables. The report_embeddings
// table is managed separately by the embedding stores because its vector
// column type depends on the backend and the embedding model dimension.
func Migrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&StudentEntity{},
		&ReportEntity{},
		&PlanEntity{},
	)
}
