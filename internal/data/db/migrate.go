package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/studentaid-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// EnsureIndexes creates the partial unique indexes gorm tags cannot express.
// The statements are valid on both Postgres and SQLite.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{
			// at most one draft per student
			name: "idx_applications_student_draft",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_student_draft
				ON applications (student_id)
				WHERE application_status = 'Draft';`,
		},
		{
			// one live row per application number
			name: "idx_applications_live_number",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_live_number
				ON applications (application_number)
				WHERE application_status NOT IN ('Draft', 'Overwritten', 'Cancelled', 'Edited');`,
		},
		{
			name: "idx_applications_number_status",
			sql: `CREATE INDEX IF NOT EXISTS idx_applications_number_status
				ON applications (application_number, application_status);`,
		},
		{
			// one original assessment per application
			name: "idx_student_assessments_original",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_student_assessments_original
				ON student_assessments (application_id)
				WHERE trigger_type = 'Original assessment';`,
		},
		{
			name: "idx_student_restrictions_active",
			sql: `CREATE INDEX IF NOT EXISTS idx_student_restrictions_active
				ON student_restrictions (student_id, restriction_id)
				WHERE is_active = true AND deleted_at IS NULL;`,
		},
		{
			name: "idx_notifications_dedupe",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_dedupe
				ON notifications (dedupe_key)
				WHERE dedupe_key <> '';`,
		},
		{
			name: "idx_offering_change_requests_pending",
			sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_offering_change_requests_pending
				ON application_offering_change_requests (application_id)
				WHERE application_offering_change_request_status IN ('In progress with student', 'In progress with StudentAid BC');`,
		},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
