package models

import (
	"gorm.io/gorm"
)

// MigrateTable creates the legacy tables when they are missing. Production
// deployments already have them (the ingestion system owns the schema); this
// exists for dev databases and is skippable via SKIP_MIGRATIONS=true.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Gym{},
		&Owner{},
		&OwnerGym{},
		&DuesPayment{},
		&SalePayment{},
		&AssessmentPayment{},
		&DayPassPayment{},
		&NewClientRecord{},
		&RemovedClientRecord{},
		&AttendanceEvent{},
	)
}
