package model

import "time"

// MigrationVersion records a blob store schema version applied by the migration manager
type MigrationVersion struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Version   string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	AppliedAt time.Time `gorm:"not null"`
	Details   string    `gorm:"type:text"`
}

// TableName keeps the version table next to csv_blobs and blob_leases
func (MigrationVersion) TableName() string {
	return "plutus_schema_versions"
}
