package model

import (
	"time"
)

// BlobLease is an exclusive write lease on a blob name
type BlobLease struct {
	BlobName   string    `gorm:"primaryKey;size:512"`
	LeaseID    string    `gorm:"size:64;not null"`
	AcquiredAt time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for BlobLease
func (BlobLease) TableName() string {
	return "blob_leases"
}

// Expired reports whether the lease can be taken over at now
func (l BlobLease) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
