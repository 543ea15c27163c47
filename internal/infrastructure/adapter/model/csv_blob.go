package model

import (
	"time"
)

// CSVBlob is one stored object of the blob backend, addressed by its full name
type CSVBlob struct {
	Name      string    `gorm:"primaryKey;size:512"`
	Data      []byte    `gorm:"type:bytea;not null"`
	ETag      string    `gorm:"column:etag;size:64;not null"`
	Size      int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for CSVBlob
func (CSVBlob) TableName() string {
	return "csv_blobs"
}
