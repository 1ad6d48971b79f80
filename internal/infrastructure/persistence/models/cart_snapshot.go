package models

import (
	"encoding/json"
	"time"
)

// CartSnapshotModel is one persisted cart, keyed by its storage key
type CartSnapshotModel struct {
	CartKey       string    `gorm:"column:cart_key;type:varchar(191);primaryKey"`
	Payload       string    `gorm:"type:text;not null"`
	SchemaVersion int       `gorm:"not null"`
	Revision      int64     `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CartSnapshotModel) TableName() string {
	return "cart_snapshots"
}

// NewCartSnapshotModel builds a row from a raw snapshot. Header fields are
// read when the payload carries them and left at zero otherwise.
func NewCartSnapshotModel(key string, payload []byte, now time.Time) *CartSnapshotModel {
	var header struct {
		SchemaVersion int   `json:"schema_version"`
		Revision      int64 `json:"revision"`
	}
	_ = json.Unmarshal(payload, &header)

	return &CartSnapshotModel{
		CartKey:       key,
		Payload:       string(payload),
		SchemaVersion: header.SchemaVersion,
		Revision:      header.Revision,
		UpdatedAt:     now.UTC(),
	}
}
