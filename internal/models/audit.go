package models

import (
	"time"

	"gorm.io/datatypes"
)

// CatalogEvent is one row of the mutation/warning audit log.
type CatalogEvent struct {
	ID        uint           `gorm:"primaryKey"`
	Kind      string         `gorm:"size:32;index"` // mutation | warning
	Op        string         `gorm:"size:32;index"`
	AppID     string         `gorm:"size:64;index"`
	Backend   string         `gorm:"size:16"`
	Message   string         `gorm:"type:text"`
	Details   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"index"`
}
