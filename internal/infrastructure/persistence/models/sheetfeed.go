package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/sheetfeed"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// SheetConfigModel is the persistence model for the SheetConfig entity.
type SheetConfigModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	SpreadsheetID string    `gorm:"column:spreadsheet_id;type:varchar(200);not null"`
	SheetName     string    `gorm:"column:sheet_name;type:varchar(200);not null"`
	LastSyncRow   int       `gorm:"column:last_sync_row;not null;default:1"`
	IsActive      bool      `gorm:"column:is_active;not null;default:false;index"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SheetConfigModel) TableName() string {
	return "sheet_configs"
}

// ToDomain converts the persistence model to a domain SheetConfig entity.
func (m *SheetConfigModel) ToDomain() *sheetfeed.SheetConfig {
	return &sheetfeed.SheetConfig{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		SpreadsheetID: m.SpreadsheetID,
		SheetName:     m.SheetName,
		LastSyncRow:   m.LastSyncRow,
		IsActive:      m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain SheetConfig entity.
func (m *SheetConfigModel) FromDomain(c *sheetfeed.SheetConfig) {
	m.ID = c.ID
	m.SpreadsheetID = c.SpreadsheetID
	m.SheetName = c.SheetName
	m.LastSyncRow = c.LastSyncRow
	m.IsActive = c.IsActive
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// SheetConfigModelFromDomain creates a new persistence model from a domain SheetConfig entity.
func SheetConfigModelFromDomain(c *sheetfeed.SheetConfig) *SheetConfigModel {
	m := &SheetConfigModel{}
	m.FromDomain(c)
	return m
}
