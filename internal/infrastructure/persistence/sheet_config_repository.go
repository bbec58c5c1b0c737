package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/sheetfeed"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSheetConfigRepository implements ConfigRepository using GORM
type GormSheetConfigRepository struct {
	db *gorm.DB
}

// NewGormSheetConfigRepository creates a new GormSheetConfigRepository
func NewGormSheetConfigRepository(db *gorm.DB) *GormSheetConfigRepository {
	return &GormSheetConfigRepository{db: db}
}

// FindActive returns the currently active config
func (r *GormSheetConfigRepository) FindActive(ctx context.Context) (*sheetfeed.SheetConfig, error) {
	var model models.SheetConfigModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Activate deactivates every existing config and inserts the given one
// as active, in a single transaction
func (r *GormSheetConfigRepository) Activate(ctx context.Context, config *sheetfeed.SheetConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SheetConfigModel{}).
			Where("is_active = ?", true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		return tx.Create(models.SheetConfigModelFromDomain(config)).Error
	})
}

// UpdateCursor persists a forward cursor move. The monotonicity check
// rides in the WHERE clause so a stale sync can never rewind the cursor
// under a newer one.
func (r *GormSheetConfigRepository) UpdateCursor(ctx context.Context, id uuid.UUID, lastSyncRow int) error {
	result := r.db.WithContext(ctx).Model(&models.SheetConfigModel{}).
		Where("id = ? AND last_sync_row <= ?", id, lastSyncRow).
		Updates(map[string]interface{}{
			"last_sync_row": lastSyncRow,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.SheetConfigModel{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConflict
	}
	return nil
}
