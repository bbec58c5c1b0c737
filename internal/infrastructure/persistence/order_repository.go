package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// OrderSortFields defines allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"placed_at":     true,
	"created_at":    true,
	"updated_at":    true,
	"status":        true,
	"total_amount":  true,
	"customer_name": true,
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists a new order with its items. A duplicate sheet row
// identifier trips the unique index and maps to ErrAlreadyExists, so
// two syncs racing on the same row cannot both insert.
func (r *GormOrderRepository) Create(ctx context.Context, order *ordering.Order) error {
	model := models.OrderModelFromDomain(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds an order by ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds orders with the given filter applied
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Preload("Items", orderItemsByPosition)

	orderBy := "placed_at"
	if OrderSortFields[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}
	query = query.Order(orderBy + " " + dir)

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var modelList []models.OrderModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}

	orders := make([]ordering.Order, len(modelList))
	for i, m := range modelList {
		orders[i] = *m.ToDomain()
	}
	return orders, nil
}

// FindSince returns orders placed at or after the given time, newest first
func (r *GormOrderRepository) FindSince(ctx context.Context, since time.Time) ([]ordering.Order, error) {
	var modelList []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		Where("placed_at >= ?", since).
		Order("placed_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	orders := make([]ordering.Order, len(modelList))
	for i, m := range modelList {
		orders[i] = *m.ToDomain()
	}
	return orders, nil
}

// FindBySheetRowID finds the order imported from the given feed row
func (r *GormOrderRepository) FindBySheetRowID(ctx context.Context, sheetRowID string) (*ordering.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		First(&model, "sheet_row_id = ?", sheetRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistingSheetRowIDs returns which of the given row identifiers already
// have an order, in a single query
func (r *GormOrderRepository) ExistingSheetRowIDs(ctx context.Context, sheetRowIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(sheetRowIDs))
	if len(sheetRowIDs) == 0 {
		return existing, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("sheet_row_id IN ?", sheetRowIDs).
		Pluck("sheet_row_id", &found).Error; err != nil {
		return nil, err
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// UpdateStatus conditionally moves an order from expected to target
// status. The status check rides in the WHERE clause so only one of any
// number of concurrent callers sees a row affected; the rest get
// ErrConflict.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target ordering.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
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

// DeleteIfNotPrinting removes an order and its items unless a print
// attempt is in flight
func (r *GormOrderRepository) DeleteIfNotPrinting(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND status <> ?", id, ordering.OrderStatusPrinting).
			Delete(&models.OrderModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.OrderModel{}).
				Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConflict
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", id).Delete(&models.BillModel{}).Error
	})
}

// orderItemsByPosition keeps preloaded items in the order they were entered
func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
