package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/orderdesk/backend/internal/domain/ordering"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// BillSortFields defines allowed sort fields for bills
var BillSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"print_status":   true,
	"print_attempts": true,
	"printed_at":     true,
}

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByOrderID finds the bill for an order
func (r *GormBillRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*ordering.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds bills with the given filter applied
func (r *GormBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Bill, error) {
	query := r.db.WithContext(ctx).Model(&models.BillModel{})

	orderBy := "created_at"
	if BillSortFields[filter.OrderBy] {
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

	var modelList []models.BillModel
	if err := query.Find(&modelList).Error; err != nil {
		return nil, err
	}

	bills := make([]ordering.Bill, len(modelList))
	for i, m := range modelList {
		bills[i] = *m.ToDomain()
	}
	return bills, nil
}

// Save inserts or updates a bill. The unique index on order_id rejects
// a second bill for the same order.
func (r *GormBillRepository) Save(ctx context.Context, bill *ordering.Bill) error {
	model := models.BillModelFromDomain(bill)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}
