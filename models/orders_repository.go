package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

type OrdersRepository struct {
	db *gorm.DB
}

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid order status transition")

type OrderFilters struct {
	Status OrderStatus
	UserID uint
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{db: db}
}

// CreateOrder persists the order header and all lines in one transaction;
// a failure on any line leaves nothing behind.
func (r *OrdersRepository) CreateOrder(order *Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *OrdersRepository) GetByNumber(number string) (*Order, error) {
	var order Order
	if err := r.db.
		Preload("Lines").
		Where("number = ?", number).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) GetByUser(userID uint) ([]Order, error) {
	var orders []Order
	if err := r.db.
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrdersRepository) GetFilteredOrders(offset, limit int, filters OrderFilters) ([]Order, int64, error) {
	var orders []Order
	var total int64

	query := r.db.Model(&Order{}).Preload("Lines").Preload("User")
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.UserID != 0 {
		query = query.Where("user_id = ?", filters.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus moves an order through the fulfillment state machine,
// rejecting transitions CanTransition does not allow. The check and the
// write happen in one transaction so concurrent admin edits cannot race
// past the guard.
func (r *OrdersRepository) UpdateStatus(number string, to OrderStatus) (*Order, error) {
	var order Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(lockForUpdate()).
			Where("number = ?", number).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !CanTransition(order.Status, to) {
			return ErrInvalidTransition
		}
		order.Status = to
		return tx.Model(&order).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) MarkPaid(number string, paid bool) (*Order, error) {
	var order Order
	if err := r.db.Where("number = ?", number).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.db.Model(&order).Update("paid", paid).Error; err != nil {
		return nil, err
	}
	order.Paid = paid
	return &order, nil
}
