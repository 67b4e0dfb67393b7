package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the fulfillment states of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusOnWay     OrderStatus = "ON_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusPreparing, StatusOnWay, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. Fulfillment progresses PENDING -> PREPARING -> ON_WAY ->
// DELIVERED; cancellation is allowed only before the food is on its way.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusPreparing || to == StatusCancelled
	case StatusPreparing:
		return to == StatusOnWay || to == StatusCancelled
	case StatusOnWay:
		return to == StatusDelivered
	}
	return false
}

// Order is the immutable record of a placed order. Catalog edits after the
// fact never change it; only Status and Paid move.
type Order struct {
	ID          uint   `gorm:"primaryKey"`
	Number      string `gorm:"uniqueIndex;not null"`
	UserID      uint   `gorm:"not null;index"`
	User        User   `gorm:"foreignKey:UserID"`
	Phone       string `gorm:"not null"`
	Street      string `gorm:"not null"`
	PostalCode  string
	City        string          `gorm:"not null"`
	Country     string          `gorm:"not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Paid        bool            `gorm:"not null;default:false"`
	Status      OrderStatus     `gorm:"not null;default:PENDING"`
	CreatedAt   time.Time
	Lines       []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) TableName() string {
	return "orders"
}

// ExtraSnapshot freezes a chosen extra at order time so later catalog edits
// cannot rewrite history.
type ExtraSnapshot struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	NameAr     string          `json:"name_ar,omitempty"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// ExtraSnapshots is stored as a JSON column on the order line.
type ExtraSnapshots []ExtraSnapshot

func (s ExtraSnapshots) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *ExtraSnapshots) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("unsupported extras column type %T", value)
}

// OrderLine is a frozen copy of one cart line. Product name and unit price
// are snapshotted here; the product/size ids remain as plain references.
type OrderLine struct {
	ID            uint `gorm:"primaryKey"`
	OrderID       uint `gorm:"not null;index"`
	ProductID     uint `gorm:"not null"`
	ProductName   string
	ProductNameAr string
	SizeID        *uint
	SizeName      string
	Extras        ExtraSnapshots  `gorm:"type:jsonb"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Quantity      int             `gorm:"not null"`
}

func (l *OrderLine) TableName() string {
	return "order_lines"
}

// LineTotal is the snapshotted unit price times quantity.
func (l *OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
