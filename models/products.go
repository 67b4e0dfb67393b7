package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a menu item.
// It includes a unique code, bilingual name/description, a base price, and
// the sizes and extras the item can be configured with.
type Product struct {
	ID            uint            `gorm:"primaryKey"`
	Code          string          `gorm:"uniqueIndex;not null"`
	Name          string          `gorm:"not null"`
	NameAr        string          `gorm:"not null"`
	Description   string
	DescriptionAr string
	BasePrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ImageURL      string
	OnOffer       bool     `gorm:"not null;default:false"`
	CategoryID    uint     `gorm:"not null"`
	Category      Category `gorm:"foreignKey:CategoryID"`
	Sizes         []Size   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Extras        []Extra  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (p *Product) TableName() string {
	return "products"
}

// SizeName enumerates the size options a product may offer.
type SizeName string

const (
	SizeSmall  SizeName = "SMALL"
	SizeMedium SizeName = "MEDIUM"
	SizeLarge  SizeName = "LARGE"
)

// ValidSizeName reports whether s is one of the known size names.
func ValidSizeName(s SizeName) bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Size is a named price modifier scoped to one product. The delta is added
// to the product's base price; zero is allowed. A product never carries two
// sizes with the same name.
type Size struct {
	ID         uint            `gorm:"primaryKey"`
	ProductID  uint            `gorm:"not null;index"`
	Name       SizeName        `gorm:"not null"`
	PriceDelta decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (s *Size) TableName() string {
	return "sizes"
}

// Extra is an independently selectable add-on scoped to one product, with
// its own price delta. Names are unique within a product's extra set.
type Extra struct {
	ID         uint            `gorm:"primaryKey"`
	ProductID  uint            `gorm:"not null;index"`
	Name       string          `gorm:"not null"`
	NameAr     string
	PriceDelta decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (e *Extra) TableName() string {
	return "extras"
}
