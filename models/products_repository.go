package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

// ErrDuplicateProductCode is returned when a product code is already taken.
var ErrDuplicateProductCode = errors.New("product code already exists")

type ProductFilters struct {
	CategoryCode  string
	PriceLessThan *float64
	OnOffer       *bool
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category")

	// Filter
	if filters.CategoryCode != "" {
		query = query.Where("categories.code = ?", filters.CategoryCode)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("products.base_price < ?", *filters.PriceLessThan)
	}
	if filters.OnOffer != nil {
		query = query.Where("products.on_offer = ?", *filters.OnOffer)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetByCode(code string) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("sizes.id ASC") }).
		Preload("Extras", func(db *gorm.DB) *gorm.DB { return db.Order("extras.id ASC") }).
		Preload("Category").
		Where("code = ?", code).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("sizes.id ASC") }).
		Preload("Extras", func(db *gorm.DB) *gorm.DB { return db.Order("extras.id ASC") }).
		Preload("Category").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// CreateProduct persists a new product with its sizes and extras.
func (r *ProductsRepository) CreateProduct(product *Product) error {
	if err := validateOptionSets(product); err != nil {
		return err
	}
	if err := r.db.Create(product).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateProductCode
		}
		return err
	}
	return nil
}

// UpdateProduct replaces the product's own columns and its size/extra sets.
func (r *ProductsRepository) UpdateProduct(product *Product) error {
	if err := validateOptionSets(product); err != nil {
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing Product
		if err := tx.First(&existing, product.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&Size{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", product.ID).Delete(&Extra{}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(product).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateProductCode
			}
			return err
		}
		return nil
	})
}

func (r *ProductsRepository) DeleteProduct(id uint) error {
	res := r.db.Select("Sizes", "Extras").Delete(&Product{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// validateOptionSets enforces the no-duplicate-names invariant on a
// product's size and extra sets before anything touches the database.
func validateOptionSets(product *Product) error {
	seenSizes := make(map[SizeName]bool, len(product.Sizes))
	for _, s := range product.Sizes {
		if !ValidSizeName(s.Name) {
			return fmt.Errorf("unknown size name %q", s.Name)
		}
		if seenSizes[s.Name] {
			return fmt.Errorf("duplicate size %q", s.Name)
		}
		seenSizes[s.Name] = true
	}
	seenExtras := make(map[string]bool, len(product.Extras))
	for _, e := range product.Extras {
		if e.Name == "" {
			return fmt.Errorf("extra name is required")
		}
		if seenExtras[e.Name] {
			return fmt.Errorf("duplicate extra %q", e.Name)
		}
		seenExtras[e.Name] = true
	}
	return nil
}
