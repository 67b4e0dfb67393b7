package models

import (
	"errors"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// ErrDuplicateCategoryCode is returned when a category code is already taken.
var ErrDuplicateCategoryCode = errors.New("category code already exists")

// ErrCategoryInUse is returned when deleting a category that still owns products.
var ErrCategoryInUse = errors.New("category still has products")

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) CreateCategory(category *Category) error {
	if err := r.db.Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategoryCode
		}
		return err
	}
	return nil
}

func (r *CategoriesRepository) UpdateCategory(category *Category) error {
	res := r.db.Model(&Category{}).Where("id = ?", category.ID).Updates(map[string]any{
		"code":    category.Code,
		"name":    category.Name,
		"name_ar": category.NameAr,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicateCategoryCode
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *CategoriesRepository) DeleteCategory(id uint) error {
	var count int64
	if err := r.db.Model(&Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	res := r.db.Delete(&Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
