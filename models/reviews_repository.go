package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type ReviewsRepository struct {
	db *gorm.DB
}

// ErrReviewNotFound is returned when a review is not found.
var ErrReviewNotFound = errors.New("review not found")

func NewReviewsRepository(db *gorm.DB) *ReviewsRepository {
	return &ReviewsRepository{db: db}
}

func (r *ReviewsRepository) CreateReview(review *Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return r.db.Create(review).Error
}

// GetApprovedReviews returns publicly visible reviews, newest first.
func (r *ReviewsRepository) GetApprovedReviews(offset, limit int) ([]Review, int64, error) {
	var reviews []Review
	var total int64

	query := r.db.Model(&Review{}).Where("approved = ?", true).Preload("User")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewsRepository) GetAllReviews(offset, limit int) ([]Review, int64, error) {
	var reviews []Review
	var total int64

	query := r.db.Model(&Review{}).Preload("User")
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewsRepository) SetApproved(id uint, approved bool) error {
	res := r.db.Model(&Review{}).Where("id = ?", id).Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewsRepository) DeleteReview(id uint) error {
	res := r.db.Delete(&Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
