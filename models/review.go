package models

import "time"

// Review is a customer rating with an optional comment. Reviews are hidden
// until an admin approves them.
type Review struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"not null;index"`
	User      User `gorm:"foreignKey:UserID"`
	Rating    int  `gorm:"not null"`
	Comment   string
	Approved  bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (r *Review) TableName() string {
	return "reviews"
}
