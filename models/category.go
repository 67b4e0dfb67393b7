package models

// Category represents a menu category (e.g. burgers, drinks).
// It includes a unique code and a bilingual display name.
type Category struct {
	ID     uint   `gorm:"primaryKey"`
	Code   string `gorm:"uniqueIndex;not null"`
	Name   string `gorm:"not null"`
	NameAr string `gorm:"not null"`
}

func (c *Category) TableName() string {
	return "categories"
}
