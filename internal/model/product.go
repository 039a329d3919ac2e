package model

import "time"

// Product is one catalog row. (Name, Version) is unique; rows are never updated in place.
type Product struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"-"`

	Name    string `gorm:"size:255;not null;uniqueIndex:idx_products_name_version" json:"name"`
	Owner   string `gorm:"size:255;not null" json:"owner"`
	Version string `gorm:"size:64;not null;uniqueIndex:idx_products_name_version" json:"version"`
	Price   int64  `gorm:"not null" json:"price"` // whole currency units
}

func (Product) TableName() string { return "products" }
