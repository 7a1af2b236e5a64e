package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a catalog entry. Money and ratios are fixed-point decimals.
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:product_name;size:255;not null;uniqueIndex" json:"productName"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    *string         `gorm:"column:image_url;size:1024" json:"imageUrl"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Category    string          `gorm:"size:128" json:"category"`
	Status      string          `gorm:"size:16;not null;default:active" json:"status"` // active or inactive
	Brand       string          `gorm:"size:128" json:"brand"`
	Sku         *string         `gorm:"size:128;uniqueIndex" json:"sku"`
	Discount    decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"discount"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"rating"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "product"
}

// ValidProductStatus reports whether s is a known product status.
func ValidProductStatus(s string) bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}
