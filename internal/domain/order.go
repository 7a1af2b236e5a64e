package domain

import "github.com/shopspring/decimal"

// Order is migrated with the schema but no operation reads or writes it yet.
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName string          `gorm:"size:255;not null" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}
