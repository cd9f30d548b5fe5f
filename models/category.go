package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UnknownCategoryName       = "Unknown"
	UncategorizedCategoryName = "Uncategorized"
)

type Category struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"column:name;size:100;uniqueIndex" json:"name"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
	Description string          `gorm:"column:description;type:text" json:"description"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
