package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusActive  = "active"
	ProductStatusDeleted = "deleted"

	CategoryMen         = "men"
	CategoryWomen       = "women"
	CategoryAccessories = "accessories"

	DefaultProductImage = "/placeholder.svg?height=300&width=300"
)

var Categories = []string{CategoryMen, CategoryWomen, CategoryAccessories}

// Product is a catalog item. Deletion only flips Status.
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:255;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Category    string          `gorm:"size:32;index" json:"category"`
	Image       string          `gorm:"size:1024" json:"image"`
	Featured    bool            `json:"featured"`
	Status      string          `gorm:"size:16;index" json:"status"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (p Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ValidCategory reports whether c is one of the catalog categories
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
