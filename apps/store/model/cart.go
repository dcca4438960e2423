package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxQuantity is the largest quantity a smallint column holds.
const MaxQuantity = 32767

// Cart 购物车; one per user, totals are computed on read.
type Cart struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;uniqueIndex"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// CartItem is one product line. Quantity 0 means "created, not yet set".
// LinePrice is rewritten from Quantity and the product price on every save
// and is not touched when the product price changes later.
type CartItem struct {
	ID        uint     `gorm:"primaryKey"`
	CartID    uint     `gorm:"not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_items_cart_product;index"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE"`
	Quantity  int      `gorm:"type:smallint;not null;default:0"`
	LinePrice float64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cart) TableName() string {
	return "carts"
}

func (CartItem) TableName() string {
	return "cart_items"
}

// BeforeSave keeps LinePrice = Quantity × Product.Price.
func (ci *CartItem) BeforeSave(tx *gorm.DB) error {
	price, err := ci.unitPrice(tx)
	if err != nil {
		return err
	}
	ci.LinePrice = LinePrice(ci.Quantity, price)
	return nil
}

func (ci *CartItem) unitPrice(tx *gorm.DB) (float64, error) {
	if ci.Product != nil && ci.Product.ID == ci.ProductID {
		return ci.Product.Price, nil
	}
	var p Product
	if err := tx.Session(&gorm.Session{NewDB: true}).Select("id", "price").First(&p, ci.ProductID).Error; err != nil {
		return 0, fmt.Errorf("load price of product %d: %w", ci.ProductID, err)
	}
	return p.Price, nil
}

// LinePrice multiplies in decimal so 3 × 0.1 stays 0.3.
func LinePrice(quantity int, unitPrice float64) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).InexactFloat64()
}
