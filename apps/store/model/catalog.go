package model

// Category 商品分类
type Category struct {
	ID            uint          `gorm:"primaryKey"`
	Name          string        `gorm:"type:varchar(128);not null"`
	Slug          string        `gorm:"type:varchar(32);uniqueIndex;not null"`
	Image         string        `gorm:"type:varchar(255)"`
	Subcategories []Subcategory `gorm:"constraint:OnDelete:CASCADE"`
}

// Subcategory 子分类
type Subcategory struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"type:varchar(128);not null"`
	Slug       string `gorm:"type:varchar(32);uniqueIndex;not null"`
	Image      string `gorm:"type:varchar(255)"`
	CategoryID uint   `gorm:"not null;index"`
}

// Product 商品; Price is the unit price and must be at least 1.
type Product struct {
	ID            uint           `gorm:"primaryKey"`
	Name          string         `gorm:"type:varchar(128);not null"`
	Slug          string         `gorm:"type:varchar(32);uniqueIndex;not null"`
	Price         float64        `gorm:"not null;check:chk_products_price,price >= 1"`
	CategoryID    uint           `gorm:"not null;index"`
	Category      Category       `gorm:"constraint:OnDelete:CASCADE"`
	SubcategoryID uint           `gorm:"not null;index"`
	Subcategory   Subcategory    `gorm:"constraint:OnDelete:CASCADE"`
	Images        []ProductImage `gorm:"constraint:OnDelete:CASCADE"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Image     string `gorm:"type:varchar(255);not null"`
}

func (Category) TableName() string {
	return "categories"
}

func (Subcategory) TableName() string {
	return "subcategories"
}

func (Product) TableName() string {
	return "products"
}

func (ProductImage) TableName() string {
	return "product_images"
}
