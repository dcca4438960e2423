package model

import "gorm.io/gorm"

// Migrate 自动建表, parents before children so foreign keys resolve.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Category{},
		&Subcategory{},
		&Product{},
		&ProductImage{},
		&Cart{},
		&CartItem{},
	)
}
