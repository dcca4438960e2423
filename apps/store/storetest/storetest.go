// Package storetest opens a migrated in-memory database and creates the
// fixtures the store tests share.
package storetest

import (
	"fmt"
	"testing"

	"go-grocery/apps/store/model"
	"go-grocery/pkg/config"
	"go-grocery/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      ":memory:",
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()

	u := &model.User{Username: username, Password: "!", IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

// Catalog is one category, its subcategory and products inside it.
type Catalog struct {
	Category    *model.Category
	Subcategory *model.Subcategory
	Products    []*model.Product
}

// CreateCatalog creates category_1 / subcategory_1 and one product per price,
// named product_1, product_2, ...
func CreateCatalog(t testing.TB, db *gorm.DB, prices ...float64) *Catalog {
	t.Helper()

	cat := &model.Category{Name: "Category 1", Slug: "category_1", Image: "categories/fruit.png"}
	require.NoError(t, db.Create(cat).Error)

	sub := &model.Subcategory{Name: "Subcategory 1", Slug: "subcategory_1", CategoryID: cat.ID}
	require.NoError(t, db.Create(sub).Error)

	c := &Catalog{Category: cat, Subcategory: sub}
	for i, price := range prices {
		p := &model.Product{
			Name:          fmt.Sprintf("Product %d", i+1),
			Slug:          fmt.Sprintf("product_%d", i+1),
			Price:         price,
			CategoryID:    cat.ID,
			SubcategoryID: sub.ID,
		}
		require.NoError(t, db.Create(p).Error)
		require.NoError(t, db.Create(&model.ProductImage{ProductID: p.ID, Image: fmt.Sprintf("products/%s.jpg", p.Slug)}).Error)
		c.Products = append(c.Products, p)
	}
	return c
}
