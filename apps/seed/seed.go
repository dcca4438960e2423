package main

import (
	"context"

	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedProduct struct {
	Name, Slug string
	Price      float64
	Images     []string
}

type seedSubcategory struct {
	Name, Slug, Image string
	Products          []seedProduct
}

type seedCategory struct {
	Name, Slug, Image string
	Subcategories     []seedSubcategory
}

// demoCatalog 演示商品
var demoCatalog = []seedCategory{
	{
		Name: "Fruits", Slug: "fruits", Image: "categories/fruits.jpg",
		Subcategories: []seedSubcategory{
			{Name: "Citrus", Slug: "citrus", Image: "subcategories/citrus.jpg", Products: []seedProduct{
				{Name: "Orange", Slug: "orange", Price: 89.9, Images: []string{"products/orange_s.jpg", "products/orange_m.jpg", "products/orange_l.jpg"}},
				{Name: "Lemon", Slug: "lemon", Price: 59.5, Images: []string{"products/lemon.jpg"}},
			}},
			{Name: "Berries", Slug: "berries", Image: "subcategories/berries.jpg", Products: []seedProduct{
				{Name: "Strawberry", Slug: "strawberry", Price: 249, Images: []string{"products/strawberry.jpg"}},
			}},
		},
	},
	{
		Name: "Vegetables", Slug: "vegetables", Image: "categories/vegetables.jpg",
		Subcategories: []seedSubcategory{
			{Name: "Roots", Slug: "roots", Products: []seedProduct{
				{Name: "Carrot", Slug: "carrot", Price: 39.9, Images: []string{"products/carrot.jpg"}},
				{Name: "Potato", Slug: "potato", Price: 29.9, Images: []string{"products/potato.jpg"}},
			}},
		},
	},
}

// seedCatalog creates the demo catalog; rows that exist (by slug) are reused,
// so running it twice changes nothing.
func seedCatalog(ctx context.Context, db *gorm.DB) (int, error) {
	products := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, sc := range demoCatalog {
			cat := model.Category{Name: sc.Name, Slug: sc.Slug, Image: sc.Image}
			if err := tx.Where(model.Category{Slug: sc.Slug}).Attrs(cat).FirstOrCreate(&cat).Error; err != nil {
				return err
			}
			for _, ss := range sc.Subcategories {
				sub := model.Subcategory{Name: ss.Name, Slug: ss.Slug, Image: ss.Image, CategoryID: cat.ID}
				if err := tx.Where(model.Subcategory{Slug: ss.Slug}).Attrs(sub).FirstOrCreate(&sub).Error; err != nil {
					return err
				}
				for _, sp := range ss.Products {
					p := model.Product{Name: sp.Name, Slug: sp.Slug, Price: sp.Price, CategoryID: cat.ID, SubcategoryID: sub.ID}
					res := tx.Where(model.Product{Slug: sp.Slug}).Attrs(p).FirstOrCreate(&p)
					if res.Error != nil {
						return res.Error
					}
					products++
					if res.RowsAffected == 0 {
						continue
					}
					for _, img := range sp.Images {
						if err := tx.Create(&model.ProductImage{ProductID: p.ID, Image: img}).Error; err != nil {
							return err
						}
					}
				}
			}
		}
		return nil
	})
	return products, err
}

// seedUser creates the demo account with a bcrypt password if it is missing.
func seedUser(ctx context.Context, users *repository.UserRepository, username, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, Password: string(hash), IsActive: true}
	if err := users.FirstOrCreate(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
