package service

import (
	"strings"

	"go-grocery/apps/store/model"
)

type SubcategoryDTO struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Slug  string  `json:"slug"`
	Image *string `json:"image"`
}

type CategoryDTO struct {
	ID            uint             `json:"id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Image         *string          `json:"image"`
	Subcategories []SubcategoryDTO `json:"subcategories"`
}

type ImageDTO struct {
	Image string `json:"image"`
}

// ProductDTO names its category and subcategory instead of nesting them.
type ProductDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory"`
	Price       float64    `json:"price"`
	Images      []ImageDTO `json:"images"`
}

type CartItemDTO struct {
	Product         ProductDTO `json:"product"`
	ProductQuantity int        `json:"product_quantity"`
	ProductPrice    float64    `json:"product_price"`
}

// CartDTO totals are null for an empty cart.
type CartDTO struct {
	Products      []CartItemDTO `json:"products"`
	TotalQuantity *int64        `json:"total_quantity"`
	TotalPrice    *float64      `json:"total_price"`
}

// Page is one page of a list and the size of the whole list.
type Page[T any] struct {
	Count   int64
	Results []T
}

// Media turns stored image paths into URLs under BaseURL.
type Media struct {
	BaseURL string
}

func (m Media) url(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(m.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (m Media) optionalURL(path string) *string {
	if path == "" {
		return nil
	}
	u := m.url(path)
	return &u
}

func (m Media) Category(c model.Category) CategoryDTO {
	subs := make([]SubcategoryDTO, 0, len(c.Subcategories))
	for _, s := range c.Subcategories {
		subs = append(subs, m.Subcategory(s))
	}
	return CategoryDTO{
		ID:            c.ID,
		Name:          c.Name,
		Slug:          c.Slug,
		Image:         m.optionalURL(c.Image),
		Subcategories: subs,
	}
}

func (m Media) Subcategory(s model.Subcategory) SubcategoryDTO {
	return SubcategoryDTO{
		ID:    s.ID,
		Name:  s.Name,
		Slug:  s.Slug,
		Image: m.optionalURL(s.Image),
	}
}

func (m Media) Product(p model.Product) ProductDTO {
	images := make([]ImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageDTO{Image: m.url(img.Image)})
	}
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    p.Category.Name,
		Subcategory: p.Subcategory.Name,
		Price:       p.Price,
		Images:      images,
	}
}

func (m Media) CartItem(it model.CartItem) CartItemDTO {
	var product ProductDTO
	if it.Product != nil {
		product = m.Product(*it.Product)
	}
	return CartItemDTO{
		Product:         product,
		ProductQuantity: it.Quantity,
		ProductPrice:    it.LinePrice,
	}
}
