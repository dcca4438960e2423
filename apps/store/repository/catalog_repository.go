package repository

import (
	"context"
	"strings"

	"go-grocery/apps/store/model"

	"gorm.io/gorm"
)

type CatalogRepository struct{ DB *gorm.DB }

func NewCatalogRepository(db *gorm.DB) *CatalogRepository { return &CatalogRepository{DB: db} }

func (r *CatalogRepository) ListCategories(ctx context.Context, offset, limit int) ([]model.Category, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&model.Category{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []model.Category
	err := r.DB.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&categories).Error
	return categories, total, err
}

// GetCategory returns gorm.ErrRecordNotFound for unknown ids.
func (r *CatalogRepository) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	var c model.Category
	err := r.DB.WithContext(ctx).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) withProductDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Subcategory").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

// ListProducts pages through products, optionally filtered by a name match.
func (r *CatalogRepository) ListProducts(ctx context.Context, search string, offset, limit int) ([]model.Product, int64, error) {
	query := r.DB.WithContext(ctx).Model(&model.Product{})
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	// the count and the page share filters but not clauses
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	err := r.withProductDetail(query).Order("id").Offset(offset).Limit(limit).Find(&products).Error
	return products, total, err
}

// GetProduct returns gorm.ErrRecordNotFound for unknown ids.
func (r *CatalogRepository) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := r.withProductDetail(r.DB.WithContext(ctx)).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByIDs loads products in no particular order; ids that do not exist
// are skipped.
func (r *CatalogRepository) ProductsByIDs(ctx context.Context, ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []model.Product
	err := r.withProductDetail(r.DB.WithContext(ctx)).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// EachProductBatch walks all products in id order, batchSize at a time.
func (r *CatalogRepository) EachProductBatch(ctx context.Context, batchSize int, fn func([]model.Product) error) error {
	var batch []model.Product
	res := r.withProductDetail(r.DB.WithContext(ctx)).Order("id").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return res.Error
}
