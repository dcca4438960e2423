package repository

import (
	"go-grocery/apps/store/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository methods take the *gorm.DB to run on, usually a transaction
// opened by the cart service.
type CartRepository struct{}

func NewCartRepository() *CartRepository { return &CartRepository{} }

// GetOrCreateCart inserts the user's cart if it does not exist yet and
// returns it. Concurrent callers converge on the same row through the unique
// user_id index.
func (r *CartRepository) GetOrCreateCart(tx *gorm.DB, userID uint) (*model.Cart, error) {
	err := insertCartIfAbsent(tx).Create(&model.Cart{UserID: userID}).Error
	if err != nil {
		return nil, err
	}

	var c model.Cart
	if err := tx.Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureItem inserts an empty (quantity 0) line for product unless one exists.
func (r *CartRepository) EnsureItem(tx *gorm.DB, cartID uint, product *model.Product) error {
	item := model.CartItem{CartID: cartID, ProductID: product.ID, Product: product}
	return insertItemIfAbsent(tx).Create(&item).Error
}

// LockItem reads the line with SELECT ... FOR UPDATE. Returns
// gorm.ErrRecordNotFound when the product is not in the cart.
func (r *CartRepository) LockItem(tx *gorm.DB, cartID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := lockedItem(tx, cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func insertCartIfAbsent(tx *gorm.DB) *gorm.DB {
	return tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true})
}

func insertItemIfAbsent(tx *gorm.DB) *gorm.DB {
	return tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoNothing: true,
		})
}

func lockedItem(tx *gorm.DB, cartID, productID uint) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("cart_id = ? AND product_id = ?", cartID, productID)
}

// SaveItem writes the line back; BeforeSave recomputes the line price.
func (r *CartRepository) SaveItem(tx *gorm.DB, item *model.CartItem) error {
	return tx.Omit(clause.Associations).Save(item).Error
}

// DeleteItem reports how many rows went away (0 or 1).
func (r *CartRepository) DeleteItem(tx *gorm.DB, cartID, productID uint) (int64, error) {
	res := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *CartRepository) ClearItems(tx *gorm.DB, cartID uint) (int64, error) {
	res := tx.Where("cart_id = ?", cartID).Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}

// ListItems loads the lines with everything needed to render the product.
func (r *CartRepository) ListItems(tx *gorm.DB, cartID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := tx.
		Preload("Product").
		Preload("Product.Category").
		Preload("Product.Subcategory").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	return items, err
}

// Totals are NULL (nil) when the cart has no lines.
type Totals struct {
	TotalQuantity *int64
	TotalPrice    *float64
}

func (r *CartRepository) Totals(tx *gorm.DB, cartID uint) (Totals, error) {
	var t Totals
	err := tx.Model(&model.CartItem{}).
		Select("SUM(quantity) AS total_quantity, SUM(line_price) AS total_price").
		Where("cart_id = ?", cartID).
		Scan(&t).Error
	return t, err
}
