package service

import (
	"context"
	"fmt"

	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// CartService applies the cart rules. Every lookup is keyed by the calling
// user's own cart; there is no way to reach another user's lines.
type CartService struct {
	db      *gorm.DB
	carts   *repository.CartRepository
	catalog *repository.CatalogRepository
	media   Media
	events  EventPublisher
	tracer  trace.Tracer
}

func NewCartService(db *gorm.DB, carts *repository.CartRepository, catalog *repository.CatalogRepository, media Media, events EventPublisher) *CartService {
	if events == nil {
		events = nopPublisher{}
	}
	return &CartService{
		db:      db,
		carts:   carts,
		catalog: catalog,
		media:   media,
		events:  events,
		tracer:  otel.Tracer("go-grocery/store/cart"),
	}
}

func (s *CartService) startSpan(ctx context.Context, name string, userID, productID uint) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.Int64("user.id", int64(userID))}
	if productID != 0 {
		attrs = append(attrs, attribute.Int64("product.id", int64(productID)))
	}
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *CartService) product(ctx context.Context, productID uint) (*model.Product, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

// AddToCart adds one unit of the product, creating the cart and the line on
// first use. Concurrent calls for the same line serialise on the row lock, so
// each one lands exactly once.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint) (_ *CartItemDTO, err error) {
	ctx, span := s.startSpan(ctx, "CartService.AddToCart", userID, productID)
	defer func() { endSpan(span, err) }()

	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	var item *model.CartItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.GetOrCreateCart(tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		if err := s.carts.EnsureItem(tx, cart.ID, product); err != nil {
			return fmt.Errorf("ensure cart item: %w", err)
		}
		item, err = s.carts.LockItem(tx, cart.ID, product.ID)
		if err != nil {
			return fmt.Errorf("lock cart item: %w", err)
		}
		if item.Quantity >= model.MaxQuantity {
			return NewValidationError("product_quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", model.MaxQuantity))
		}
		item.Product = product
		item.Quantity++
		return s.carts.SaveItem(tx, item)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newCartEvent(EventItemAdded, userID, product.ID, item.Quantity, item.LinePrice))
	dto := s.media.CartItem(*item)
	return &dto, nil
}

// SetQuantity overwrites the quantity of a line already in the cart. A nil,
// zero or negative quantity is a validation error.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID uint, quantity *int) (_ *CartItemDTO, err error) {
	ctx, span := s.startSpan(ctx, "CartService.SetQuantity", userID, productID)
	defer func() { endSpan(span, err) }()

	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}

	var item *model.CartItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.GetOrCreateCart(tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		item, err = s.carts.LockItem(tx, cart.ID, product.ID)
		if err != nil {
			return notFound(err, "cart item")
		}
		if err := validateQuantity(quantity); err != nil {
			return err
		}
		item.Product = product
		item.Quantity = *quantity
		return s.carts.SaveItem(tx, item)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, newCartEvent(EventItemUpdated, userID, product.ID, item.Quantity, item.LinePrice))
	dto := s.media.CartItem(*item)
	return &dto, nil
}

func validateQuantity(quantity *int) error {
	switch {
	case quantity == nil || *quantity == 0:
		return NewValidationError("product_quantity", "Product quantity is required.")
	case *quantity < 0:
		return NewValidationError("product_quantity", "Ensure this value is greater than or equal to 1.")
	case *quantity > model.MaxQuantity:
		return NewValidationError("product_quantity", fmt.Sprintf("Ensure this value is less than or equal to %d.", model.MaxQuantity))
	}
	return nil
}

// RemoveFromCart deletes the product's line; ErrNotFound if there is none.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) (err error) {
	ctx, span := s.startSpan(ctx, "CartService.RemoveFromCart", userID, productID)
	defer func() { endSpan(span, err) }()

	product, err := s.product(ctx, productID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.GetOrCreateCart(tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		n, err := s.carts.DeleteItem(tx, cart.ID, product.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return &notFoundError{what: "cart item"}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, newCartEvent(EventItemRemoved, userID, product.ID, 0, 0))
	return nil
}

// ViewCart returns the lines and their totals, creating an empty cart for a
// first-time user.
func (s *CartService) ViewCart(ctx context.Context, userID uint) (_ *CartDTO, err error) {
	ctx, span := s.startSpan(ctx, "CartService.ViewCart", userID, 0)
	defer func() { endSpan(span, err) }()

	var (
		items  []model.CartItem
		totals repository.Totals
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.GetOrCreateCart(tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		if items, err = s.carts.ListItems(tx, cart.ID); err != nil {
			return err
		}
		totals, err = s.carts.Totals(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := &CartDTO{
		Products:      make([]CartItemDTO, 0, len(items)),
		TotalQuantity: totals.TotalQuantity,
		TotalPrice:    totals.TotalPrice,
	}
	for _, it := range items {
		out.Products = append(out.Products, s.media.CartItem(it))
	}
	return out, nil
}

// ClearCart removes every line from the user's cart.
func (s *CartService) ClearCart(ctx context.Context, userID uint) (err error) {
	ctx, span := s.startSpan(ctx, "CartService.ClearCart", userID, 0)
	defer func() { endSpan(span, err) }()

	var removed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.carts.GetOrCreateCart(tx, userID)
		if err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		removed, err = s.carts.ClearItems(tx, cart.ID)
		return err
	})
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.Int64("cart.items_removed", removed))
	s.publish(ctx, newCartEvent(EventCleared, userID, 0, 0, 0))
	return nil
}
