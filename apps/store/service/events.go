package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	EventItemAdded   = "cart.item_added"
	EventItemUpdated = "cart.item_updated"
	EventItemRemoved = "cart.item_removed"
	EventCleared     = "cart.cleared"
)

// CartEvent is published after a cart mutation commits.
type CartEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	ProductID  uint      `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity"`
	LinePrice  float64   `json:"line_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher sends a JSON body under a routing key. *mq.Rabbit fits.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, body interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) PublishJSON(context.Context, string, interface{}) error { return nil }

func newCartEvent(typ string, userID, productID uint, quantity int, linePrice float64) CartEvent {
	return CartEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     userID,
		ProductID:  productID,
		Quantity:   quantity,
		LinePrice:  linePrice,
		OccurredAt: time.Now().UTC(),
	}
}

// publish never fails the request; the cart change is already committed.
func (s *CartService) publish(ctx context.Context, ev CartEvent) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := s.events.PublishJSON(pubCtx, ev.Type, ev); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("event", ev.Type).Uint("user_id", ev.UserID).Msg("publish cart event failed")
	}
}
