// Package events carries order lifecycle notifications to the admin feed and the order-events topic.
package events

import (
	"context"
	"errors"
	"time"

	"shopmall-api/internal/model"

	"github.com/google/uuid"
)

type Type string

const (
	OrderCreated         Type = "order_created"
	StockUpdate          Type = "stock_update"
	OrderStatusUpdated   Type = "order_status_updated"
	PaymentStatusUpdated Type = "payment_status_updated"
)

type Item struct {
	ProductID uuid.UUID `json:"productId"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
}

type Event struct {
	Type          Type      `json:"type"`
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        uuid.UUID `json:"userId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	TotalAmount   int64     `json:"totalAmount"`
	Items         []Item    `json:"items,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// FromOrder snapshots the order fields every event carries
func FromOrder(t Type, order *model.Order, at time.Time) Event {
	e := Event{
		Type:          t,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		TotalAmount:   order.TotalAmount,
		Timestamp:     at,
	}
	if t == OrderCreated || t == StockUpdate {
		e.Items = make([]Item, 0, len(order.Items))
		for _, it := range order.Items {
			e.Items = append(e.Items, Item{ProductID: it.ProductID, SKU: it.SKU, Quantity: it.Quantity})
		}
	}
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Fanout publishes to each publisher in turn and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
