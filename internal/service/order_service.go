package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopmall-api/internal/events"
	"shopmall-api/internal/model"
	"shopmall-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	CreateOrder(ctx context.Context, caller Caller, req *CreateOrderRequest) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *UpdateOrderStatusRequest) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, req *UpdatePaymentStatusRequest) (*model.Order, error)
	GetOrderByID(caller Caller, id uuid.UUID) (*model.Order, error)
	ListUserOrders(caller Caller, page Pagination) ([]model.Order, int64, error)
}

type OrderItemRequest struct {
	ProductID       string            `json:"productId" validate:"notblank"`
	Quantity        int               `json:"quantity" validate:"min=1"`
	SelectedOptions map[string]string `json:"selectedOptions"`
}

type CreateOrderRequest struct {
	ShippingAddress *model.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   model.PaymentMethod    `json:"paymentMethod" validate:"required"`
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,dive"`
	Notes           string                 `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status          model.OrderStatus `json:"status"`
	TrackingNumber  string            `json:"trackingNumber"`
	CancelledReason string            `json:"cancelledReason"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	PaymentID     string              `json:"paymentId"`
}

type orderService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	tx          repository.Transactor
	publisher   events.Publisher
	log         *zap.Logger
	now         func() time.Time
}

func NewOrderService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	tx repository.Transactor,
	publisher events.Publisher,
	log *zap.Logger,
) OrderService {
	return &orderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		tx:          tx,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, caller Caller, req *CreateOrderRequest) (*model.Order, error) {
	// 1. Validate request shape
	if err := validate(req); err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, invalid("unsupported payment method %q", req.PaymentMethod)
	}

	// 2. Price every line against the current catalog
	items := make([]model.OrderItem, 0, len(req.Items))
	var subtotal int64
	for _, line := range req.Items {
		productID, err := ParseID(strings.TrimSpace(line.ProductID))
		if err != nil {
			return nil, err
		}

		product, err := s.productRepo.FindByID(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
			}
			return nil, err
		}
		if product.Stock < line.Quantity {
			return nil, &InsufficientStockError{ProductName: product.Name, Remaining: product.Stock}
		}

		unitPrice := product.UnitPrice(line.SelectedOptions)
		if unitPrice < 0 {
			return nil, invalid("price of %s with the selected options is below zero", product.Name)
		}
		total := unitPrice * int64(line.Quantity)
		subtotal += total

		items = append(items, model.OrderItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductImage:    product.Image,
			SKU:             product.SKU,
			SelectedOptions: line.SelectedOptions,
			Quantity:        line.Quantity,
			UnitPrice:       unitPrice,
			TotalPrice:      total,
		})
	}

	// 3. Fixed pricing policy
	shippingFee := model.DefaultShippingFee
	discount := model.DefaultDiscount

	order := &model.Order{
		OrderNumber:     model.NewOrderNumber(s.now()),
		Status:          model.OrderPending,
		UserID:          caller.ID,
		CustomerName:    caller.Name,
		CustomerEmail:   caller.Email,
		CustomerPhone:   req.ShippingAddress.Phone,
		ShippingAddress: *req.ShippingAddress,
		Items:           items,
		Subtotal:        subtotal,
		ShippingFee:     shippingFee,
		Discount:        discount,
		TotalAmount:     subtotal + shippingFee - discount,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentPending,
		Notes:           req.Notes,
	}
	order.CreatedBy = caller.auditID()
	order.UpdatedBy = caller.auditID()

	// 4+5. Persist and decrement atomically. A decrement that matches no row
	// means a concurrent order took the stock; everything rolls back.
	err := s.tx.WithinTransaction(func(products repository.ProductRepository, orders repository.OrderRepository) error {
		if err := orders.Create(order); err != nil {
			return err
		}
		for _, item := range order.Items {
			ok, err := products.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				remaining := 0
				if fresh, err := products.FindByID(item.ProductID); err == nil {
					remaining = fresh.Stock
				}
				return &InsufficientStockError{ProductName: item.ProductName, Remaining: remaining}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", caller.ID.String()),
		zap.Int("items", len(order.Items)),
		zap.Int64("total_amount", order.TotalAmount),
	)

	s.publish(ctx, events.OrderCreated, order)
	s.publish(ctx, events.StockUpdate, order)

	return order, nil
}

// UpdateOrderStatus accepts any status at any time; it stamps the date that
// belongs to the new status and never clears earlier ones.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *UpdateOrderStatusRequest) (*model.Order, error) {
	if !req.Status.Valid() {
		return nil, invalid("invalid order status %q", req.Status)
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	now := s.now()
	order.Status = req.Status
	columns := []string{"status"}

	switch req.Status {
	case model.OrderShipped:
		order.ShippedDate = &now
		columns = append(columns, "shipped_date")
		if req.TrackingNumber != "" {
			order.TrackingNumber = req.TrackingNumber
			columns = append(columns, "tracking_number")
		}
	case model.OrderDelivered:
		order.DeliveredDate = &now
		columns = append(columns, "delivered_date")
	case model.OrderCancelled:
		order.CancelledDate = &now
		columns = append(columns, "cancelled_date")
		if req.CancelledReason != "" {
			order.CancelledReason = req.CancelledReason
			columns = append(columns, "cancelled_reason")
		}
	}

	if err := s.orderRepo.Update(order, columns...); err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	s.log.Info("order status updated", zap.String("order_id", order.ID.String()), zap.String("status", string(order.Status)))
	s.publish(ctx, events.OrderStatusUpdated, order)
	return order, nil
}

// UpdatePaymentStatus records the gateway result. Completion forces the order
// to confirmed whatever its current status.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, req *UpdatePaymentStatusRequest) (*model.Order, error) {
	if !req.PaymentStatus.Valid() {
		return nil, invalid("invalid payment status %q", req.PaymentStatus)
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	order.PaymentStatus = req.PaymentStatus
	columns := []string{"payment_status"}

	if req.PaymentStatus == model.PaymentCompleted {
		now := s.now()
		order.PaymentDate = &now
		order.Status = model.OrderConfirmed
		columns = append(columns, "payment_date", "status")
		if req.PaymentID != "" {
			order.PaymentID = req.PaymentID
			columns = append(columns, "payment_id")
		}
	}

	if err := s.orderRepo.Update(order, columns...); err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}

	s.log.Info("payment status updated",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_status", string(order.PaymentStatus)),
	)
	s.publish(ctx, events.PaymentStatusUpdated, order)
	return order, nil
}

func (s *orderService) GetOrderByID(caller Caller, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	if !caller.IsAdmin() && !order.IsOwnedBy(caller.ID) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderService) ListUserOrders(caller Caller, page Pagination) ([]model.Order, int64, error) {
	return s.orderRepo.FindByUser(caller.ID, page.Offset(), page.Limit)
}

// publish runs after the write has committed; failures are logged only
func (s *orderService) publish(ctx context.Context, t events.Type, order *model.Order) {
	if err := s.publisher.Publish(ctx, events.FromOrder(t, order, s.now())); err != nil {
		s.log.Warn("publish order event failed",
			zap.String("type", string(t)),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}
