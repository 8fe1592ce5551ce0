package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PayCard         PaymentMethod = "card"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayNaverPay     PaymentMethod = "naver_pay"
	PayKakaoPay     PaymentMethod = "kakao_pay"
	PayPhone        PaymentMethod = "phone"
	PayPoint        PaymentMethod = "point"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCard, PayBankTransfer, PayNaverPay, PayKakaoPay, PayPhone, PayPoint:
		return true
	}
	return false
}

type ShippingAddress struct {
	RecipientName   string `gorm:"type:varchar(100)" json:"recipientName" validate:"notblank"`
	Phone           string `gorm:"type:varchar(30)" json:"phone" validate:"notblank"`
	PostalCode      string `gorm:"type:varchar(20)" json:"postalCode" validate:"notblank"`
	Address         string `gorm:"type:text" json:"address" validate:"notblank"`
	DetailAddress   string `gorm:"type:text" json:"detailAddress"`
	DeliveryRequest string `gorm:"type:text" json:"deliveryRequest"`
}

// OrderItem is a snapshot of the product taken when the order was placed
type OrderItem struct {
	ProductID       uuid.UUID         `json:"productId"`
	ProductName     string            `json:"productName"`
	ProductImage    string            `json:"productImage"`
	SKU             string            `json:"sku"`
	SelectedOptions map[string]string `json:"selectedOptions"`
	Quantity        int               `json:"quantity"`
	UnitPrice       int64             `json:"unitPrice"`
	TotalPrice      int64             `json:"totalPrice"`
}

type Order struct {
	BaseModel
	OrderNumber string      `gorm:"type:varchar(40);uniqueIndex;not null" json:"orderNumber"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`

	// Customer snapshot
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	CustomerName  string    `gorm:"type:varchar(255);not null" json:"customerName"`
	CustomerEmail string    `gorm:"type:varchar(255);not null" json:"customerEmail"`
	CustomerPhone string    `gorm:"type:varchar(30);not null" json:"customerPhone"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	Items           []OrderItem     `gorm:"type:jsonb;serializer:json;not null" json:"items"`

	// Amounts
	Subtotal    int64 `gorm:"not null;check:subtotal >= 0" json:"subtotal"`
	ShippingFee int64 `gorm:"not null;default:0;check:shipping_fee >= 0" json:"shippingFee"`
	Discount    int64 `gorm:"not null;default:0;check:discount >= 0" json:"discount"`
	TotalAmount int64 `gorm:"not null;check:total_amount >= 0" json:"totalAmount"`

	// Payment
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:pending;index" json:"paymentStatus"`
	PaymentID     string        `gorm:"type:varchar(255)" json:"paymentId,omitempty"`
	PaymentDate   *time.Time    `json:"paymentDate,omitempty"`

	// Delivery
	TrackingNumber string     `gorm:"type:varchar(100)" json:"trackingNumber,omitempty"`
	ShippedDate    *time.Time `json:"shippedDate,omitempty"`
	DeliveredDate  *time.Time `json:"deliveredDate,omitempty"`

	// Cancellation / refund
	CancelledDate   *time.Time `json:"cancelledDate,omitempty"`
	CancelledReason string     `gorm:"type:text" json:"cancelledReason,omitempty"`
	RefundAmount    *int64     `json:"refundAmount,omitempty"`
	RefundDate      *time.Time `json:"refundDate,omitempty"`

	Notes string `gorm:"type:text" json:"notes"`
}

const (
	// Free shipping and no discounts under the current pricing policy
	DefaultShippingFee int64 = 0
	DefaultDiscount    int64 = 0
)

// NewOrderNumber formats ORD-YYYYMMDD-HHMMSS-NNNN with four random digits
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102-150405"), rand.Intn(10000))
}

// IsOwnedBy reports whether the order belongs to the given user
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}
