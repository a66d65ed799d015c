package models

import (
	"time"
)

// Order status constants
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// Payment method constants as stored on an order
const (
	OrderPaymentContract = "CONTRACT"
	OrderPaymentChapa    = "CHAPA"
)

type Order struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	UserID             uint        `json:"user_id"`
	User               User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	LoungeID           uint        `json:"lounge_id"`
	Lounge             Lounge      `json:"lounge,omitempty" gorm:"foreignKey:LoungeID"`
	TotalPrice         float64     `json:"total_price"`
	Status             string      `json:"status" gorm:"default:PENDING"`
	PaymentMethod      string      `json:"payment_method"`
	PaymentID          *uint       `json:"payment_id"`
	ContractID         *uint       `json:"contract_id"`
	Commission         float64     `json:"commission"`
	QRCode             string      `gorm:"uniqueIndex;default:null" json:"qr_code,omitempty"`
	QRCodeImage        string      `gorm:"type:text" json:"qr_code_image,omitempty"`
	EstimatedReadyTime *time.Time  `json:"estimated_ready_time,omitempty"`
	DeliveredAt        *time.Time  `json:"delivered_at,omitempty"`
	Notes              string      `json:"notes,omitempty"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	OrderItems         []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem is a frozen snapshot of a food item at order time. Name, Price
// and EstimatedTime are copied from the catalog and never re-read, so later
// menu edits do not change what the customer agreed to pay.
type OrderItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	OrderID       uint    `json:"order_id"`
	FoodID        uint    `json:"food_id"`
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	Subtotal      float64 `json:"subtotal"`
	EstimatedTime int     `json:"estimated_time"`
}
