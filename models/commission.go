package models

import (
	"time"
)

// Commission status constants
const (
	CommissionStatusPending   = "pending"
	CommissionStatusPaid      = "paid"
	CommissionStatusCancelled = "cancelled"
)

// Commission is the platform's cut of one order. Rate and OrderAmount are a
// point-in-time snapshot taken when the order is created; a later change to
// the configured rate never touches existing rows.
type Commission struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     uint       `gorm:"uniqueIndex" json:"order_id"`
	Order       Order      `json:"-" gorm:"foreignKey:OrderID"`
	LoungeID    uint       `json:"lounge_id"`
	Amount      float64    `json:"amount"`
	Rate        float64    `json:"rate"`
	OrderAmount float64    `json:"order_amount"`
	Recipient   string     `json:"recipient" gorm:"default:system"`
	Status      string     `json:"status" gorm:"default:pending"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
