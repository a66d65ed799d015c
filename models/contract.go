package models

import (
	"time"
)

// Contract is a prepaid balance a user holds against one lounge. The
// remaining balance is only ever mutated through the ledger helpers so the
// invariant 0 <= remaining_balance <= total_amount holds under concurrent
// orders. A new contract stays inactive until its funding payment completes.
type Contract struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `json:"user_id"`
	User             User      `json:"-" gorm:"foreignKey:UserID"`
	LoungeID         uint      `json:"lounge_id"`
	Lounge           Lounge    `json:"lounge,omitempty" gorm:"foreignKey:LoungeID"`
	TotalAmount      float64   `json:"total_amount"`
	RemainingBalance float64   `json:"remaining_balance"`
	StartDate        time.Time `json:"start_date"`
	ExpiresAt        time.Time `json:"expires_at"`
	IsExpired        bool      `json:"is_expired" gorm:"default:false"`
	IsActive         bool      `json:"is_active" gorm:"default:false"`
	PaymentID        *uint     `json:"payment_id"`
	RenewalCount     int       `json:"renewal_count" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Usable reports whether the contract can fund an order right now.
func (ct *Contract) Usable(now time.Time) bool {
	return ct.IsActive && !ct.IsExpired && now.Before(ct.ExpiresAt)
}
