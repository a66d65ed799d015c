package models

import (
	"time"
)

// Payment type constants
const (
	PaymentTypeOrder    = "ORDER"
	PaymentTypeContract = "CONTRACT"
	PaymentTypeRefund   = "REFUND"
)

// Payment method constants
const (
	PaymentMethodChapa          = "chapa"
	PaymentMethodContractWallet = "contract-wallet"
)

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment represents one money movement. Contract-wallet payments are born
// completed; chapa payments stay pending until the reconciler confirms them.
type Payment struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `json:"user_id"`
	User               User      `json:"-" gorm:"foreignKey:UserID"`
	Amount             float64   `json:"amount"`
	Type               string    `json:"type"`
	Method             string    `json:"method"`
	Status             string    `json:"status" gorm:"default:pending"`
	OrderID            *uint     `json:"order_id"`
	ContractID         *uint     `json:"contract_id"`
	Commission         float64   `json:"commission"`
	ChapaReference     string    `gorm:"uniqueIndex;default:null" json:"chapa_reference,omitempty"`
	ChapaTransactionID string    `json:"chapa_transaction_id,omitempty"`
	Metadata           string    `gorm:"type:text" json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
