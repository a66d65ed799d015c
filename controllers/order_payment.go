package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"gorm.io/gorm"
)

// createOrderPayment routes a new order to its payment path. A contract
// order debits the wallet synchronously and produces a completed payment;
// a chapa order produces a pending payment settled later by the reconciler.
// Runs inside the caller's transaction so a failure anywhere rolls back
// the debit and the payment row together.
func createOrderPayment(tx *gorm.DB, user models.User, method string, loungeID uint, contractID *uint, totalPrice, commission float64) (*models.Payment, *utils.AppError) {
	switch strings.ToLower(method) {
	case "contract":
		if contractID == nil {
			return nil, utils.BadRequestError("contract_id is required for contract payments", nil)
		}

		contract, appErr := debitContract(tx, user.ID, loungeID, *contractID, totalPrice)
		if appErr != nil {
			return nil, appErr
		}

		payment := models.Payment{
			UserID:     user.ID,
			Amount:     totalPrice,
			Type:       models.PaymentTypeOrder,
			Method:     models.PaymentMethodContractWallet,
			Status:     models.PaymentStatusCompleted,
			ContractID: &contract.ID,
			Commission: commission,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return nil, utils.InternalError("Failed to record payment", err)
		}
		return &payment, nil

	case "chapa":
		payment := models.Payment{
			UserID:     user.ID,
			Amount:     totalPrice,
			Type:       models.PaymentTypeOrder,
			Method:     models.PaymentMethodChapa,
			Status:     models.PaymentStatusPending,
			Commission: commission,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return nil, utils.InternalError("Failed to record payment", err)
		}
		return &payment, nil

	default:
		return nil, utils.BadRequestError("Invalid payment method", nil)
	}
}

// debitContract takes amount off a contract's remaining balance. The debit
// is a conditional UPDATE guarded by remaining_balance >= amount, so two
// concurrent orders can never both spend the same balance no matter how
// the surrounding transactions interleave.
func debitContract(tx *gorm.DB, userID, loungeID, contractID uint, amount float64) (*models.Contract, *utils.AppError) {
	var contract models.Contract
	err := tx.Where("id = ? AND user_id = ? AND lounge_id = ? AND is_active = ? AND is_expired = ?",
		contractID, userID, loungeID, true, false).First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Valid contract not found for this lounge", nil)
		}
		return nil, utils.InternalError("Failed to look up contract", err)
	}

	if !time.Now().Before(contract.ExpiresAt) {
		// Lapsed but not swept yet; flip the flags so the next lookup
		// fails fast even if this transaction rolls back
		if err := tx.Model(&contract).Updates(map[string]interface{}{
			"is_expired": true,
			"is_active":  false,
		}).Error; err != nil {
			return nil, utils.InternalError("Failed to expire contract", err)
		}
		return nil, utils.BadRequestError("Contract has expired", nil)
	}

	res := tx.Model(&models.Contract{}).
		Where("id = ? AND remaining_balance >= ?", contract.ID, amount).
		UpdateColumn("remaining_balance", gorm.Expr("remaining_balance - ?", amount))
	if res.Error != nil {
		return nil, utils.InternalError("Failed to debit contract", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, utils.BadRequestError("Insufficient contract balance", nil)
	}

	contract.RemainingBalance -= amount
	return &contract, nil
}

// creditContract applies a renewal: both totals grow and expiry extends
// from the stored expiry date, not from now, even for a lapsed contract.
func creditContract(tx *gorm.DB, contract *models.Contract, amount float64, durationDays int) *utils.AppError {
	newExpiry := contract.ExpiresAt.AddDate(0, 0, durationDays)

	if err := tx.Model(contract).Updates(map[string]interface{}{
		"total_amount":      gorm.Expr("total_amount + ?", amount),
		"remaining_balance": gorm.Expr("remaining_balance + ?", amount),
		"renewal_count":     gorm.Expr("renewal_count + 1"),
		"is_expired":        false,
		"expires_at":        newExpiry,
	}).Error; err != nil {
		return utils.InternalError("Failed to credit contract", err)
	}

	contract.TotalAmount += amount
	contract.RemainingBalance += amount
	contract.RenewalCount++
	contract.IsExpired = false
	contract.ExpiresAt = newExpiry
	return nil
}
