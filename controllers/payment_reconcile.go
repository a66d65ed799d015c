package controllers

import (
	"errors"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/abenezer-t/CampusEats/utils"
	"gorm.io/gorm"
)

// reconcilePayment drives a pending chapa payment to its final state. It is
// safe to call from the webhook and the user poll concurrently, and safe to
// call again for an already-completed payment: the completed transition is
// a conditional update, so the side effect (contract activation or order
// advance) fires at most once no matter how many times the gateway or the
// user knocks.
func reconcilePayment(db *gorm.DB, gateway *services.ChapaService, payment *models.Payment) *utils.AppError {
	if payment.Status == models.PaymentStatusCompleted {
		return nil
	}
	if payment.ChapaReference == "" {
		return utils.BadRequestError("Payment has not been initialized", nil)
	}

	result, err := gateway.VerifyPayment(payment.ChapaReference)
	if err != nil {
		if errors.Is(err, services.ErrGatewayUnavailable) {
			// Transient; the payment stays pending and the caller retries
			return utils.ServiceUnavailableError("Payment gateway is unreachable, please try again", err)
		}
		return utils.InternalError("Failed to verify payment", err)
	}

	if !result.Success {
		if result.Status == "pending" {
			return utils.BadRequestError("Payment has not completed yet", nil)
		}
		// Gateway-confirmed failure is terminal
		if err := db.Model(&models.Payment{}).
			Where("id = ? AND status <> ?", payment.ID, models.PaymentStatusCompleted).
			Update("status", models.PaymentStatusFailed).Error; err != nil {
			return utils.InternalError("Failed to record payment failure", err)
		}
		payment.Status = models.PaymentStatusFailed
		utils.LogInfo("Payment ID: %d marked failed, gateway status: %s", payment.ID, result.Status)
		return utils.BadRequestError("Payment verification failed", nil)
	}

	return applyPaymentSuccess(db, payment, result)
}

// applyPaymentSuccess completes the payment and applies exactly one side
// effect in the same transaction: a contract payment activates its
// contract, an order payment advances its order to PREPARING.
func applyPaymentSuccess(db *gorm.DB, payment *models.Payment, result *services.VerifyResult) *utils.AppError {
	tx := db.Begin()
	if tx.Error != nil {
		return utils.InternalError("Failed to start transaction", tx.Error)
	}

	res := tx.Model(&models.Payment{}).
		Where("id = ? AND status <> ?", payment.ID, models.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"status":               models.PaymentStatusCompleted,
			"chapa_transaction_id": result.TransactionID,
			"metadata":             string(result.Raw),
		})
	if res.Error != nil {
		tx.Rollback()
		return utils.InternalError("Failed to complete payment", res.Error)
	}
	if res.RowsAffected == 0 {
		// A racing webhook/poll got here first and owns the side effects
		tx.Rollback()
		payment.Status = models.PaymentStatusCompleted
		return nil
	}

	switch {
	case payment.Type == models.PaymentTypeContract && payment.ContractID != nil:
		if err := tx.Model(&models.Contract{}).
			Where("id = ?", *payment.ContractID).
			Updates(map[string]interface{}{
				"is_active":  true,
				"is_expired": false,
			}).Error; err != nil {
			tx.Rollback()
			return utils.InternalError("Failed to activate contract", err)
		}
		utils.LogInfo("Contract ID: %d activated by payment ID: %d", *payment.ContractID, payment.ID)

	case payment.Type == models.PaymentTypeOrder && payment.OrderID != nil:
		if err := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", *payment.OrderID, models.OrderStatusPending).
			Update("status", models.OrderStatusPreparing).Error; err != nil {
			tx.Rollback()
			return utils.InternalError("Failed to advance order", err)
		}
		utils.LogInfo("Order ID: %d advanced to preparing by payment ID: %d", *payment.OrderID, payment.ID)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.InternalError("Failed to commit payment completion", err)
	}

	payment.Status = models.PaymentStatusCompleted
	payment.ChapaTransactionID = result.TransactionID
	return nil
}
