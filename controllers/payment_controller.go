package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
)

// InitializePayment opens a Chapa checkout for a pending payment and
// stores the transaction reference used by the webhook and poll paths.
func InitializePayment(c *gin.Context) {
	utils.LogInfo("InitializePayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		PaymentID uint   `json:"payment_id" binding:"required"`
		ReturnURL string `json:"return_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. payment_id is required", err.Error())
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, req.PaymentID).Error; err != nil {
		utils.NotFound(c, "Payment not found")
		return
	}

	if payment.UserID != user.ID {
		utils.Forbidden(c, "Not authorized")
		return
	}
	if payment.Status == models.PaymentStatusCompleted {
		utils.BadRequest(c, "Payment already completed", nil)
		return
	}
	if payment.Method != models.PaymentMethodChapa {
		utils.BadRequest(c, "Payment does not use the gateway", nil)
		return
	}

	reference := payment.ChapaReference
	if reference == "" {
		reference = fmt.Sprintf("CE-%d-%d", time.Now().Unix(), payment.ID)
		if err := config.DB.Model(&payment).Update("chapa_reference", reference).Error; err != nil {
			utils.LogError("Failed to store reference for payment ID: %d: %v", payment.ID, err)
			utils.InternalServerError(c, "Failed to initialize payment", nil)
			return
		}
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = config.App.FrontendURL
	}

	firstName, lastName := splitName(user.Name)
	result, err := services.NewChapaService().InitializePayment(services.InitializeRequest{
		Amount:      payment.Amount,
		Email:       user.Email,
		FirstName:   firstName,
		LastName:    lastName,
		Phone:       user.Phone,
		Reference:   reference,
		ReturnURL:   returnURL,
		Description: fmt.Sprintf("Payment for %s", strings.ToLower(payment.Type)),
	})
	if err != nil {
		utils.LogError("Chapa initialization failed for payment ID: %d: %v", payment.ID, err)
		utils.ServiceUnavailable(c, "Failed to initialize payment, please try again")
		return
	}
	utils.LogInfo("Initialized Chapa checkout for payment ID: %d, reference: %s", payment.ID, reference)

	utils.Success(c, "Payment initialized successfully", gin.H{
		"checkout_url": result.CheckoutURL,
		"reference":    reference,
	})
}

// ChapaWebhook receives settlement callbacks. Delivery is at-least-once,
// so an already-processed reference answers success without re-applying
// side effects.
func ChapaWebhook(c *gin.Context) {
	var req struct {
		TxRef         string `json:"tx_ref"`
		Status        string `json:"status"`
		TransactionID string `json:"transaction_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.TxRef == "" {
		utils.BadRequest(c, "Invalid webhook payload", nil)
		return
	}
	utils.LogInfo("Chapa webhook received for reference: %s, status: %s", req.TxRef, req.Status)

	var payment models.Payment
	if err := config.DB.Where("chapa_reference = ?", req.TxRef).First(&payment).Error; err != nil {
		utils.LogError("Payment not found for webhook reference: %s", req.TxRef)
		utils.NotFound(c, "Payment not found")
		return
	}

	if payment.Status == models.PaymentStatusCompleted {
		utils.Success(c, "Payment already processed", nil)
		return
	}

	if appErr := reconcilePayment(config.DB, services.NewChapaService(), &payment); appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}

	utils.Success(c, "Payment processed successfully", nil)
}

// VerifyPaymentStatus is the user-initiated poll: it re-checks a pending
// payment against the gateway and reports the current state.
func VerifyPaymentStatus(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	paymentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid payment ID", nil)
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, paymentID).Error; err != nil {
		utils.NotFound(c, "Payment not found")
		return
	}

	if payment.UserID != user.ID && user.Role != models.RoleAdmin {
		utils.Forbidden(c, "Not authorized")
		return
	}

	if payment.Status == models.PaymentStatusCompleted {
		utils.Success(c, "Payment completed", gin.H{"status": payment.Status, "payment": payment})
		return
	}

	if payment.ChapaReference != "" {
		if appErr := reconcilePayment(config.DB, services.NewChapaService(), &payment); appErr != nil {
			// The poll reports state rather than failing on a declined
			// payment; only transient gateway problems surface as errors
			if appErr.Code >= 500 {
				utils.RespondWithAppError(c, appErr)
				return
			}
		}
	}

	utils.Success(c, "Payment status retrieved", gin.H{"status": payment.Status, "payment": payment})
}

// ListPayments returns the caller's payment history
func ListPayments(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	query := config.DB.Model(&models.Payment{}).Where("user_id = ?", user.ID)
	if paymentType := c.Query("type"); paymentType != "" {
		query = query.Where("type = ?", strings.ToUpper(paymentType))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToLower(status))
	}

	pagination := utils.NewPagination(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count payments", nil)
		return
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&payments).Error; err != nil {
		utils.InternalServerError(c, "Failed to retrieve payments", nil)
		return
	}

	utils.SuccessWithPagination(c, "Payments retrieved successfully", payments, total, pagination.Page, pagination.Limit)
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "CampusEats", "User"
	}
	if len(parts) == 1 {
		return parts[0], "User"
	}
	return parts[0], strings.Join(parts[1:], " ")
}
