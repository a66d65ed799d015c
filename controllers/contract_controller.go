package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateContract opens a prepaid contract with a lounge. The contract is
// created inactive alongside a pending gateway payment; the reconciler
// activates it once the payment settles.
func CreateContract(c *gin.Context) {
	utils.LogInfo("CreateContract called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		LoungeID     uint    `json:"lounge_id" binding:"required"`
		TotalAmount  float64 `json:"total_amount" binding:"required"`
		DurationDays int     `json:"duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}
	if req.TotalAmount <= 0 {
		utils.BadRequest(c, "Invalid amount", nil)
		return
	}

	var lounge models.Lounge
	if err := config.DB.First(&lounge, req.LoungeID).Error; err != nil {
		utils.NotFound(c, "Lounge not found")
		return
	}

	var existing models.Contract
	err := config.DB.Where("user_id = ? AND lounge_id = ? AND is_active = ? AND is_expired = ?",
		user.ID, req.LoungeID, true, false).First(&existing).Error
	if err == nil {
		utils.Conflict(c, "You already have an active contract with this lounge", nil)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Failed to check existing contracts", nil)
		return
	}

	duration := req.DurationDays
	if duration <= 0 {
		duration = config.App.ContractDurationDays
	}
	now := time.Now()

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	payment := models.Payment{
		UserID: user.ID,
		Amount: req.TotalAmount,
		Type:   models.PaymentTypeContract,
		Method: models.PaymentMethodChapa,
		Status: models.PaymentStatusPending,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create contract payment for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create contract", nil)
		return
	}

	contract := models.Contract{
		UserID:           user.ID,
		LoungeID:         req.LoungeID,
		TotalAmount:      req.TotalAmount,
		RemainingBalance: req.TotalAmount,
		StartDate:        now,
		ExpiresAt:        now.AddDate(0, 0, duration),
		PaymentID:        &payment.ID,
	}
	if err := tx.Create(&contract).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create contract for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create contract", nil)
		return
	}

	if err := tx.Model(&payment).Update("contract_id", contract.ID).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to link contract payment", nil)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to create contract", nil)
		return
	}
	utils.LogInfo("Created contract ID: %d for user ID: %d with lounge ID: %d", contract.ID, user.ID, req.LoungeID)

	utils.Created(c, "Contract created successfully. Complete payment to activate.", gin.H{
		"contract": contract,
		"payment": gin.H{
			"id":     payment.ID,
			"amount": payment.Amount,
			"status": payment.Status,
		},
	})
}

// RenewContract tops up an existing contract and extends its expiry from
// the stored expiry date, not from now, matching how lapsed renewals have
// always been credited. The added balance becomes spendable once the
// renewal payment settles and the reconciler reactivates the contract.
func RenewContract(c *gin.Context) {
	utils.LogInfo("RenewContract called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	contractID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid contract ID", nil)
		return
	}

	var req struct {
		Amount       float64 `json:"amount" binding:"required"`
		DurationDays int     `json:"duration_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. amount is required", err.Error())
		return
	}
	if req.Amount <= 0 {
		utils.BadRequest(c, "Invalid amount", nil)
		return
	}

	var contract models.Contract
	if err := config.DB.First(&contract, contractID).Error; err != nil {
		utils.NotFound(c, "Contract not found")
		return
	}
	if contract.UserID != user.ID {
		utils.Forbidden(c, "Not authorized to renew this contract")
		return
	}

	duration := req.DurationDays
	if duration <= 0 {
		duration = config.App.ContractDurationDays
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	payment := models.Payment{
		UserID:     user.ID,
		Amount:     req.Amount,
		Type:       models.PaymentTypeContract,
		Method:     models.PaymentMethodChapa,
		Status:     models.PaymentStatusPending,
		ContractID: &contract.ID,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		utils.LogError("Failed to create renewal payment for contract ID: %d: %v", contract.ID, err)
		utils.InternalServerError(c, "Failed to renew contract", nil)
		return
	}

	if appErr := creditContract(tx, &contract, req.Amount, duration); appErr != nil {
		tx.Rollback()
		utils.RespondWithAppError(c, appErr)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to renew contract", nil)
		return
	}
	utils.LogInfo("Renewed contract ID: %d, added %.2f, new expiry: %s", contract.ID, req.Amount, contract.ExpiresAt.Format("2006-01-02"))

	utils.Success(c, "Contract renewal initiated. Complete payment to activate.", gin.H{
		"contract": contract,
		"payment": gin.H{
			"id":     payment.ID,
			"amount": payment.Amount,
			"status": payment.Status,
		},
	})
}

// ListContracts returns the caller's contracts with an optional
// active/expired filter
func ListContracts(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	query := config.DB.Where("user_id = ?", user.ID)
	if loungeID := c.Query("lounge_id"); loungeID != "" {
		query = query.Where("lounge_id = ?", loungeID)
	}
	switch c.Query("status") {
	case "active":
		query = query.Where("is_active = ? AND is_expired = ?", true, false)
	case "expired":
		query = query.Where("is_expired = ?", true)
	}

	var contracts []models.Contract
	if err := query.Order("created_at DESC").Preload("Lounge").Find(&contracts).Error; err != nil {
		utils.InternalServerError(c, "Failed to retrieve contracts", nil)
		return
	}

	utils.Success(c, "Contracts retrieved successfully", gin.H{"contracts": contracts})
}

// GetContract returns one contract, owner or admin only
func GetContract(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	contractID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid contract ID", nil)
		return
	}

	var contract models.Contract
	if err := config.DB.Preload("Lounge").First(&contract, contractID).Error; err != nil {
		utils.NotFound(c, "Contract not found")
		return
	}

	if contract.UserID != user.ID && user.Role != models.RoleAdmin {
		utils.Forbidden(c, "Not authorized to view this contract")
		return
	}

	utils.Success(c, "Contract retrieved successfully", gin.H{"contract": contract})
}

// GetLoungeContract returns the caller's active contract with one lounge
func GetLoungeContract(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	loungeID, err := strconv.Atoi(c.Param("loungeId"))
	if err != nil {
		utils.BadRequest(c, "Invalid lounge ID", nil)
		return
	}

	var contract models.Contract
	if err := config.DB.Where("user_id = ? AND lounge_id = ? AND is_active = ? AND is_expired = ?",
		user.ID, loungeID, true, false).Preload("Lounge").First(&contract).Error; err != nil {
		utils.NotFound(c, "No active contract found with this lounge")
		return
	}

	utils.Success(c, "Contract retrieved successfully", gin.H{"contract": contract})
}
