package controllers

import (
	"errors"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VerifyPickupQR is called by lounge staff scanning a customer's QR code.
// It validates the token shape, resolves the order by exact token match and
// marks it delivered exactly once.
func VerifyPickupQR(c *gin.Context) {
	utils.LogInfo("VerifyPickupQR called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		QRCode string `json:"qr_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. qr_code is required", err.Error())
		return
	}

	// Structural check first; a malformed token never reaches the database
	if _, err := utils.ParseQRData(req.QRCode); err != nil {
		utils.LogError("Malformed QR code presented to user ID: %d", user.ID)
		utils.BadRequest(c, "Invalid QR code", nil)
		return
	}

	// The stored token is authoritative: a crafted token with a real order
	// ID but a fabricated suffix matches nothing here
	var order models.Order
	if err := config.DB.Preload("Lounge").Preload("User").
		Where("qr_code = ?", req.QRCode).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.InternalServerError(c, "Failed to look up order", nil)
		return
	}

	if user.Role != models.RoleAdmin && order.Lounge.OwnerID != user.ID {
		utils.LogError("User ID: %d attempted to verify order ID: %d of another lounge", user.ID, order.ID)
		utils.Forbidden(c, "Not authorized to verify this order")
		return
	}

	if appErr := markOrderDelivered(config.DB, &order); appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}
	utils.LogInfo("Order ID: %d marked delivered via QR by user ID: %d", order.ID, user.ID)

	services.NotifyOrderStatus(&order.User, order.ID, models.OrderStatusDelivered)

	utils.Success(c, "Order verified and marked as delivered", gin.H{"order": order})
}

// markOrderDelivered transitions an order to DELIVERED and stamps the
// delivery time. Idempotency guard: a second scan of the same code fails
// without touching delivered_at.
func markOrderDelivered(db *gorm.DB, order *models.Order) *utils.AppError {
	if order.Status == models.OrderStatusDelivered {
		return utils.BadRequestError("Order already delivered", nil)
	}
	if order.Status == models.OrderStatusCancelled {
		return utils.BadRequestError("Order has been cancelled", nil)
	}

	now := time.Now()
	res := db.Model(&models.Order{}).
		Where("id = ? AND status <> ?", order.ID, models.OrderStatusDelivered).
		Updates(map[string]interface{}{
			"status":       models.OrderStatusDelivered,
			"delivered_at": &now,
		})
	if res.Error != nil {
		return utils.InternalError("Failed to mark order delivered", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a race with a concurrent scan
		return utils.BadRequestError("Order already delivered", nil)
	}

	order.Status = models.OrderStatusDelivered
	order.DeliveredAt = &now
	return nil
}
