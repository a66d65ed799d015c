package controllers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type orderItemRequest struct {
	FoodID   uint `json:"food_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type createOrderRequest struct {
	LoungeID      uint               `json:"lounge_id" binding:"required"`
	Items         []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	ContractID    *uint              `json:"contract_id"`
	Notes         string             `json:"notes"`
}

// CreateOrder prices the requested items against the live menu, settles or
// opens payment, and issues the pickup QR code, all in one transaction.
func CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid order request from user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		utils.InternalServerError(c, "Failed to start transaction", nil)
		return
	}

	order, appErr := buildOrder(tx, user, req, config.App.CommissionRate)
	if appErr != nil {
		tx.Rollback()
		utils.LogError("Order creation failed for user ID: %d: %v", user.ID, appErr)
		utils.RespondWithAppError(c, appErr)
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.LogError("Failed to commit order for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}
	utils.LogInfo("Created order ID: %d for user ID: %d, total: %.2f", order.ID, user.ID, order.TotalPrice)

	// Best effort; a push failure must never fail the order
	services.NotifyOrderStatus(&user, order.ID, order.Status)

	utils.Created(c, "Order created successfully", gin.H{"order": order})
}

// buildOrder runs the whole order-creation pipeline inside tx: catalog
// pricing with frozen snapshots, payment selection, the order row, its QR
// token and the commission record. Any error leaves no trace once the
// caller rolls back. The commission rate is passed in so callers (and
// tests) control the snapshot instead of ambient state.
func buildOrder(tx *gorm.DB, user models.User, req createOrderRequest, commissionRate float64) (*models.Order, *utils.AppError) {
	var lounge models.Lounge
	if err := tx.First(&lounge, req.LoungeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Lounge not found", nil)
		}
		return nil, utils.InternalError("Failed to look up lounge", err)
	}

	// All-or-nothing pricing: one unknown or unavailable item rejects the
	// whole order. Prices come from the catalog, never from the client.
	var (
		totalPrice float64
		maxPrep    int
		orderItems []models.OrderItem
	)
	for _, item := range req.Items {
		var food models.Food
		if err := tx.Where("id = ? AND lounge_id = ?", item.FoodID, req.LoungeID).First(&food).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NotFoundError(fmt.Sprintf("Food item %d not found", item.FoodID), nil)
			}
			return nil, utils.InternalError("Failed to look up food item", err)
		}
		if !food.IsAvailable {
			return nil, utils.BadRequestError(fmt.Sprintf("%s is not available", food.Name), nil)
		}

		subtotal := food.Price * float64(item.Quantity)
		totalPrice += subtotal
		if food.EstimatedTime > maxPrep {
			maxPrep = food.EstimatedTime
		}

		orderItems = append(orderItems, models.OrderItem{
			FoodID:        food.ID,
			Name:          food.Name,
			Quantity:      item.Quantity,
			Price:         food.Price,
			Subtotal:      subtotal,
			EstimatedTime: food.EstimatedTime,
		})
	}

	commission := round2(totalPrice * commissionRate)

	payment, appErr := createOrderPayment(tx, user, req.PaymentMethod, req.LoungeID, req.ContractID, totalPrice, commission)
	if appErr != nil {
		return nil, appErr
	}

	if maxPrep == 0 {
		maxPrep = 15
	}
	readyTime := time.Now().Add(time.Duration(maxPrep) * time.Minute)

	order := models.Order{
		UserID:             user.ID,
		LoungeID:           req.LoungeID,
		TotalPrice:         totalPrice,
		Status:             models.OrderStatusPending,
		PaymentMethod:      strings.ToUpper(req.PaymentMethod),
		PaymentID:          &payment.ID,
		Commission:         commission,
		EstimatedReadyTime: &readyTime,
		Notes:              req.Notes,
		OrderItems:         orderItems,
	}
	if strings.EqualFold(req.PaymentMethod, "contract") {
		order.ContractID = req.ContractID
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, utils.InternalError("Failed to create order", err)
	}

	qrData := utils.GenerateQRData(order.ID)
	qrImage, err := utils.GenerateQRImage(qrData)
	if err != nil {
		return nil, utils.InternalError("Failed to generate QR code", err)
	}
	if err := tx.Model(&order).Updates(map[string]interface{}{
		"qr_code":       qrData,
		"qr_code_image": qrImage,
	}).Error; err != nil {
		return nil, utils.InternalError("Failed to attach QR code", err)
	}
	order.QRCode = qrData
	order.QRCodeImage = qrImage

	if err := tx.Model(payment).Update("order_id", order.ID).Error; err != nil {
		return nil, utils.InternalError("Failed to link payment to order", err)
	}
	order.PaymentID = &payment.ID

	commissionRecord := models.Commission{
		OrderID:     order.ID,
		LoungeID:    req.LoungeID,
		Amount:      commission,
		Rate:        commissionRate,
		OrderAmount: totalPrice,
	}
	if err := tx.Create(&commissionRecord).Error; err != nil {
		return nil, utils.InternalError("Failed to record commission", err)
	}

	return &order, nil
}

// ListOrders returns orders visible to the caller: users see their own,
// lounge owners see their lounges', admins see everything.
func ListOrders(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	query := config.DB.Model(&models.Order{})
	switch user.Role {
	case models.RoleUser:
		query = query.Where("user_id = ?", user.ID)
	case models.RoleLounge:
		query = query.Where("lounge_id IN (?)",
			config.DB.Model(&models.Lounge{}).Select("id").Where("owner_id = ?", user.ID))
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	pagination := utils.NewPagination(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count orders", nil)
		return
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").
		Preload("OrderItems").Preload("Lounge").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		utils.LogError("Failed to list orders for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to retrieve orders", nil)
		return
	}

	utils.SuccessWithPagination(c, "Orders retrieved successfully", orders, total, pagination.Page, pagination.Limit)
}

// GetOrder returns one order with its frozen items
func GetOrder(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Preload("OrderItems").Preload("Lounge").Preload("User").
		First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	if appErr := authorizeOrderAccess(&order, user); appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}

	utils.Success(c, "Order retrieved successfully", gin.H{"order": order})
}

var orderStatusTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:     {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

// UpdateOrderStatus moves an order through its lifecycle. Only the owning
// lounge or an admin may do this; DELIVERED and CANCELLED are terminal.
func UpdateOrderStatus(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. status is required", err.Error())
		return
	}
	newStatus := strings.ToUpper(req.Status)

	var order models.Order
	if err := config.DB.Preload("Lounge").First(&order, orderID).Error; err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	if user.Role != models.RoleAdmin && order.Lounge.OwnerID != user.ID {
		utils.Forbidden(c, "Not authorized to update this order")
		return
	}

	if !isValidTransition(order.Status, newStatus) {
		utils.BadRequest(c, fmt.Sprintf("Cannot move order from %s to %s", order.Status, newStatus), nil)
		return
	}

	updates := map[string]interface{}{"status": newStatus}
	if newStatus == models.OrderStatusDelivered {
		now := time.Now()
		updates["delivered_at"] = &now
	}
	if newStatus == models.OrderStatusCancelled && req.Reason != "" {
		updates["cancellation_reason"] = req.Reason
	}

	if err := config.DB.Model(&order).Updates(updates).Error; err != nil {
		utils.LogError("Failed to update order ID: %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to update order status", nil)
		return
	}
	utils.LogInfo("Order ID: %d moved from %s to %s by user ID: %d", order.ID, order.Status, newStatus, user.ID)

	var owner models.User
	if err := config.DB.First(&owner, order.UserID).Error; err == nil {
		services.NotifyOrderStatus(&owner, order.ID, newStatus)
	}

	order.Status = newStatus
	utils.Success(c, "Order status updated successfully", gin.H{"order": order})
}

func isValidTransition(from, to string) bool {
	for _, allowed := range orderStatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// authorizeOrderAccess allows the order's owner, the lounge owner or an admin
func authorizeOrderAccess(order *models.Order, user models.User) *utils.AppError {
	if user.Role == models.RoleAdmin {
		return nil
	}
	if order.UserID == user.ID {
		return nil
	}
	if order.Lounge.OwnerID == user.ID {
		return nil
	}
	return utils.ForbiddenError("Not authorized to view this order", nil)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
