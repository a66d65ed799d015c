package controllers

import (
	"strconv"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
)

// ListFoods returns a lounge's menu, available items only unless the
// caller asks for everything
func ListFoods(c *gin.Context) {
	loungeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lounge ID", nil)
		return
	}

	query := config.DB.Where("lounge_id = ?", loungeID)
	if c.Query("all") != "true" {
		query = query.Where("is_available = ?", true)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var foods []models.Food
	if err := query.Order("category ASC, name ASC").Find(&foods).Error; err != nil {
		utils.InternalServerError(c, "Failed to retrieve menu", nil)
		return
	}

	utils.Success(c, "Menu retrieved successfully", gin.H{"foods": foods})
}

// CreateFood adds a menu item. Lounge owner or admin only.
func CreateFood(c *gin.Context) {
	utils.LogInfo("CreateFood called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	loungeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lounge ID", nil)
		return
	}

	if _, appErr := ownedLounge(config.DB, uint(loungeID), user); appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}

	var req struct {
		Name          string  `json:"name" binding:"required"`
		Description   string  `json:"description"`
		Price         float64 `json:"price" binding:"required"`
		Category      string  `json:"category"`
		Image         string  `json:"image"`
		EstimatedTime int     `json:"estimated_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}
	if req.Price <= 0 {
		utils.BadRequest(c, "Price must be positive", nil)
		return
	}

	food := models.Food{
		LoungeID:      uint(loungeID),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Category:      req.Category,
		Image:         req.Image,
		IsAvailable:   true,
		EstimatedTime: req.EstimatedTime,
	}
	if food.EstimatedTime <= 0 {
		food.EstimatedTime = 15
	}
	if err := config.DB.Create(&food).Error; err != nil {
		utils.LogError("Failed to create food for lounge ID: %d: %v", loungeID, err)
		utils.InternalServerError(c, "Failed to create menu item", nil)
		return
	}

	utils.LogInfo("Created food ID: %d on lounge ID: %d", food.ID, loungeID)
	utils.Created(c, "Menu item created successfully", gin.H{"food": food})
}

// UpdateFood edits a menu item, including availability toggling. Price and
// availability changes affect future orders only; placed orders keep their
// frozen snapshots.
func UpdateFood(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	foodID, err := strconv.Atoi(c.Param("foodId"))
	if err != nil {
		utils.BadRequest(c, "Invalid food ID", nil)
		return
	}

	var food models.Food
	if err := config.DB.First(&food, foodID).Error; err != nil {
		utils.NotFound(c, "Menu item not found")
		return
	}

	if _, appErr := ownedLounge(config.DB, food.LoungeID, user); appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}

	var req struct {
		Name          *string  `json:"name"`
		Description   *string  `json:"description"`
		Price         *float64 `json:"price"`
		Category      *string  `json:"category"`
		Image         *string  `json:"image"`
		IsAvailable   *bool    `json:"is_available"`
		EstimatedTime *int     `json:"estimated_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.BadRequest(c, "Price must be positive", nil)
			return
		}
		updates["price"] = *req.Price
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.EstimatedTime != nil && *req.EstimatedTime > 0 {
		updates["estimated_time"] = *req.EstimatedTime
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&food).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update menu item", nil)
		return
	}

	utils.Success(c, "Menu item updated successfully", gin.H{"food": food})
}

// DeleteFood removes a menu item. Soft delete keeps order snapshots intact.
func DeleteFood(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	foodID, err := strconv.Atoi(c.Param("foodId"))
	if err != nil {
		utils.BadRequest(c, "Invalid food ID", nil)
		return
	}

	var food models.Food
	if err := config.DB.First(&food, foodID).Error; err != nil {
		utils.NotFound(c, "Menu item not found")
		return
	}

	if _, appErr := ownedLounge(config.DB, food.LoungeID, user); appErr != nil {
		utils.RespondWithAppError(c, appErr)
		return
	}

	if err := config.DB.Delete(&food).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete menu item", nil)
		return
	}

	utils.Success(c, "Menu item deleted successfully", nil)
}
