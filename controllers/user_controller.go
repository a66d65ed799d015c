package controllers

import (
	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
)

// GetProfile returns the authenticated user's profile
func GetProfile(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	if user.CampusID != nil {
		config.DB.Preload("Campus").First(&user, user.ID)
	}

	utils.Success(c, "Profile retrieved successfully", gin.H{
		"user": gin.H{
			"id":          user.ID,
			"name":        user.Name,
			"email":       user.Email,
			"phone":       user.Phone,
			"role":        user.Role,
			"campus":      user.Campus,
			"is_verified": user.IsVerified,
			"created_at":  user.CreatedAt,
		},
	})
}

// UpdateProfile updates mutable profile fields
func UpdateProfile(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		CampusID *uint  `json:"campus_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		if valid, msg := utils.ValidateName(req.Name); !valid {
			utils.BadRequest(c, "Invalid name", msg)
			return
		}
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		if valid, msg := utils.ValidatePhone(req.Phone); !valid {
			utils.BadRequest(c, "Invalid phone", msg)
			return
		}
		updates["phone"] = req.Phone
	}
	if req.CampusID != nil {
		var campus models.Campus
		if err := config.DB.First(&campus, *req.CampusID).Error; err != nil {
			utils.BadRequest(c, "Invalid campus", nil)
			return
		}
		updates["campus_id"] = *req.CampusID
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile", nil)
		return
	}

	utils.Success(c, "Profile updated successfully", gin.H{"user": gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"phone": user.Phone,
	}})
}

// UpdateFCMToken stores the device token push notifications are sent to.
// An empty token unregisters the device.
func UpdateFCMToken(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req struct {
		FCMToken string `json:"fcm_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	if err := config.DB.Model(&user).Update("fcm_token", req.FCMToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to update device token", nil)
		return
	}

	utils.Success(c, "Device token updated", nil)
}
