package controllers

import (
	"errors"
	"strconv"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListLounges returns lounges, optionally filtered by campus
func ListLounges(c *gin.Context) {
	query := config.DB.Model(&models.Lounge{})
	if campusID := c.Query("campus_id"); campusID != "" {
		query = query.Where("campus_id = ?", campusID)
	}
	if c.Query("open") == "true" {
		query = query.Where("is_open = ?", true)
	}

	pagination := utils.NewPagination(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to retrieve lounges", nil)
		return
	}

	var lounges []models.Lounge
	if err := query.Preload("Campus").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Order("name ASC").Find(&lounges).Error; err != nil {
		utils.InternalServerError(c, "Failed to retrieve lounges", nil)
		return
	}

	utils.SuccessWithPagination(c, "Lounges retrieved successfully", lounges, total, pagination.Page, pagination.Limit)
}

// GetLounge returns one lounge with its menu
func GetLounge(c *gin.Context) {
	loungeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid lounge ID", nil)
		return
	}

	var lounge models.Lounge
	if err := config.DB.Preload("Campus").Preload("Foods").First(&lounge, loungeID).Error; err != nil {
		utils.NotFound(c, "Lounge not found")
		return
	}

	utils.Success(c, "Lounge retrieved successfully", gin.H{"lounge": lounge})
}

// CreateLounge registers a lounge owned by a LOUNGE-role user. Admin only.
func CreateLounge(c *gin.Context) {
	utils.LogInfo("CreateLounge called")
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Logo        string `json:"logo"`
		CampusID    uint   `json:"campus_id" binding:"required"`
		OwnerID     uint   `json:"owner_id" binding:"required"`
		Opening     string `json:"opening"`
		Closing     string `json:"closing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var campus models.Campus
	if err := config.DB.First(&campus, req.CampusID).Error; err != nil {
		utils.BadRequest(c, "Invalid campus", nil)
		return
	}

	var owner models.User
	if err := config.DB.First(&owner, req.OwnerID).Error; err != nil {
		utils.BadRequest(c, "Invalid owner", nil)
		return
	}
	if owner.Role != models.RoleLounge {
		if err := config.DB.Model(&owner).Update("role", models.RoleLounge).Error; err != nil {
			utils.InternalServerError(c, "Failed to assign lounge role", nil)
			return
		}
	}

	lounge := models.Lounge{
		Name:        req.Name,
		Description: req.Description,
		Logo:        req.Logo,
		CampusID:    req.CampusID,
		OwnerID:     req.OwnerID,
		Opening:     req.Opening,
		Closing:     req.Closing,
	}
	if err := config.DB.Create(&lounge).Error; err != nil {
		utils.LogError("Failed to create lounge %s: %v", req.Name, err)
		utils.InternalServerError(c, "Failed to create lounge", nil)
		return
	}

	utils.LogInfo("Created lounge ID: %d owned by user ID: %d", lounge.ID, req.OwnerID)
	utils.Created(c, "Lounge created successfully", gin.H{"lounge": lounge})
}

// UpdateLounge edits lounge details. Owner or admin only.
func UpdateLounge(c *gin.Context) {
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

	var lounge models.Lounge
	if err := config.DB.First(&lounge, loungeID).Error; err != nil {
		utils.NotFound(c, "Lounge not found")
		return
	}
	if lounge.OwnerID != user.ID && user.Role != models.RoleAdmin {
		utils.Forbidden(c, "Not authorized to update this lounge")
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Logo        *string `json:"logo"`
		Opening     *string `json:"opening"`
		Closing     *string `json:"closing"`
		IsOpen      *bool   `json:"is_open"`
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
	if req.Logo != nil {
		updates["logo"] = *req.Logo
	}
	if req.Opening != nil {
		updates["opening"] = *req.Opening
	}
	if req.Closing != nil {
		updates["closing"] = *req.Closing
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&lounge).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update lounge", nil)
		return
	}

	utils.Success(c, "Lounge updated successfully", gin.H{"lounge": lounge})
}

// ownedLounge loads a lounge and checks the caller may manage it
func ownedLounge(db *gorm.DB, loungeID uint, user models.User) (*models.Lounge, *utils.AppError) {
	var lounge models.Lounge
	if err := db.First(&lounge, loungeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Lounge not found", err)
		}
		return nil, utils.InternalError("Failed to load lounge", err)
	}
	if lounge.OwnerID != user.ID && user.Role != models.RoleAdmin {
		return nil, utils.ForbiddenError("Not authorized to manage this lounge", nil)
	}
	return &lounge, nil
}
