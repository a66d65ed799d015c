package controllers

import (
	"errors"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Phone           string `json:"phone"`
	CampusID        *uint  `json:"campus_id"`
}

// RegistrationData represents the registration data stored in session
// until the OTP is verified. Registered with gob at startup.
type RegistrationData struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Phone      string `json:"phone"`
	CampusID   *uint  `json:"campus_id"`
	OTP        string `json:"otp"`
	OTPExpires int64  `json:"otp_expires"`
}

// Register validates the request, emails an OTP and parks the pending
// account in the session. No user row is written until VerifyOTP.
func Register(c *gin.Context) {
	utils.LogInfo("Register called")
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", "Please check your input data and ensure all required fields are provided correctly.")
		return
	}

	if valid, msg := utils.ValidateName(req.Name); !valid {
		utils.BadRequest(c, "Invalid name", msg)
		return
	}
	if valid, msg := utils.ValidateEmail(req.Email); !valid {
		utils.BadRequest(c, "Invalid email", msg)
		return
	}
	if valid, msg := utils.ValidatePassword(req.Password); !valid {
		utils.BadRequest(c, "Invalid password", msg)
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.BadRequest(c, "Passwords do not match", "Password and confirm password must be the same.")
		return
	}
	if req.Phone != "" {
		if valid, msg := utils.ValidatePhone(req.Phone); !valid {
			utils.BadRequest(c, "Invalid phone", msg)
			return
		}
	}

	var existing models.User
	if err := config.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.Conflict(c, "Email already registered", nil)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Failed to check existing users", nil)
		return
	}

	if req.CampusID != nil {
		var campus models.Campus
		if err := config.DB.First(&campus, *req.CampusID).Error; err != nil {
			utils.BadRequest(c, "Invalid campus", nil)
			return
		}
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.InternalServerError(c, "Failed to process registration", nil)
		return
	}

	otp := utils.GenerateOTP()
	if err := utils.SendOTP(req.Email, otp); err != nil {
		utils.LogError("Failed to send OTP to %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to send verification email", nil)
		return
	}

	session := sessions.Default(c)
	session.Set("registration_data", RegistrationData{
		Name:       req.Name,
		Email:      req.Email,
		Password:   hashed,
		Phone:      req.Phone,
		CampusID:   req.CampusID,
		OTP:        otp,
		OTPExpires: time.Now().Add(5 * time.Minute).Unix(),
	})
	if err := session.Save(); err != nil {
		utils.LogError("Failed to save registration session: %v", err)
		utils.InternalServerError(c, "Failed to save session", nil)
		return
	}

	utils.LogInfo("OTP sent to %s", req.Email)
	utils.Success(c, "OTP sent to your email. Verify to complete registration.", gin.H{"email": req.Email})
}

// VerifyOTP completes registration by checking the session-held OTP and
// creating the user
func VerifyOTP(c *gin.Context) {
	utils.LogInfo("VerifyOTP called")
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	session := sessions.Default(c)
	raw := session.Get("registration_data")
	data, ok := raw.(RegistrationData)
	if !ok || data.Email != req.Email {
		utils.BadRequest(c, "No pending registration", "Please register again.")
		return
	}
	if time.Now().Unix() > data.OTPExpires {
		utils.BadRequest(c, "OTP expired", "Please request a new OTP.")
		return
	}
	if data.OTP != req.OTP {
		utils.BadRequest(c, "Invalid OTP", nil)
		return
	}

	user := models.User{
		Name:       data.Name,
		Email:      data.Email,
		Phone:      data.Phone,
		Password:   data.Password,
		CampusID:   data.CampusID,
		Role:       models.RoleUser,
		IsVerified: true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user %s: %v", data.Email, err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	session.Delete("registration_data")
	_ = session.Save()

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("User registered: ID %d, email %s", user.ID, user.Email)
	utils.Created(c, "Registration complete", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// ResendOTP issues a fresh OTP for a pending registration
func ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	session := sessions.Default(c)
	raw := session.Get("registration_data")
	data, ok := raw.(RegistrationData)
	if !ok || data.Email != req.Email {
		utils.BadRequest(c, "No pending registration", "Please register again.")
		return
	}

	data.OTP = utils.GenerateOTP()
	data.OTPExpires = time.Now().Add(5 * time.Minute).Unix()
	if err := utils.SendOTP(data.Email, data.OTP); err != nil {
		utils.LogError("Failed to resend OTP to %s: %v", data.Email, err)
		utils.InternalServerError(c, "Failed to send verification email", nil)
		return
	}

	session.Set("registration_data", data)
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "Failed to save session", nil)
		return
	}

	utils.Success(c, "OTP resent to your email", gin.H{"email": data.Email})
}

// Login authenticates by email and password and returns a JWT
func Login(c *gin.Context) {
	utils.LogInfo("Login called")
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if user.IsBlocked {
		utils.Forbidden(c, "Your account has been blocked")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())
	utils.LogInfo("User logged in: ID %d", user.ID)

	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// CreateDefaultAdmin seeds the admin account from env on first boot
func CreateDefaultAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:       "Administrator",
		Email:      email,
		Password:   hashed,
		Role:       models.RoleAdmin,
		IsVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.LogInfo("Default admin account created: %s", email)
	return nil
}
