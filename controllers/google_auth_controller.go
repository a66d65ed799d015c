package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/utils"
	"github.com/gin-gonic/gin"
)

type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleLogin redirects the caller to Google's consent screen
func GoogleLogin(c *gin.Context) {
	url := config.GoogleOAuthConfig.AuthCodeURL("state")
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback exchanges the auth code, provisions the account on first
// login and redirects to the frontend with a JWT
func GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		utils.BadRequest(c, "No code provided", nil)
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(c, code)
	if err != nil {
		utils.InternalServerError(c, "Failed to exchange token", nil)
		return
	}

	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		utils.InternalServerError(c, "Failed to get user info", nil)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		utils.InternalServerError(c, "Failed to read response", nil)
		return
	}

	var googleUser GoogleUserInfo
	if err := json.Unmarshal(data, &googleUser); err != nil {
		utils.InternalServerError(c, "Failed to parse user info", nil)
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", googleUser.Email).First(&user).Error; err != nil {
		// First Google login, provision the account. The random password
		// keeps password login unusable until the user sets one.
		password := googleUser.ID[:8] + fmt.Sprintf("%d", time.Now().Unix())
		hashed, err := utils.HashPassword(password)
		if err != nil {
			utils.InternalServerError(c, "Failed to create account", nil)
			return
		}
		user = models.User{
			Name:       googleUser.Name,
			Email:      googleUser.Email,
			Password:   hashed,
			GoogleID:   googleUser.ID,
			Role:       models.RoleUser,
			IsVerified: true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			utils.InternalServerError(c, "Failed to create account", nil)
			return
		}
		utils.LogInfo("Provisioned Google account for %s", user.Email)
	}

	if user.IsBlocked {
		utils.Forbidden(c, "Your account has been blocked")
		return
	}

	jwtToken, err := utils.GenerateToken(&user)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())

	redirectURL := fmt.Sprintf("%s?token=%s&user=%s",
		config.App.FrontendURL,
		url.QueryEscape(jwtToken),
		url.QueryEscape(fmt.Sprintf(`{"id":%d,"email":"%s","name":"%s"}`,
			user.ID, user.Email, user.Name)))

	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}
