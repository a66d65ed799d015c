package main

import (
	"encoding/gob"
	"log"
	"os"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/controllers"
	"github.com/abenezer-t/CampusEats/routes"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/abenezer-t/CampusEats/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Register types for session serialization
	gob.Register(controllers.RegistrationData{})

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Seed the admin account
	if err := controllers.CreateDefaultAdmin(config.DB, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
		utils.LogError("Failed to create default admin: %v", err)
		log.Fatal("Failed to create default admin:", err)
	}

	// Initialize Google OAuth
	config.InitGoogleOAuth()

	// Initialize push notifications. Missing credentials disable pushes
	// but never block startup.
	if err := services.InitNotifications(); err != nil {
		utils.LogError("Failed to initialize push notifications: %v", err)
	}

	// Background contract expiry sweep
	controllers.StartContractExpirySweep(config.DB, time.Hour)

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
