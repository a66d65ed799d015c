package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/abenezer-t/CampusEats/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// App holds the loaded configuration for the running process
var App *Config

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	FrontendURL string

	// Platform cut of every order, as a fraction (0.05 = 5%)
	CommissionRate float64
	// Default contract lifetime in days
	ContractDurationDays int

	ChapaSecretKey   string
	ChapaBaseURL     string
	ChapaCallbackURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Path to the Firebase service account JSON used for FCM pushes.
	// Empty disables push notifications.
	FCMCredentialsFile string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env is fine in production where env vars come from the host
	_ = godotenv.Load()

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),

		FrontendURL: os.Getenv("FRONTEND_URL"),

		CommissionRate:       0.05,
		ContractDurationDays: 30,

		ChapaSecretKey:   os.Getenv("CHAPA_SECRET_KEY"),
		ChapaBaseURL:     os.Getenv("CHAPA_BASE_URL"),
		ChapaCallbackURL: os.Getenv("CHAPA_CALLBACK_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     os.Getenv("SMTP_PORT"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		FCMCredentialsFile: os.Getenv("FCM_CREDENTIALS_FILE"),
	}

	if rate := os.Getenv("SYSTEM_COMMISSION_RATE"); rate != "" {
		parsed, err := strconv.ParseFloat(rate, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return nil, fmt.Errorf("invalid SYSTEM_COMMISSION_RATE %q", rate)
		}
		config.CommissionRate = parsed
	}

	if days := os.Getenv("CONTRACT_DURATION_DAYS"); days != "" {
		parsed, err := strconv.Atoi(days)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid CONTRACT_DURATION_DAYS %q", days)
		}
		config.ContractDurationDays = parsed
	}

	if config.ChapaBaseURL == "" {
		config.ChapaBaseURL = "https://api.chapa.co/v1"
	}
	if config.Port == "" {
		config.Port = "8080"
	}

	App = config
	return config, nil
}

// InitDB initializes the database connection
func InitDB() {
	config := App
	if config == nil {
		var err error
		config, err = LoadConfig()
		if err != nil {
			panic(fmt.Sprintf("Failed to load config: %v", err))
		}
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	if err := MigrateModels(DB); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}

// MigrateModels runs the schema migration for every model in the system.
// Split out of InitDB so tests can migrate an in-memory database.
func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.University{},
		&models.Campus{},
		&models.Lounge{},
		&models.Food{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Contract{},
		&models.Commission{},
	)
}
