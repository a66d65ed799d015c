package controllers

import (
	"fmt"
	"testing"
	"time"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a per-test in-memory database. A single connection
// keeps concurrent goroutines from tripping over sqlite's locking while
// still exercising the conditional-update guards.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateModels(db))
	return db
}

type fixture struct {
	Customer models.User
	Owner    models.User
	Lounge   models.Lounge
	Burger   models.Food
	Pizza    models.Food
}

// seedCatalog creates a lounge with two menu items and a customer
func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	university := models.University{Name: "Addis Ababa University", City: "Addis Ababa"}
	require.NoError(t, db.Create(&university).Error)
	campus := models.Campus{Name: "Main Campus", UniversityID: university.ID}
	require.NoError(t, db.Create(&campus).Error)

	owner := models.User{Name: "Owner", Email: "owner@example.com", Role: models.RoleLounge, IsVerified: true}
	require.NoError(t, db.Create(&owner).Error)
	customer := models.User{Name: "Student", Email: "student@example.com", Role: models.RoleUser, IsVerified: true}
	require.NoError(t, db.Create(&customer).Error)

	lounge := models.Lounge{Name: "Campus Lounge", CampusID: campus.ID, OwnerID: owner.ID, IsOpen: true}
	require.NoError(t, db.Create(&lounge).Error)

	burger := models.Food{LoungeID: lounge.ID, Name: "Burger", Price: 50, IsAvailable: true, EstimatedTime: 10}
	require.NoError(t, db.Create(&burger).Error)
	pizza := models.Food{LoungeID: lounge.ID, Name: "Pizza", Price: 80, IsAvailable: true, EstimatedTime: 25}
	require.NoError(t, db.Create(&pizza).Error)

	return fixture{Customer: customer, Owner: owner, Lounge: lounge, Burger: burger, Pizza: pizza}
}

// seedContract creates a usable contract between the customer and lounge
func seedContract(t *testing.T, db *gorm.DB, fx fixture, balance float64) models.Contract {
	t.Helper()

	contract := models.Contract{
		UserID:           fx.Customer.ID,
		LoungeID:         fx.Lounge.ID,
		TotalAmount:      balance,
		RemainingBalance: balance,
		StartDate:        time.Now(),
		ExpiresAt:        time.Now().AddDate(0, 0, 30),
		IsActive:         true,
	}
	require.NoError(t, db.Create(&contract).Error)
	return contract
}
