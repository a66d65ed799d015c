package controllers

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitContract_Success(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)

	tx := db.Begin()
	got, appErr := debitContract(tx, fx.Customer.ID, fx.Lounge.ID, contract.ID, 60)
	require.Nil(t, appErr)
	require.NoError(t, tx.Commit().Error)

	assert.Equal(t, 40.0, got.RemainingBalance)

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 40.0, stored.RemainingBalance)
	assert.Equal(t, 100.0, stored.TotalAmount)
}

func TestDebitContract_InsufficientBalance(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 30)

	tx := db.Begin()
	_, appErr := debitContract(tx, fx.Customer.ID, fx.Lounge.ID, contract.ID, 50)
	tx.Rollback()

	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Insufficient contract balance", appErr.Message)

	// Balance untouched
	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 30.0, stored.RemainingBalance)
}

func TestDebitContract_WrongLoungeOrOwner(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)

	tx := db.Begin()
	_, appErr := debitContract(tx, fx.Owner.ID, fx.Lounge.ID, contract.ID, 10)
	tx.Rollback()
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)

	tx = db.Begin()
	_, appErr = debitContract(tx, fx.Customer.ID, fx.Lounge.ID+1, contract.ID, 10)
	tx.Rollback()
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestDebitContract_LapsedContractFlipsFlags(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)
	require.NoError(t, db.Model(&contract).Update("expires_at", time.Now().Add(-time.Hour)).Error)

	tx := db.Begin()
	_, appErr := debitContract(tx, fx.Customer.ID, fx.Lounge.ID, contract.ID, 10)
	require.NotNil(t, appErr)
	require.NoError(t, tx.Commit().Error)

	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Contract has expired", appErr.Message)

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.True(t, stored.IsExpired)
	assert.False(t, stored.IsActive)
	assert.Equal(t, 100.0, stored.RemainingBalance)
}

// Two concurrent debits of 60 against a balance of 100: exactly one wins.
func TestDebitContract_ConcurrentDoubleSpend(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)

	results := make([]*models.Contract, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tx := db.Begin()
			got, appErr := debitContract(tx, fx.Customer.ID, fx.Lounge.ID, contract.ID, 60)
			if appErr != nil {
				tx.Rollback()
				errs[i] = appErr
				return
			}
			if err := tx.Commit().Error; err != nil {
				errs[i] = err
				return
			}
			results[i] = got
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i := 0; i < 2; i++ {
		if errs[i] == nil {
			succeeded++
			assert.NotNil(t, results[i])
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one debit must win")

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 40.0, stored.RemainingBalance)
}

func TestCreditContract_ExtendsFromStoredExpiry(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)

	// Lapsed a week ago
	oldExpiry := time.Now().AddDate(0, 0, -7)
	require.NoError(t, db.Model(&contract).Updates(map[string]interface{}{
		"expires_at": oldExpiry,
		"is_expired": true,
		"is_active":  false,
	}).Error)
	contract.ExpiresAt = oldExpiry
	contract.IsExpired = true

	tx := db.Begin()
	appErr := creditContract(tx, &contract, 200, 30)
	require.Nil(t, appErr)
	require.NoError(t, tx.Commit().Error)

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 300.0, stored.TotalAmount)
	assert.Equal(t, 300.0, stored.RemainingBalance)
	assert.Equal(t, 1, stored.RenewalCount)
	assert.False(t, stored.IsExpired)
	// Activation belongs to payment settlement, not the credit
	assert.False(t, stored.IsActive)
	// 30 days from the old expiry, not from now
	assert.WithinDuration(t, oldExpiry.AddDate(0, 0, 30), stored.ExpiresAt, 2*time.Second)
}

func TestSweepExpiredContracts(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)

	lapsed := seedContract(t, db, fx, 50)
	require.NoError(t, db.Model(&lapsed).Update("expires_at", time.Now().Add(-time.Minute)).Error)
	healthy := seedContract(t, db, fx, 50)

	require.NoError(t, SweepExpiredContracts(db))

	var stored models.Contract
	require.NoError(t, db.First(&stored, lapsed.ID).Error)
	assert.True(t, stored.IsExpired)
	assert.False(t, stored.IsActive)

	var storedHealthy models.Contract
	require.NoError(t, db.First(&storedHealthy, healthy.ID).Error)
	assert.False(t, storedHealthy.IsExpired)
	assert.True(t, storedHealthy.IsActive)

	// Second sweep is a no-op
	require.NoError(t, SweepExpiredContracts(db))
	require.NoError(t, db.First(&stored, lapsed.ID).Error)
	assert.True(t, stored.IsExpired)
}
