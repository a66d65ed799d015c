package controllers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContractHandler(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	useTestConfig(t, db)

	w := postJSON(t, CreateContract, fx.Customer, "/v1/contracts", gin.H{
		"lounge_id":    fx.Lounge.ID,
		"total_amount": 500.0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Contract models.Contract `json:"contract"`
			Payment  struct {
				ID     uint    `json:"id"`
				Amount float64 `json:"amount"`
				Status string  `json:"status"`
			} `json:"payment"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Inactive until its payment settles
	assert.False(t, resp.Data.Contract.IsActive)
	assert.Equal(t, 500.0, resp.Data.Contract.RemainingBalance)
	assert.Equal(t, "pending", resp.Data.Payment.Status)
	assert.Equal(t, 500.0, resp.Data.Payment.Amount)

	// Payment linked back to the contract it funds
	var payment models.Payment
	require.NoError(t, db.First(&payment, resp.Data.Payment.ID).Error)
	require.NotNil(t, payment.ContractID)
	assert.Equal(t, resp.Data.Contract.ID, *payment.ContractID)
	assert.Equal(t, models.PaymentTypeContract, payment.Type)

	// Default 30 day lifetime
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), resp.Data.Contract.ExpiresAt, 5*time.Second)
}

func TestCreateContractHandler_ConflictOnActiveContract(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	seedContract(t, db, fx, 100)
	useTestConfig(t, db)

	w := postJSON(t, CreateContract, fx.Customer, "/v1/contracts", gin.H{
		"lounge_id":    fx.Lounge.ID,
		"total_amount": 500.0,
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestCreateContractHandler_InvalidInput(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	useTestConfig(t, db)

	w := postJSON(t, CreateContract, fx.Customer, "/v1/contracts", gin.H{
		"lounge_id":    fx.Lounge.ID,
		"total_amount": -50.0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, CreateContract, fx.Customer, "/v1/contracts", gin.H{
		"lounge_id":    9999,
		"total_amount": 100.0,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenewContractHandler(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)
	oldExpiry := contract.ExpiresAt
	useTestConfig(t, db)

	w := postJSON(t, withParam(RenewContract, "id", contract.ID), fx.Customer,
		"/v1/contracts/renew", gin.H{"amount": 200.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 300.0, stored.TotalAmount)
	assert.Equal(t, 300.0, stored.RemainingBalance)
	assert.Equal(t, 1, stored.RenewalCount)
	assert.WithinDuration(t, oldExpiry.AddDate(0, 0, 30), stored.ExpiresAt, 2*time.Second)

	// Renewal opens a fresh pending payment
	var payment models.Payment
	require.NoError(t, db.Where("contract_id = ? AND status = ?", contract.ID, models.PaymentStatusPending).
		First(&payment).Error)
	assert.Equal(t, 200.0, payment.Amount)
}

func TestRenewContractHandler_NotOwner(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 100)
	useTestConfig(t, db)

	w := postJSON(t, withParam(RenewContract, "id", contract.ID), fx.Owner,
		"/v1/contracts/renew", gin.H{"amount": 200.0})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
