package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abenezer-t/CampusEats/config"
	"github.com/abenezer-t/CampusEats/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, handler gin.HandlerFunc, user models.User, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user", user)
	handler(c)
	return w
}

// withParam binds a path parameter before invoking the handler
func withParam(handler gin.HandlerFunc, key string, id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: key, Value: fmt.Sprintf("%d", id)})
		handler(c)
	}
}

func useTestConfig(t *testing.T, db *gorm.DB) {
	t.Helper()
	prevDB, prevApp := config.DB, config.App
	config.DB = db
	config.App = &config.Config{CommissionRate: 0.05, ContractDurationDays: 30}
	t.Cleanup(func() {
		config.DB = prevDB
		config.App = prevApp
	})
}

func TestCreateOrderHandler_ContractPayment(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 200)
	useTestConfig(t, db)

	w := postJSON(t, CreateOrder, fx.Customer, "/v1/orders", gin.H{
		"lounge_id":      fx.Lounge.ID,
		"items":          []gin.H{{"food_id": fx.Burger.ID, "quantity": 2}},
		"payment_method": "contract",
		"contract_id":    contract.ID,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Order models.Order `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 100.0, resp.Data.Order.TotalPrice)
	assert.NotEmpty(t, resp.Data.Order.QRCode)

	// The debit settled synchronously
	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 100.0, stored.RemainingBalance)

	var payment models.Payment
	require.NoError(t, db.First(&payment, *resp.Data.Order.PaymentID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, models.PaymentMethodContractWallet, payment.Method)
}

func TestCreateOrderHandler_InsufficientBalanceLeavesNothing(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	contract := seedContract(t, db, fx, 30)
	useTestConfig(t, db)

	w := postJSON(t, CreateOrder, fx.Customer, "/v1/orders", gin.H{
		"lounge_id":      fx.Lounge.ID,
		"items":          []gin.H{{"food_id": fx.Burger.ID, "quantity": 1}},
		"payment_method": "contract",
		"contract_id":    contract.ID,
	})

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Insufficient contract balance")

	// The whole transaction rolled back
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Commission{}).Count(&count)
	assert.Zero(t, count)

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.Equal(t, 30.0, stored.RemainingBalance)
}

func TestCreateOrderHandler_ValidationErrors(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	useTestConfig(t, db)

	tests := []struct {
		name    string
		payload gin.H
	}{
		{"missing items", gin.H{"lounge_id": fx.Lounge.ID, "payment_method": "chapa"}},
		{"empty items", gin.H{"lounge_id": fx.Lounge.ID, "items": []gin.H{}, "payment_method": "chapa"}},
		{"zero quantity", gin.H{"lounge_id": fx.Lounge.ID, "items": []gin.H{{"food_id": fx.Burger.ID, "quantity": 0}}, "payment_method": "chapa"}},
		{"missing method", gin.H{"lounge_id": fx.Lounge.ID, "items": []gin.H{{"food_id": fx.Burger.ID, "quantity": 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, CreateOrder, fx.Customer, "/v1/orders", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateOrderHandler_UnknownLounge(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	useTestConfig(t, db)

	w := postJSON(t, CreateOrder, fx.Customer, "/v1/orders", gin.H{
		"lounge_id":      9999,
		"items":          []gin.H{{"food_id": fx.Burger.ID, "quantity": 1}},
		"payment_method": "chapa",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"Abel Tesfaye", "Abel", "Tesfaye"},
		{"Abel", "Abel", "User"},
		{"Abel T. Mekonnen", "Abel", "T. Mekonnen"},
		{"", "CampusEats", "User"},
	}
	for _, tt := range tests {
		first, last := splitName(tt.in)
		assert.Equal(t, tt.first, first, fmt.Sprintf("first of %q", tt.in))
		assert.Equal(t, tt.last, last, fmt.Sprintf("last of %q", tt.in))
	}
}
