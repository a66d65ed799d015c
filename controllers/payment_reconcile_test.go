package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// chapaStub serves the verify endpoint with a fixed gateway answer
func chapaStub(t *testing.T, status int, body string) *services.ChapaService {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return &services.ChapaService{
		BaseURL:   srv.URL,
		SecretKey: "test-key",
		Client:    srv.Client(),
	}
}

const verifiedBody = `{"status":"success","message":"ok","data":{"status":"success","reference":"tx-abc"}}`

func seedPendingOrderPayment(t *testing.T, db *gorm.DB, fx fixture) (models.Payment, models.Order) {
	t.Helper()

	tx := db.Begin()
	order, appErr := buildOrder(tx, fx.Customer, createOrderRequest{
		LoungeID:      fx.Lounge.ID,
		Items:         []orderItemRequest{{FoodID: fx.Burger.ID, Quantity: 1}},
		PaymentMethod: "chapa",
	}, 0.05)
	require.Nil(t, appErr)
	require.NoError(t, tx.Commit().Error)

	var payment models.Payment
	require.NoError(t, db.First(&payment, *order.PaymentID).Error)
	payment.ChapaReference = fmt.Sprintf("CE-%d-%d", time.Now().Unix(), payment.ID)
	require.NoError(t, db.Model(&payment).Update("chapa_reference", payment.ChapaReference).Error)
	return payment, *order
}

func TestReconcilePayment_SuccessAdvancesOrder(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	payment, order := seedPendingOrderPayment(t, db, fx)
	gateway := chapaStub(t, http.StatusOK, verifiedBody)

	appErr := reconcilePayment(db, gateway, &payment)
	require.Nil(t, appErr)

	var storedPayment models.Payment
	require.NoError(t, db.First(&storedPayment, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, storedPayment.Status)
	assert.Equal(t, "tx-abc", storedPayment.ChapaTransactionID)

	var storedOrder models.Order
	require.NoError(t, db.First(&storedOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusPreparing, storedOrder.Status)
}

func TestReconcilePayment_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	payment, order := seedPendingOrderPayment(t, db, fx)
	gateway := chapaStub(t, http.StatusOK, verifiedBody)

	// Webhook and poll race; both must succeed, the side effect fires once
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := payment
			appErr := reconcilePayment(db, gateway, &p)
			assert.Nil(t, appErr)
		}()
	}
	wg.Wait()

	// A third call against the already-completed payment is a no-op
	completed := payment
	completed.Status = models.PaymentStatusCompleted
	require.Nil(t, reconcilePayment(db, gateway, &completed))

	var storedOrder models.Order
	require.NoError(t, db.First(&storedOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusPreparing, storedOrder.Status)
}

func TestReconcilePayment_ActivatesContractOnce(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)

	contract := models.Contract{
		UserID:           fx.Customer.ID,
		LoungeID:         fx.Lounge.ID,
		TotalAmount:      500,
		RemainingBalance: 500,
		StartDate:        time.Now(),
		ExpiresAt:        time.Now().AddDate(0, 0, 30),
	}
	require.NoError(t, db.Create(&contract).Error)

	payment := models.Payment{
		UserID:         fx.Customer.ID,
		Amount:         500,
		Type:           models.PaymentTypeContract,
		Method:         models.PaymentMethodChapa,
		Status:         models.PaymentStatusPending,
		ContractID:     &contract.ID,
		ChapaReference: "CE-1-1",
	}
	require.NoError(t, db.Create(&payment).Error)

	gateway := chapaStub(t, http.StatusOK, verifiedBody)
	require.Nil(t, reconcilePayment(db, gateway, &payment))
	// Replay of the same webhook
	replay := payment
	replay.Status = models.PaymentStatusPending
	require.Nil(t, reconcilePayment(db, gateway, &replay))

	var stored models.Contract
	require.NoError(t, db.First(&stored, contract.ID).Error)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsExpired)
}

func TestReconcilePayment_DeclinedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	payment, order := seedPendingOrderPayment(t, db, fx)
	gateway := chapaStub(t, http.StatusOK,
		`{"status":"success","message":"ok","data":{"status":"failed","reference":"tx-dead"}}`)

	appErr := reconcilePayment(db, gateway, &payment)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Payment verification failed", appErr.Message)

	var storedPayment models.Payment
	require.NoError(t, db.First(&storedPayment, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, storedPayment.Status)

	// The order never advances on a failed payment
	var storedOrder models.Order
	require.NoError(t, db.First(&storedOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusPending, storedOrder.Status)
}

func TestReconcilePayment_PendingLeavesPaymentPending(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	payment, _ := seedPendingOrderPayment(t, db, fx)
	gateway := chapaStub(t, http.StatusOK,
		`{"status":"success","message":"ok","data":{"status":"pending","reference":""}}`)

	appErr := reconcilePayment(db, gateway, &payment)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)

	var stored models.Payment
	require.NoError(t, db.First(&stored, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
}

func TestReconcilePayment_GatewayDownIsRetryable(t *testing.T) {
	db := setupTestDB(t)
	fx := seedCatalog(t, db)
	payment, _ := seedPendingOrderPayment(t, db, fx)
	gateway := chapaStub(t, http.StatusBadGateway, `upstream error`)

	appErr := reconcilePayment(db, gateway, &payment)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)

	// Gateway trouble must never touch the payment row
	var stored models.Payment
	require.NoError(t, db.First(&stored, payment.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
}

func TestReconcilePayment_UninitializedPayment(t *testing.T) {
	db := setupTestDB(t)
	gateway := chapaStub(t, http.StatusOK, verifiedBody)

	payment := models.Payment{Status: models.PaymentStatusPending}
	appErr := reconcilePayment(db, gateway, &payment)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}
