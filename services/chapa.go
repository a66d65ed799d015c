package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrGatewayUnavailable marks transport-level failures reaching Chapa.
// These are retryable and must never be treated as a declined payment.
var ErrGatewayUnavailable = errors.New("payment gateway unreachable")

// ChapaService talks to the Chapa transaction API
type ChapaService struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

// NewChapaService builds a client from the environment
func NewChapaService() *ChapaService {
	baseURL := os.Getenv("CHAPA_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.chapa.co/v1"
	}
	return &ChapaService{
		BaseURL:   baseURL,
		SecretKey: os.Getenv("CHAPA_SECRET_KEY"),
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// InitializeRequest carries everything Chapa needs to open a checkout
type InitializeRequest struct {
	Amount      float64
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Reference   string
	ReturnURL   string
	Description string
}

// InitializeResult is the checkout handle handed back to the client app
type InitializeResult struct {
	CheckoutURL string
}

// VerifyResult reports the gateway's view of one transaction. Success is
// only true for a gateway-confirmed successful payment; a false value with
// a nil error means the gateway explicitly declined or has not settled.
type VerifyResult struct {
	Success       bool
	Status        string
	TransactionID string
	Raw           json.RawMessage
}

type chapaEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializePayment opens a hosted checkout for the given reference
func (s *ChapaService) InitializePayment(req InitializeRequest) (*InitializeResult, error) {
	payload := map[string]interface{}{
		"amount":       fmt.Sprintf("%.2f", req.Amount),
		"currency":     "ETB",
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"phone_number": req.Phone,
		"tx_ref":       req.Reference,
		"callback_url": os.Getenv("CHAPA_CALLBACK_URL"),
		"return_url":   req.ReturnURL,
		"customization": map[string]string{
			"title":       "CampusEats",
			"description": req.Description,
		},
	}

	envelope, err := s.post("/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("payment initialization failed: %s", envelope.Message)
	}

	var data struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil || data.CheckoutURL == "" {
		return nil, fmt.Errorf("payment initialization returned no checkout URL")
	}

	return &InitializeResult{CheckoutURL: data.CheckoutURL}, nil
}

// VerifyPayment asks Chapa for the final state of a transaction reference
func (s *ChapaService) VerifyPayment(reference string) (*VerifyResult, error) {
	envelope, raw, err := s.get("/transaction/verify/" + reference)
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Raw: raw}
	if envelope.Status != "success" {
		result.Status = envelope.Status
		return result, nil
	}

	var data struct {
		Status        string `json:"status"`
		TransactionID string `json:"reference"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse verification response: %v", err)
	}

	result.Status = data.Status
	result.TransactionID = data.TransactionID
	result.Success = data.Status == "success"
	return result, nil
}

func (s *ChapaService) post(path string, payload interface{}) (*chapaEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	envelope, _, err := s.do(req)
	return envelope, err
}

func (s *ChapaService) get(path string) (*chapaEnvelope, json.RawMessage, error) {
	req, err := http.NewRequest(http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)

	return s.do(req)
}

func (s *ChapaService) do(req *http.Request) (*chapaEnvelope, json.RawMessage, error) {
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	// 5xx means Chapa itself is struggling; treat like a transport failure
	// so callers retry instead of failing the payment
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var envelope chapaEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed gateway response", ErrGatewayUnavailable)
	}

	return &envelope, body, nil
}
