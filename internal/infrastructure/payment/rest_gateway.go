package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/openshop/backend/internal/domain/payment"
)

// RestGateway implements payment.Gateway against an external REST payment
// processor. Every operation is a synchronous JSON call; a declined verdict
// maps to PaymentStatusFailed, a processing verdict to
// PaymentStatusProcessing.
type RestGateway struct {
	config     *RestGatewayConfig
	httpClient *http.Client
}

// NewRestGateway creates a new REST gateway adapter
func NewRestGateway(config *RestGatewayConfig) (*RestGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &RestGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Label implements payment.Gateway
func (g *RestGateway) Label() string {
	return g.config.Label
}

// Mode implements payment.Gateway
func (g *RestGateway) Mode() payment.GatewayMode {
	return payment.GatewayModeOnlineSync
}

// Authorize places a hold for the payment amount
func (g *RestGateway) Authorize(ctx context.Context, pay payment.Payment) (payment.Payment, error) {
	return g.call(ctx, "authorize", pay)
}

// Capture settles a previously authorized payment
func (g *RestGateway) Capture(ctx context.Context, pay payment.Payment) (payment.Payment, error) {
	return g.call(ctx, "capture", pay)
}

// Refund returns a captured amount to the customer
func (g *RestGateway) Refund(ctx context.Context, pay payment.Payment) (payment.Payment, error) {
	return g.call(ctx, "refund", pay)
}

// Void releases an authorization hold without settling
func (g *RestGateway) Void(ctx context.Context, pay payment.Payment) (payment.Payment, error) {
	return g.call(ctx, "void", pay)
}

func (g *RestGateway) call(ctx context.Context, operation string, pay payment.Payment) (payment.Payment, error) {
	reqBody := restPaymentRequest{
		MerchantID:     g.config.MerchantID,
		OrderNumber:    pay.OrderNumber,
		DeliveryNumber: pay.DeliveryNumber,
		Amount:         pay.Amount.StringFixed(2),
		Currency:       pay.Currency,
		TransactionRef: pay.TransactionRef,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return pay, fmt.Errorf("rest gateway: failed to marshal %s request: %w", operation, err)
	}

	url := fmt.Sprintf("%s/%s", g.config.BaseURL, operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pay, fmt.Errorf("rest gateway: failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return pay, fmt.Errorf("rest gateway: %s call failed: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pay, fmt.Errorf("rest gateway: failed to read %s response: %w", operation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return pay, fmt.Errorf("rest gateway: %s returned status %d", operation, resp.StatusCode)
	}

	var verdict restPaymentResponse
	if err := json.Unmarshal(body, &verdict); err != nil {
		return pay, fmt.Errorf("rest gateway: failed to decode %s response: %w", operation, err)
	}

	pay.TransactionRef = verdict.TransactionRef
	pay.Message = verdict.Message
	pay.ProcessedAt = time.Now()

	switch verdict.Result {
	case restResultApproved:
		pay.Result = payment.PaymentStatusOk
	case restResultProcessing:
		pay.Result = payment.PaymentStatusProcessing
	case restResultDeclined:
		pay.Result = payment.PaymentStatusFailed
	default:
		pay.Result = payment.PaymentStatusFailed
		pay.Message = fmt.Sprintf("unknown processor verdict %q", verdict.Result)
	}

	return pay, nil
}

var _ payment.Gateway = (*RestGateway)(nil)
