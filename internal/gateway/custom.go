package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// customAdapter integrates merchant-operated gateways behind a generic
// JSON envelope: requests carry an X-Api-Key header and an HMAC-SHA256
// signature of the body; webhooks are verified the same way.
type customAdapter struct {
	creds      CustomCredentials
	httpClient *http.Client
}

func newCustomAdapter(creds CustomCredentials, httpClient *http.Client) *customAdapter {
	return &customAdapter{creds: creds, httpClient: httpClient}
}

func (a *customAdapter) Provider() types.Provider { return types.ProviderCustom }

func (a *customAdapter) signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(a.creds.APISecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (a *customAdapter) post(ctx context.Context, path string, payload map[string]any) (map[string]any, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.creds.EndpointURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", a.creds.APIKey)
	req.Header.Set("X-Signature", a.signBody(body))

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp.StatusCode, err
	}
	return out, resp.StatusCode, nil
}

func (a *customAdapter) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	result, statusCode, err := a.post(ctx, "/payments", map[string]any{
		"transaction_id": req.TransactionID,
		"order_id":       req.OrderID,
		"amount":         req.Amount,
		"currency":       req.Currency,
		"customer":       req.Customer,
		"return_url":     req.ReturnURL,
		"description":    req.Description,
	})
	if err != nil {
		return &InitiateResult{
			Success:      false,
			ErrorCode:    classifyTransportError(err),
			ErrorMessage: err.Error(),
		}, nil
	}
	if statusCode >= 300 {
		return &InitiateResult{
			Success:      false,
			ErrorCode:    ErrorCodeUnavailable,
			ErrorMessage: fmt.Sprintf("custom gateway returned http %d", statusCode),
			Raw:          result,
		}, nil
	}

	return &InitiateResult{
		Success:     true,
		PaymentID:   str(result, "payment_id"),
		CheckoutURL: str(result, "checkout_url"),
		QRCode:      str(result, "qr_code"),
		Raw:         result,
	}, nil
}

func (a *customAdapter) CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	result, statusCode, err := a.post(ctx, "/payments/status", map[string]any{"payment_id": paymentID})
	if err != nil {
		return nil, err
	}
	if statusCode >= 300 {
		return nil, fmt.Errorf("custom gateway status returned http %d", statusCode)
	}

	var amount int64
	if v, ok := result["amount"].(float64); ok {
		amount = int64(v)
	}
	return &StatusResult{
		Status:       mapStatus(customStatusMap, str(result, "status")),
		GatewayTxnID: str(result, "transaction_id"),
		Amount:       amount,
		Raw:          result,
	}, nil
}

func (a *customAdapter) VerifyWebhook(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error) {
	secret := a.creds.WebhookSecret
	if secret == "" {
		secret = a.creds.APISecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	if !hashEqual(hex.EncodeToString(mac.Sum(nil)), header.Get("X-Signature")) {
		return &WebhookResult{Success: false, Status: types.PaymentStatusFailed}, nil
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	var amount int64
	if v, ok := raw["amount"].(float64); ok {
		amount = int64(v)
	}
	return &WebhookResult{
		Success:       true,
		TransactionID: str(raw, "transaction_id"),
		GatewayTxnID:  str(raw, "gateway_transaction_id"),
		Status:        mapStatus(customStatusMap, str(raw, "status")),
		Amount:        amount,
		Raw:           raw,
	}, nil
}

func (a *customAdapter) ValidateCredentials(ctx context.Context) bool {
	_, statusCode, err := a.post(ctx, "/ping", map[string]any{})
	return err == nil && statusCode < 300
}
