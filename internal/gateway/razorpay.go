package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// razorpayAdapter drives Razorpay through its official SDK. Razorpay
// takes amounts in paise directly, so no unit conversion happens here.
type razorpayAdapter struct {
	creds   RazorpayCredentials
	client  *razorpay.Client
	sandbox bool
}

func newRazorpayAdapter(creds RazorpayCredentials, sandbox bool, httpClient *http.Client) *razorpayAdapter {
	client := razorpay.NewClient(creds.APIKey, creds.APISecret)
	if httpClient != nil && httpClient.Timeout > 0 {
		client.SetTimeout(timeoutSeconds(httpClient.Timeout))
	}
	return &razorpayAdapter{creds: creds, client: client, sandbox: sandbox}
}

// timeoutSeconds converts the configured bound to the SDK's whole-second
// unit, rounding up so a sub-second bound still applies.
func timeoutSeconds(d time.Duration) int16 {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return int16(secs)
}

func (a *razorpayAdapter) Provider() types.Provider { return types.ProviderRazorpay }

func (a *razorpayAdapter) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	orderData := map[string]interface{}{
		"amount":   req.Amount,
		"currency": strings.ToUpper(req.Currency),
		// The platform transaction id rides in receipt and notes so the
		// webhook can be resolved without the provider id.
		"receipt": req.TransactionID,
		"notes": map[string]string{
			"lightspeed_txn_id": req.TransactionID,
			"order_id":          req.OrderID,
			"customer_name":     req.Customer.Name,
			"customer_email":    req.Customer.Email,
			"customer_phone":    req.Customer.Phone,
		},
	}

	order, err := a.client.Order.Create(orderData, nil)
	if err != nil {
		return &InitiateResult{
			Success:      false,
			ErrorCode:    a.classify(err),
			ErrorMessage: err.Error(),
		}, nil
	}

	return &InitiateResult{
		Success:   true,
		PaymentID: str(order, "id"),
		Raw:       order,
	}, nil
}

func (a *razorpayAdapter) CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	resp, err := a.client.Order.Payments(paymentID, nil, nil)
	if err != nil {
		return nil, err
	}

	items, _ := resp["items"].([]interface{})
	if len(items) == 0 {
		return &StatusResult{Status: types.PaymentStatusPending, Raw: resp}, nil
	}
	payment, _ := items[0].(map[string]interface{})
	if payment == nil {
		return &StatusResult{Status: types.PaymentStatusPending, Raw: resp}, nil
	}

	amount, _ := payment["amount"].(float64)
	return &StatusResult{
		Status:       mapStatus(razorpayStatusMap, str(payment, "status")),
		GatewayTxnID: str(payment, "id"),
		Amount:       int64(amount),
		Raw:          resp,
	}, nil
}

type razorpayWebhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity map[string]any `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// VerifyWebhook checks the HMAC-SHA256 of the raw body against the
// X-Razorpay-Signature header using the webhook secret.
func (a *razorpayAdapter) VerifyWebhook(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error) {
	signature := header.Get("X-Razorpay-Signature")
	secret := a.creds.WebhookSecret
	if secret == "" {
		secret = a.creds.APISecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hashEqual(expected, signature) {
		return &WebhookResult{Success: false, Status: types.PaymentStatusFailed}, nil
	}

	var env razorpayWebhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, err
	}
	entity := env.Payload.Payment.Entity
	if entity == nil {
		return &WebhookResult{Success: false, Status: types.PaymentStatusFailed}, nil
	}

	txnID := ""
	if notes, ok := entity["notes"].(map[string]any); ok {
		txnID = str(notes, "lightspeed_txn_id")
	}
	amount, _ := entity["amount"].(float64)

	var raw map[string]any
	_ = json.Unmarshal(payload, &raw)

	return &WebhookResult{
		Success:       true,
		TransactionID: txnID,
		GatewayTxnID:  str(entity, "id"),
		Status:        mapStatus(razorpayEventMap, env.Event),
		Amount:        int64(amount),
		Raw:           raw,
	}, nil
}

func (a *razorpayAdapter) ValidateCredentials(ctx context.Context) bool {
	_, err := a.client.Order.All(map[string]interface{}{"count": 1}, nil)
	return err == nil
}

func (a *razorpayAdapter) classify(err error) ErrorCode {
	if code := classifyTransportError(err); code == ErrorCodeTimeout {
		return code
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "bad_request"), strings.Contains(msg, "invalid"):
		return ErrorCodeInvalidRequest
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "unauthorized"):
		return ErrorCodeDeclined
	default:
		return ErrorCodeUnavailable
	}
}
