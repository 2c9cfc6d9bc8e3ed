package lightspeed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// Wrapper rewrites provider responses into the platform's own branded
// shape. It performs no I/O; every method is a pure function over its
// inputs plus the configured brand settings.
type Wrapper struct {
	brandName       string
	checkoutBaseURL string
}

func NewWrapper(brandName, checkoutBaseURL string) *Wrapper {
	return &Wrapper{
		brandName:       brandName,
		checkoutBaseURL: strings.TrimRight(checkoutBaseURL, "/"),
	}
}

const txnIDPrefix = "LSP_"

// PaymentResponse is the only payment-initiation shape merchants ever see.
type PaymentResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Message       string `json:"message,omitempty"`
	Gateway       string `json:"gateway"`
}

// WebhookResponse is the shape forwarded to merchant webhook URLs.
type WebhookResponse struct {
	OrderID              string `json:"order_id"`
	TransactionID        string `json:"transaction_id"`
	GatewayTransactionID string `json:"gateway_transaction_id,omitempty"`
	Amount               int64  `json:"amount"`
	Status               string `json:"status"`
	Gateway              string `json:"gateway"`
	Timestamp            string `json:"timestamp"`
}

// GenerateTransactionID issues a platform transaction id. The id is
// system-owned and never derived from any provider id.
func GenerateTransactionID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s%d_%s", txnIDPrefix, time.Now().UnixMilli(), suffix)
}

// IsTransactionID reports whether s already follows the platform format.
func IsTransactionID(s string) bool {
	return strings.HasPrefix(s, txnIDPrefix)
}

// NormalizeTransactionID converts any provider id into the platform
// format. Platform ids pass through unchanged, so the mapping is stable.
func NormalizeTransactionID(gatewayTxnID string) string {
	if IsTransactionID(gatewayTxnID) {
		return gatewayTxnID
	}
	tail := gatewayTxnID
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return fmt.Sprintf("%s%d_%s", txnIDPrefix, time.Now().UnixMilli(), strings.ToUpper(tail))
}

// GenerateCheckoutURL returns a checkout URL on the platform's own domain.
func (w *Wrapper) GenerateCheckoutURL(transactionID string) string {
	return w.checkoutBaseURL + "/checkout/" + NormalizeTransactionID(transactionID)
}

// BrandName returns the merchant-visible gateway name.
func (w *Wrapper) BrandName() string {
	return w.brandName
}

// SanitizeStatus lowers a canonical status into the merchant-facing
// vocabulary (pending/success/failed/cancelled).
func SanitizeStatus(s types.PaymentStatus) string {
	switch s {
	case types.PaymentStatusSuccess:
		return "success"
	case types.PaymentStatusFailed:
		return "failed"
	case types.PaymentStatusCancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// SanitizeMessage maps internal or provider error text onto a small closed
// set of generic messages. Provider text is never echoed.
func (w *Wrapper) SanitizeMessage(internal string) string {
	if internal == "" {
		return "Transaction processed by " + w.brandName
	}
	lower := strings.ToLower(internal)
	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return "Payment processing timeout. Please check status or contact support."
	case strings.Contains(lower, "suspend"):
		return "Account suspended. Please contact support."
	case strings.Contains(lower, "unavailable") || strings.Contains(lower, "no gateway"):
		return "Service temporarily unavailable. Please retry after a short delay."
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "validation"):
		return "Invalid payment request."
	default:
		return "Payment processing failed. Please try again or contact support."
	}
}

// credential-shaped field name fragments scrubbed from raw snapshots, on
// top of the allow-list below
var denyFragments = []string{
	"api_key", "key_id", "merchant_key", "salt", "secret", "token",
	"razorpay", "payu", "easebuzz", "onepayment", "cashfree", "phonepe",
	"paytm", "provider", "gateway_id", "pg_id", "hash", "sign",
}

// allowedRawFields is the primary mechanism: only these fields survive.
var allowedRawFields = []string{"amount", "currency", "status", "created_at"}

// SanitizeRawResponse reduces a raw provider response to an allow-listed
// snapshot safe to persist and expose. The deny-list scrub is defense in
// depth against allow-listed keys nesting sensitive values.
func (w *Wrapper) SanitizeRawResponse(raw map[string]any) map[string]any {
	out := map[string]any{
		"processed_by": w.brandName,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	if raw == nil {
		return out
	}
	for _, field := range allowedRawFields {
		v, ok := raw[field]
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr && containsDenied(s) {
			continue
		}
		out[field] = v
	}
	return out
}

func containsDenied(s string) bool {
	lower := strings.ToLower(s)
	for _, frag := range denyFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// SanitizePaymentResponse builds the merchant payment response for a
// transaction, regardless of which provider handled it.
func (w *Wrapper) SanitizePaymentResponse(success bool, transactionID string, status types.PaymentStatus, amount int64, currency, internalMessage string, withCheckout bool) *PaymentResponse {
	resp := &PaymentResponse{
		Success:       success,
		TransactionID: NormalizeTransactionID(transactionID),
		Status:        SanitizeStatus(status),
		Amount:        amount,
		Currency:      currency,
		Gateway:       w.brandName,
	}
	if withCheckout {
		resp.CheckoutURL = w.GenerateCheckoutURL(transactionID)
	}
	if !success || internalMessage != "" {
		resp.Message = w.SanitizeMessage(internalMessage)
	}
	return resp
}

// SanitizeWebhookResponse builds the payload forwarded to a merchant's
// webhook URL.
func (w *Wrapper) SanitizeWebhookResponse(orderID, transactionID, gatewayTxnID string, amount int64, status types.PaymentStatus) *WebhookResponse {
	return &WebhookResponse{
		OrderID:              orderID,
		TransactionID:        NormalizeTransactionID(transactionID),
		GatewayTransactionID: gatewayTxnID,
		Amount:               amount,
		Status:               SanitizeStatus(status),
		Gateway:              w.brandName,
		Timestamp:            time.Now().UTC().Format(time.RFC3339),
	}
}
