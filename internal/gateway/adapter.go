package gateway

import (
	"context"
	"net/http"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// ErrorCode is the provider-agnostic classification surfaced to the
// orchestration layer. Raw provider error text never leaves the adapter
// except inside InitiateResult.ErrorMessage, which is internal-only.
type ErrorCode string

const (
	ErrorCodeNone           ErrorCode = ""
	ErrorCodeDeclined       ErrorCode = "declined"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeNetwork        ErrorCode = "network"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	ErrorCodeUnavailable    ErrorCode = "unavailable"
)

// InitiateRequest is the uniform payment-initiation input. Amount is in
// minor units; adapters own the conversion to whatever unit the provider
// expects. TransactionID is the platform id and must be echoed through
// the provider's receipt/user_data/txnid field so webhooks can be
// resolved back to it.
type InitiateRequest struct {
	TransactionID string
	OrderID       string
	Amount        int64
	Currency      string
	Customer      types.CustomerInfo
	ReturnURL     string
	Description   string
}

type InitiateResult struct {
	Success bool
	// PaymentID is the provider's order/payment id, opaque to callers.
	PaymentID   string
	CheckoutURL string
	QRCode      string
	ErrorCode   ErrorCode
	// ErrorMessage carries provider detail for internal logs only.
	ErrorMessage string
	Raw          map[string]any
}

type StatusResult struct {
	Status       types.PaymentStatus
	GatewayTxnID string
	Amount       int64
	Raw          map[string]any
}

type WebhookResult struct {
	Success bool
	// TransactionID is the platform id recovered from the payload.
	TransactionID string
	GatewayTxnID  string
	Status        types.PaymentStatus
	Amount        int64
	Raw           map[string]any
}

// Adapter translates between the platform's uniform payment contract and
// one provider's wire protocol. Adapters are stateless; credentials are
// fixed at construction and never logged.
type Adapter interface {
	Provider() types.Provider

	// InitiatePayment makes one outbound call to the provider. A non-2xx
	// or provider-reported error yields Success=false with a classified
	// ErrorCode; the call itself only errors on unrecoverable misuse.
	InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)

	// CheckStatus maps the provider's status vocabulary onto the four
	// canonical values. Unknown provider statuses map to PENDING.
	CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error)

	// VerifyWebhook recomputes the provider's signature over the payload
	// and compares it in constant time. Any mismatch returns Success=false
	// and the payload must not be processed further.
	VerifyWebhook(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error)

	// ValidateCredentials makes a cheap, side-effect-light provider call
	// to confirm the credential pair is accepted.
	ValidateCredentials(ctx context.Context) bool
}
