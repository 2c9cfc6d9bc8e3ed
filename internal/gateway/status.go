package gateway

import (
	"strings"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// Per-provider status vocabularies, centralized so the full mapping is
// reviewable in one place. Anything unmapped falls back to PENDING; a
// provider status must never silently land in a terminal state.

var razorpayStatusMap = map[string]types.PaymentStatus{
	"created":    types.PaymentStatusPending,
	"authorized": types.PaymentStatusPending,
	"captured":   types.PaymentStatusSuccess,
	"paid":       types.PaymentStatusSuccess,
	"failed":     types.PaymentStatusFailed,
	"cancelled":  types.PaymentStatusCancelled,
	"refunded":   types.PaymentStatusSuccess,
}

var razorpayEventMap = map[string]types.PaymentStatus{
	"payment.created":    types.PaymentStatusPending,
	"payment.authorized": types.PaymentStatusPending,
	"payment.captured":   types.PaymentStatusSuccess,
	"payment.failed":     types.PaymentStatusFailed,
	"payment.cancelled":  types.PaymentStatusCancelled,
}

var payuStatusMap = map[string]types.PaymentStatus{
	"success":       types.PaymentStatusSuccess,
	"failure":       types.PaymentStatusFailed,
	"failed":        types.PaymentStatusFailed,
	"pending":       types.PaymentStatusPending,
	"in progress":   types.PaymentStatusPending,
	"usercancelled": types.PaymentStatusCancelled,
	"dropped":       types.PaymentStatusCancelled,
}

var easebuzzStatusMap = map[string]types.PaymentStatus{
	"success":    types.PaymentStatusSuccess,
	"captured":   types.PaymentStatusSuccess,
	"failed":     types.PaymentStatusFailed,
	"failure":    types.PaymentStatusFailed,
	"usercancel": types.PaymentStatusCancelled,
	"dropped":    types.PaymentStatusCancelled,
	"bounced":    types.PaymentStatusFailed,
	"pending":    types.PaymentStatusPending,
	"initiated":  types.PaymentStatusPending,
}

var onePaymentStatusMap = map[string]types.PaymentStatus{
	"success":   types.PaymentStatusSuccess,
	"completed": types.PaymentStatusSuccess,
	"1":         types.PaymentStatusSuccess,
	"failed":    types.PaymentStatusFailed,
	"error":     types.PaymentStatusFailed,
	"0":         types.PaymentStatusFailed,
	"cancelled": types.PaymentStatusCancelled,
	"pending":   types.PaymentStatusPending,
}

// customStatusMap covers merchant-operated gateways, which are expected
// to report in the canonical vocabulary already.
var customStatusMap = map[string]types.PaymentStatus{
	"pending":   types.PaymentStatusPending,
	"created":   types.PaymentStatusPending,
	"success":   types.PaymentStatusSuccess,
	"completed": types.PaymentStatusSuccess,
	"failed":    types.PaymentStatusFailed,
	"error":     types.PaymentStatusFailed,
	"cancelled": types.PaymentStatusCancelled,
}

func mapStatus(table map[string]types.PaymentStatus, providerStatus string) types.PaymentStatus {
	if s, ok := table[strings.ToLower(strings.TrimSpace(providerStatus))]; ok {
		return s
	}
	return types.PaymentStatusPending
}
