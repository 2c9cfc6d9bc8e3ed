package lightspeed

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func testWrapper() *Wrapper {
	return NewWrapper("LightSpeed Payment Gateway", "https://pay.lightspeedpay.com/")
}

func TestGenerateTransactionID_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateTransactionID()
		require.True(t, strings.HasPrefix(id, "LSP_"))
		parts := strings.Split(id, "_")
		require.Len(t, parts, 3)
		require.Len(t, parts[2], 6)
		require.Equal(t, strings.ToUpper(parts[2]), parts[2])
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNormalizeTransactionID_PlatformIDsPassThrough(t *testing.T) {
	id := GenerateTransactionID()
	require.Equal(t, id, NormalizeTransactionID(id))
}

func TestNormalizeTransactionID_ProviderIDsGetRewritten(t *testing.T) {
	out := NormalizeTransactionID("pay_NXh2qWklxyz")
	require.True(t, strings.HasPrefix(out, "LSP_"))
	require.NotContains(t, out, "pay_NXh2qWklxyz")
}

func TestGenerateCheckoutURL_OwnDomainOnly(t *testing.T) {
	w := testWrapper()
	url := w.GenerateCheckoutURL("LSP_1_ABC123")
	require.Equal(t, "https://pay.lightspeedpay.com/checkout/LSP_1_ABC123", url)
}

func TestSanitizeStatus(t *testing.T) {
	require.Equal(t, "success", SanitizeStatus(types.PaymentStatusSuccess))
	require.Equal(t, "failed", SanitizeStatus(types.PaymentStatusFailed))
	require.Equal(t, "cancelled", SanitizeStatus(types.PaymentStatusCancelled))
	require.Equal(t, "pending", SanitizeStatus(types.PaymentStatusPending))
	require.Equal(t, "pending", SanitizeStatus("SOMETHING_ELSE"))
}

func TestSanitizeMessage_NeverEchoesInput(t *testing.T) {
	w := testWrapper()
	leaky := "razorpay api_key rzp_live_abc123 rejected: BAD_REQUEST_ERROR"
	msg := w.SanitizeMessage(leaky)
	require.NotContains(t, msg, "razorpay")
	require.NotContains(t, msg, "rzp_live_abc123")
	require.NotContains(t, msg, "BAD_REQUEST_ERROR")
}

func TestSanitizeMessage_ClosedSet(t *testing.T) {
	w := testWrapper()
	inputs := []string{
		"context deadline exceeded", "account suspended",
		"no gateway available", "validation failed: amount",
		"easebuzz said no", "",
	}
	for _, in := range inputs {
		msg := w.SanitizeMessage(in)
		require.NotEmpty(t, msg)
		lower := strings.ToLower(msg)
		require.NotContains(t, lower, "easebuzz")
		require.NotContains(t, lower, "payu")
	}
}

func TestSanitizeRawResponse_AllowListOnly(t *testing.T) {
	w := testWrapper()
	raw := map[string]any{
		"amount":       50000,
		"currency":     "INR",
		"status":       "captured",
		"created_at":   1720000000,
		"key":          "rzp_live_abc",
		"api_secret":   "supersecret",
		"razorpay_sig": "deadbeef",
		"entity":       map[string]any{"nested": true},
	}
	out := w.SanitizeRawResponse(raw)

	require.Equal(t, 50000, out["amount"])
	require.Equal(t, "INR", out["currency"])
	require.Equal(t, "LightSpeed Payment Gateway", out["processed_by"])
	require.NotContains(t, out, "key")
	require.NotContains(t, out, "api_secret")
	require.NotContains(t, out, "razorpay_sig")
	require.NotContains(t, out, "entity")

	// Nothing credential-shaped may survive serialization either.
	b, err := json.Marshal(out)
	require.NoError(t, err)
	require.NotContains(t, string(b), "rzp_live_abc")
	require.NotContains(t, string(b), "supersecret")
}

func TestSanitizeRawResponse_DeniedValueInAllowedField(t *testing.T) {
	w := testWrapper()
	out := w.SanitizeRawResponse(map[string]any{
		"status": "rejected by razorpay gateway",
	})
	require.NotContains(t, out, "status")
}

func TestSanitizePaymentResponse_BrandedShape(t *testing.T) {
	w := testWrapper()
	resp := w.SanitizePaymentResponse(true, "LSP_1_ABC123", types.PaymentStatusPending, 10000, "INR", "", true)

	require.True(t, resp.Success)
	require.Equal(t, "LSP_1_ABC123", resp.TransactionID)
	require.Equal(t, "pending", resp.Status)
	require.Equal(t, "LightSpeed Payment Gateway", resp.Gateway)
	require.Equal(t, "https://pay.lightspeedpay.com/checkout/LSP_1_ABC123", resp.CheckoutURL)
	require.Empty(t, resp.Message)
}

func TestSanitizeWebhookResponse_BrandedShape(t *testing.T) {
	w := testWrapper()
	resp := w.SanitizeWebhookResponse("ord-9", "LSP_1_ABC123", "pay_x1", 10000, types.PaymentStatusSuccess)

	require.Equal(t, "ord-9", resp.OrderID)
	require.Equal(t, "LSP_1_ABC123", resp.TransactionID)
	require.Equal(t, "pay_x1", resp.GatewayTransactionID)
	require.Equal(t, "success", resp.Status)
	require.Equal(t, "LightSpeed Payment Gateway", resp.Gateway)
	require.NotEmpty(t, resp.Timestamp)
}
