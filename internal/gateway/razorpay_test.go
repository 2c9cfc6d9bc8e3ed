package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func razorpayTestAdapter() *razorpayAdapter {
	return newRazorpayAdapter(RazorpayCredentials{
		APIKey:        "rzp_test_key",
		APISecret:     "rzp_test_secret",
		WebhookSecret: "whsec_test",
	}, true, http.DefaultClient)
}

func razorpayWebhookBody(t *testing.T, event, txnID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"event": event,
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{
					"id":     "pay_NXh2qWkl",
					"amount": 50000,
					"status": "captured",
					"notes":  map[string]any{"lightspeed_txn_id": txnID},
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func signRazorpay(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestRazorpayVerifyWebhook_AcceptsValidSignature(t *testing.T) {
	a := razorpayTestAdapter()
	body := razorpayWebhookBody(t, "payment.captured", "LSP_1_RZP001")

	header := http.Header{}
	header.Set("X-Razorpay-Signature", signRazorpay("whsec_test", body))

	res, err := a.VerifyWebhook(context.Background(), body, header)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "LSP_1_RZP001", res.TransactionID)
	require.Equal(t, "pay_NXh2qWkl", res.GatewayTxnID)
	require.Equal(t, types.PaymentStatusSuccess, res.Status)
	require.Equal(t, int64(50000), res.Amount)
}

func TestRazorpayVerifyWebhook_RejectsFlippedByte(t *testing.T) {
	a := razorpayTestAdapter()
	body := razorpayWebhookBody(t, "payment.captured", "LSP_1_RZP001")

	header := http.Header{}
	header.Set("X-Razorpay-Signature", signRazorpay("whsec_test", body))

	tampered := make([]byte, len(body))
	copy(tampered, body)
	tampered[len(tampered)/2] ^= 0x01

	res, err := a.VerifyWebhook(context.Background(), tampered, header)
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestRazorpayVerifyWebhook_RejectsMissingSignature(t *testing.T) {
	a := razorpayTestAdapter()
	body := razorpayWebhookBody(t, "payment.captured", "LSP_1_RZP001")

	res, err := a.VerifyWebhook(context.Background(), body, http.Header{})
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestRazorpayVerifyWebhook_FallsBackToAPISecret(t *testing.T) {
	a := newRazorpayAdapter(RazorpayCredentials{
		APIKey:    "rzp_test_key",
		APISecret: "rzp_test_secret",
	}, true, http.DefaultClient)
	body := razorpayWebhookBody(t, "payment.failed", "LSP_1_RZP002")

	header := http.Header{}
	header.Set("X-Razorpay-Signature", signRazorpay("rzp_test_secret", body))

	res, err := a.VerifyWebhook(context.Background(), body, header)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, types.PaymentStatusFailed, res.Status)
}

func TestRazorpayVerifyWebhook_UnknownEventStaysPending(t *testing.T) {
	a := razorpayTestAdapter()
	body := razorpayWebhookBody(t, "payment.dispute.created", "LSP_1_RZP003")

	header := http.Header{}
	header.Set("X-Razorpay-Signature", signRazorpay("whsec_test", body))

	res, err := a.VerifyWebhook(context.Background(), body, header)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, types.PaymentStatusPending, res.Status)
}

func TestTimeoutSeconds_RoundsUp(t *testing.T) {
	require.EqualValues(t, 30, timeoutSeconds(30*time.Second))
	require.EqualValues(t, 3, timeoutSeconds(2500*time.Millisecond))
	require.EqualValues(t, 1, timeoutSeconds(200*time.Millisecond))
}
