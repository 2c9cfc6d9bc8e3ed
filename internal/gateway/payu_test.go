package gateway

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func payuTestAdapter() *payuAdapter {
	return newPayUAdapter(PayUCredentials{MerchantKey: "gtKFFx", Salt: "eCwWELxi"}, true, http.DefaultClient)
}

func TestPayURequestHash_MatchesProtocolRecipe(t *testing.T) {
	a := payuTestAdapter()
	got := a.requestHash("LSP_1_ABC123", "100.00", "Payment", "Customer", "c@example.com")

	raw := "gtKFFx|LSP_1_ABC123|100.00|Payment|Customer|c@example.com|||||||||||eCwWELxi"
	sum := sha512.Sum512([]byte(raw))
	require.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestPayUWebhookHash_MatchesProtocolRecipe(t *testing.T) {
	a := payuTestAdapter()
	got := a.webhookHash("success", "c@example.com", "Customer", "Payment", "100.00", "LSP_1_ABC123", "gtKFFx")

	raw := "eCwWELxi|success|||||||||||c@example.com|Customer|Payment|100.00|LSP_1_ABC123|gtKFFx"
	sum := sha512.Sum512([]byte(raw))
	require.Equal(t, hex.EncodeToString(sum[:]), got)
}

func payuWebhookBody(a *payuAdapter, status string) string {
	values := url.Values{}
	values.Set("key", a.creds.MerchantKey)
	values.Set("txnid", "LSP_1_ABC123")
	values.Set("amount", "100.00")
	values.Set("productinfo", "Payment")
	values.Set("firstname", "Customer")
	values.Set("email", "c@example.com")
	values.Set("status", status)
	values.Set("mihpayid", "403993715527")
	values.Set("hash", a.webhookHash(status, "c@example.com", "Customer", "Payment", "100.00", "LSP_1_ABC123", a.creds.MerchantKey))
	return values.Encode()
}

func TestPayUVerifyWebhook_AcceptsValidHash(t *testing.T) {
	a := payuTestAdapter()
	res, err := a.VerifyWebhook(context.Background(), []byte(payuWebhookBody(a, "success")), http.Header{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "LSP_1_ABC123", res.TransactionID)
	require.Equal(t, "403993715527", res.GatewayTxnID)
	require.Equal(t, types.PaymentStatusSuccess, res.Status)
	require.Equal(t, int64(10000), res.Amount)
}

func TestPayUVerifyWebhook_RejectsTamperedPayload(t *testing.T) {
	a := payuTestAdapter()
	body := payuWebhookBody(a, "success")

	// Flipping the amount invalidates the hash.
	values, err := url.ParseQuery(body)
	require.NoError(t, err)
	values.Set("amount", "999.00")

	res, err := a.VerifyWebhook(context.Background(), []byte(values.Encode()), http.Header{})
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestPayUVerifyWebhook_RejectsWrongSalt(t *testing.T) {
	a := payuTestAdapter()
	body := payuWebhookBody(a, "success")

	other := newPayUAdapter(PayUCredentials{MerchantKey: "gtKFFx", Salt: "wrong"}, true, http.DefaultClient)
	res, err := other.VerifyWebhook(context.Background(), []byte(body), http.Header{})
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestPayUInitiatePayment_SignsHostedForm(t *testing.T) {
	a := payuTestAdapter()
	res, err := a.InitiatePayment(context.Background(), &InitiateRequest{
		TransactionID: "LSP_1_ABC123",
		OrderID:       "order-9",
		Amount:        10000,
		Currency:      "INR",
		Customer:      types.CustomerInfo{Name: "Customer", Email: "c@example.com"},
		ReturnURL:     "https://pay.example.com/return",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "LSP_1_ABC123", res.PaymentID)
	require.Equal(t, payuTestBaseURL, res.Raw["action"])
	require.Equal(t, "100.00", res.Raw["amount"])
	require.Equal(t, "payu_paisa", res.Raw["service_provider"])
	require.Equal(t,
		a.requestHash("LSP_1_ABC123", "100.00", "Payment", "Customer", "c@example.com"),
		res.Raw["hash"])
}
