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

func easebuzzTestAdapter() *easebuzzAdapter {
	return newEasebuzzAdapter(EasebuzzCredentials{APIKey: "EZBZKEY", APISecret: "EZBZSALT"}, true, http.DefaultClient)
}

func TestEasebuzzForwardHash_SevenUDFSlots(t *testing.T) {
	a := easebuzzTestAdapter()
	got := a.forwardHash("LSP_1_XYZ999", "250.50", "Payment", "Customer", "c@example.com")

	raw := "EZBZKEY|LSP_1_XYZ999|250.50|Payment|Customer|c@example.com|||||||" + "|EZBZSALT"
	sum := sha512.Sum512([]byte(raw))
	require.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestEasebuzzReverseHash_SevenUDFSlots(t *testing.T) {
	a := easebuzzTestAdapter()
	got := a.reverseHash("success", "c@example.com", "Customer", "Payment", "250.50", "LSP_1_XYZ999", "EZBZKEY")

	raw := "EZBZSALT|success|||||||" + "|c@example.com|Customer|Payment|250.50|LSP_1_XYZ999|EZBZKEY"
	sum := sha512.Sum512([]byte(raw))
	require.Equal(t, hex.EncodeToString(sum[:]), got)
}

func easebuzzWebhookBody(a *easebuzzAdapter, status string) string {
	values := url.Values{}
	values.Set("key", a.creds.APIKey)
	values.Set("txnid", "LSP_1_XYZ999")
	values.Set("amount", "250.50")
	values.Set("productinfo", "Payment")
	values.Set("firstname", "Customer")
	values.Set("email", "c@example.com")
	values.Set("status", status)
	values.Set("easepayid", "E2407001")
	values.Set("hash", a.reverseHash(status, "c@example.com", "Customer", "Payment", "250.50", "LSP_1_XYZ999", a.creds.APIKey))
	return values.Encode()
}

func TestEasebuzzVerifyWebhook_AcceptsValidHash(t *testing.T) {
	a := easebuzzTestAdapter()
	res, err := a.VerifyWebhook(context.Background(), []byte(easebuzzWebhookBody(a, "success")), http.Header{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "LSP_1_XYZ999", res.TransactionID)
	require.Equal(t, "E2407001", res.GatewayTxnID)
	require.Equal(t, types.PaymentStatusSuccess, res.Status)
	require.Equal(t, int64(25050), res.Amount)
}

func TestEasebuzzVerifyWebhook_ValidHashUnknownTxn(t *testing.T) {
	// A correctly signed callback for a transaction this platform never
	// issued still verifies; resolution failures belong to processing.
	a := easebuzzTestAdapter()
	values, err := url.ParseQuery(easebuzzWebhookBody(a, "success"))
	require.NoError(t, err)
	values.Set("txnid", "UNKNOWN_TXN")
	values.Set("hash", a.reverseHash("success", "c@example.com", "Customer", "Payment", "250.50", "UNKNOWN_TXN", a.creds.APIKey))

	res, err := a.VerifyWebhook(context.Background(), []byte(values.Encode()), http.Header{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "UNKNOWN_TXN", res.TransactionID)
}

func TestEasebuzzVerifyWebhook_RejectsTamperedStatus(t *testing.T) {
	a := easebuzzTestAdapter()
	values, err := url.ParseQuery(easebuzzWebhookBody(a, "failed"))
	require.NoError(t, err)
	values.Set("status", "success")

	res, err := a.VerifyWebhook(context.Background(), []byte(values.Encode()), http.Header{})
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestEasebuzzVerifyWebhook_UserCancelMapsToCancelled(t *testing.T) {
	a := easebuzzTestAdapter()
	res, err := a.VerifyWebhook(context.Background(), []byte(easebuzzWebhookBody(a, "usercancel")), http.Header{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, types.PaymentStatusCancelled, res.Status)
}
