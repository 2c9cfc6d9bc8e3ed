package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func TestCustomInitiatePayment_SignsRequestBody(t *testing.T) {
	var gotKey, gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments", r.URL.Path)
		gotKey = r.Header.Get("X-Api-Key")
		gotSig = r.Header.Get("X-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"payment_id":   "cg_123",
			"checkout_url": "https://merchant-gw.example.com/pay/cg_123",
		})
	}))
	defer srv.Close()

	a := newCustomAdapter(CustomCredentials{
		EndpointURL: srv.URL,
		APIKey:      "ck_live",
		APISecret:   "cs_live",
	}, srv.Client())

	res, err := a.InitiatePayment(context.Background(), &InitiateRequest{
		TransactionID: "LSP_1_CUST01",
		OrderID:       "ord-1",
		Amount:        7500,
		Currency:      "INR",
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "cg_123", res.PaymentID)
	require.Equal(t, "https://merchant-gw.example.com/pay/cg_123", res.CheckoutURL)

	require.Equal(t, "ck_live", gotKey)
	mac := hmac.New(sha256.New, []byte("cs_live"))
	mac.Write(gotBody)
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSig)
}

func TestCustomVerifyWebhook_HMACOverRawBody(t *testing.T) {
	a := newCustomAdapter(CustomCredentials{
		EndpointURL:   "https://merchant-gw.example.com",
		APIKey:        "ck_live",
		APISecret:     "cs_live",
		WebhookSecret: "whsec_custom",
	}, http.DefaultClient)

	body, err := json.Marshal(map[string]any{
		"transaction_id":         "LSP_1_CUST01",
		"gateway_transaction_id": "cg_123",
		"status":                 "success",
		"amount":                 7500,
	})
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("whsec_custom"))
	mac.Write(body)
	header := http.Header{}
	header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))

	res, err := a.VerifyWebhook(context.Background(), body, header)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "LSP_1_CUST01", res.TransactionID)
	require.Equal(t, types.PaymentStatusSuccess, res.Status)
	require.Equal(t, int64(7500), res.Amount)

	// Any modification of the body invalidates the signature.
	body[0] ^= 0x01
	res, err = a.VerifyWebhook(context.Background(), body, header)
	require.NoError(t, err)
	require.False(t, res.Success)
}

func TestCustomValidateCredentials_PingsEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ping", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer srv.Close()

	a := newCustomAdapter(CustomCredentials{
		EndpointURL: srv.URL,
		APIKey:      "ck",
		APISecret:   "cs",
	}, srv.Client())
	require.True(t, a.ValidateCredentials(context.Background()))
}
