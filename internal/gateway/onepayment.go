package gateway

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

const onePaymentInitURL = "https://api.1payment.com/init_payment"

// onePaymentAdapter speaks the 1Payment init_payment API. The provider
// signs requests with md5 over the method name, the parameters in
// alphabetical k=v form, and the shared secret.
type onePaymentAdapter struct {
	creds      OnePaymentCredentials
	httpClient *http.Client
}

func newOnePaymentAdapter(creds OnePaymentCredentials, httpClient *http.Client) *onePaymentAdapter {
	return &onePaymentAdapter{creds: creds, httpClient: httpClient}
}

func (a *onePaymentAdapter) Provider() types.Provider { return types.ProviderOnePayment }

// sign computes md5("init_payment" + sorted k=v params joined by & + secret).
func (a *onePaymentAdapter) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := md5.Sum([]byte("init_payment" + strings.Join(pairs, "&") + a.creds.APISecret))
	return hex.EncodeToString(sum[:])
}

func (a *onePaymentAdapter) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	params := map[string]string{
		"partner_id":   a.creds.PartnerID,
		"project_id":   a.creds.ProjectID,
		"payment_type": "card",
		"amount":       fmt.Sprintf("%d", req.Amount),
		"currency":     req.Currency,
		"description":  req.Description,
		// user_data carries the platform transaction id back on callbacks.
		"user_data":  req.TransactionID,
		"return_url": req.ReturnURL,
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("sign", a.sign(params))

	result, statusCode, err := getJSON(ctx, a.httpClient, onePaymentInitURL+"?"+values.Encode(), nil)
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
			ErrorMessage: fmt.Sprintf("1payment initiate returned http %d", statusCode),
			Raw:          result,
		}, nil
	}

	checkoutURL := str(result, "payment_url")
	if checkoutURL == "" {
		checkoutURL = str(result, "redirect_url")
	}
	if checkoutURL == "" {
		return &InitiateResult{
			Success:      false,
			ErrorCode:    ErrorCodeDeclined,
			ErrorMessage: fmt.Sprintf("error_code=%v %s", result["error_code"], str(result, "error")),
			Raw:          result,
		}, nil
	}

	return &InitiateResult{
		Success:     true,
		PaymentID:   req.TransactionID,
		CheckoutURL: checkoutURL,
		Raw:         result,
	}, nil
}

// CheckStatus is not offered by the provider's API; the transaction
// stays pending until its callback arrives.
func (a *onePaymentAdapter) CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	return &StatusResult{Status: types.PaymentStatusPending}, nil
}

func (a *onePaymentAdapter) VerifyWebhook(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error) {
	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, err
	}

	// A callback without a sign field is unauthenticated; an unsigned
	// "success" must never reach the status pipeline.
	received := values.Get("sign")
	if received == "" {
		return &WebhookResult{Success: false, Status: types.PaymentStatusFailed}, nil
	}
	params := make(map[string]string, len(values))
	for k := range values {
		if k == "sign" {
			continue
		}
		params[k] = values.Get(k)
	}
	if !hashEqual(a.sign(params), received) {
		return &WebhookResult{Success: false, Status: types.PaymentStatusFailed}, nil
	}

	raw := make(map[string]any, len(params))
	for k, v := range params {
		raw[k] = v
	}

	amount, _ := parsePaiseInt(values.Get("amount"))
	return &WebhookResult{
		Success:       true,
		TransactionID: values.Get("user_data"),
		GatewayTxnID:  values.Get("transaction_id"),
		Status:        mapStatus(onePaymentStatusMap, values.Get("status")),
		Amount:        amount,
		Raw:           raw,
	}, nil
}

// ValidateCredentials runs a one-paisa dry initiation; the provider
// rejects bad partner/project/secret combinations.
func (a *onePaymentAdapter) ValidateCredentials(ctx context.Context) bool {
	res, err := a.InitiatePayment(ctx, &InitiateRequest{
		TransactionID: "VALIDATE",
		Amount:        1,
		Currency:      "INR",
		Description:   "Credential validation",
	})
	return err == nil && res.Success
}

func parsePaiseInt(s string) (int64, error) {
	var n int64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n)
	return n, err
}
