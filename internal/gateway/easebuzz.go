package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

const (
	easebuzzTestPayURL  = "https://testpay.easebuzz.in/payment/initiateLink"
	easebuzzProdPayURL  = "https://pay.easebuzz.in/payment/initiateLink"
	easebuzzTestDashURL = "https://testdashboard.easebuzz.in/transaction/v1/retrieve"
	easebuzzProdDashURL = "https://dashboard.easebuzz.in/transaction/v1/retrieve"
)

// easebuzzAdapter speaks Easebuzz's initiateLink protocol. Amounts go out
// in rupees with two decimals; the webhook carries a sha512 reverse hash
// in the form body.
type easebuzzAdapter struct {
	creds      EasebuzzCredentials
	sandbox    bool
	httpClient *http.Client
}

func newEasebuzzAdapter(creds EasebuzzCredentials, sandbox bool, httpClient *http.Client) *easebuzzAdapter {
	return &easebuzzAdapter{creds: creds, sandbox: sandbox, httpClient: httpClient}
}

func (a *easebuzzAdapter) Provider() types.Provider { return types.ProviderEasebuzz }

func (a *easebuzzAdapter) payURL() string {
	if a.sandbox {
		return easebuzzTestPayURL
	}
	return easebuzzProdPayURL
}

func (a *easebuzzAdapter) dashURL() string {
	if a.sandbox {
		return easebuzzTestDashURL
	}
	return easebuzzProdDashURL
}

// forwardHash: sha512(key|txnid|amount|productinfo|firstname|email|udf1..udf7|salt)
// with all seven UDF slots empty.
func (a *easebuzzAdapter) forwardHash(txnid, amount, productinfo, firstname, email string) string {
	parts := []string{a.creds.APIKey, txnid, amount, productinfo, firstname, email,
		"", "", "", "", "", "", "", a.creds.APISecret}
	return sha512Hex(strings.Join(parts, "|"))
}

// reverseHash: sha512(salt|status|udf7..udf1|email|firstname|productinfo|amount|txnid|key)
// with all seven UDF slots empty.
func (a *easebuzzAdapter) reverseHash(status, email, firstname, productinfo, amount, txnid, key string) string {
	parts := []string{a.creds.APISecret, status,
		"", "", "", "", "", "", "", email, firstname, productinfo, amount, txnid, key}
	return sha512Hex(strings.Join(parts, "|"))
}

func (a *easebuzzAdapter) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	amount := paiseToRupees(req.Amount)
	productinfo := req.Description
	if productinfo == "" {
		productinfo = "Payment"
	}
	firstname := req.Customer.Name
	if firstname == "" {
		firstname = "Customer"
	}

	values := url.Values{}
	values.Set("key", a.creds.APIKey)
	values.Set("txnid", req.TransactionID)
	values.Set("amount", amount)
	values.Set("productinfo", productinfo)
	values.Set("firstname", firstname)
	values.Set("email", req.Customer.Email)
	values.Set("phone", req.Customer.Phone)
	values.Set("surl", req.ReturnURL)
	values.Set("furl", req.ReturnURL)
	values.Set("hash", a.forwardHash(req.TransactionID, amount, productinfo, firstname, req.Customer.Email))

	result, statusCode, err := postForm(ctx, a.httpClient, a.payURL(), values)
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
			ErrorMessage: fmt.Sprintf("easebuzz initiate returned http %d", statusCode),
			Raw:          result,
		}, nil
	}

	if v, ok := result["status"].(float64); !ok || v != 1 {
		return &InitiateResult{
			Success:      false,
			ErrorCode:    ErrorCodeDeclined,
			ErrorMessage: str(result, "data"),
			Raw:          result,
		}, nil
	}

	// On success "data" is the provider checkout URL (access-key link).
	return &InitiateResult{
		Success:     true,
		PaymentID:   req.TransactionID,
		CheckoutURL: str(result, "data"),
		Raw:         result,
	}, nil
}

func (a *easebuzzAdapter) CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	values := url.Values{}
	values.Set("key", a.creds.APIKey)
	values.Set("txnid", paymentID)
	values.Set("email", "")
	values.Set("hash", sha512Hex(strings.Join([]string{a.creds.APIKey, paymentID, "", a.creds.APISecret}, "|")))

	result, statusCode, err := postForm(ctx, a.httpClient, a.dashURL(), values)
	if err != nil {
		return nil, err
	}
	if statusCode >= 300 {
		return nil, fmt.Errorf("easebuzz status check returned http %d", statusCode)
	}

	data, _ := result["data"].(map[string]any)
	if v, ok := result["status"].(float64); !ok || v != 1 || data == nil {
		return &StatusResult{Status: types.PaymentStatusPending, Raw: result}, nil
	}

	return &StatusResult{
		Status:       mapStatus(easebuzzStatusMap, str(data, "status")),
		GatewayTxnID: str(data, "easepayid"),
		Amount:       rupeesToPaise(str(data, "amount")),
		Raw:          result,
	}, nil
}

func (a *easebuzzAdapter) VerifyWebhook(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error) {
	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, err
	}

	status := values.Get("status")
	txnid := values.Get("txnid")
	amount := values.Get("amount")
	expected := a.reverseHash(status,
		values.Get("email"), values.Get("firstname"), values.Get("productinfo"),
		amount, txnid, values.Get("key"))

	if !hashEqual(expected, values.Get("hash")) {
		return &WebhookResult{Success: false, Status: types.PaymentStatusFailed}, nil
	}

	raw := make(map[string]any, len(values))
	for k := range values {
		raw[k] = values.Get(k)
	}

	return &WebhookResult{
		Success:       true,
		TransactionID: txnid,
		GatewayTxnID:  values.Get("easepayid"),
		Status:        mapStatus(easebuzzStatusMap, status),
		Amount:        rupeesToPaise(amount),
		Raw:           raw,
	}, nil
}

// ValidateCredentials issues a retrieve for a throwaway txnid; a bad
// key/salt pair is rejected outright while a valid pair answers with a
// not-found style response.
func (a *easebuzzAdapter) ValidateCredentials(ctx context.Context) bool {
	txnid := fmt.Sprintf("VALIDATE_%d", time.Now().UnixMilli())
	values := url.Values{}
	values.Set("key", a.creds.APIKey)
	values.Set("txnid", txnid)
	values.Set("email", "")
	values.Set("hash", sha512Hex(strings.Join([]string{a.creds.APIKey, txnid, "", a.creds.APISecret}, "|")))

	result, statusCode, err := postForm(ctx, a.httpClient, a.dashURL(), values)
	if err != nil || statusCode >= 300 {
		return false
	}
	if v, ok := result["status"].(float64); ok && (v == 0 || v == 1) {
		return true
	}
	return false
}
