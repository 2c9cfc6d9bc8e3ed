package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

const (
	payuTestBaseURL = "https://test.payu.in/_payment"
	payuProdBaseURL = "https://secure.payu.in/_payment"
	payuInfoURL     = "https://info.payu.in/merchant/postservice.php?form=2"
)

// payuAdapter speaks PayU's hosted-form protocol. PayU takes amounts in
// rupees with two decimals; webhooks arrive form-encoded with a sha512
// "hash" field.
type payuAdapter struct {
	creds      PayUCredentials
	sandbox    bool
	httpClient *http.Client
}

func newPayUAdapter(creds PayUCredentials, sandbox bool, httpClient *http.Client) *payuAdapter {
	return &payuAdapter{creds: creds, sandbox: sandbox, httpClient: httpClient}
}

func (a *payuAdapter) Provider() types.Provider { return types.ProviderPayU }

func (a *payuAdapter) baseURL() string {
	if a.sandbox {
		return payuTestBaseURL
	}
	return payuProdBaseURL
}

// requestHash is PayU's forward hash:
// sha512(key|txnid|amount|productinfo|firstname|email|udf1..udf5|||||salt)
// with all ten optional positions empty. The field order and the number
// of empty slots are part of the protocol and must not change.
func (a *payuAdapter) requestHash(txnid, amount, productinfo, firstname, email string) string {
	return sha512Hex(fmt.Sprintf("%s|%s|%s|%s|%s|%s|||||||||||%s",
		a.creds.MerchantKey, txnid, amount, productinfo, firstname, email, a.creds.Salt))
}

// webhookHash is the reverse hash PayU sends on callbacks:
// sha512(salt|status|...ten empty positions...|email|firstname|productinfo|amount|txnid|key)
func (a *payuAdapter) webhookHash(status, email, firstname, productinfo, amount, txnid, key string) string {
	return sha512Hex(fmt.Sprintf("%s|%s|||||||||||%s|%s|%s|%s|%s|%s",
		a.creds.Salt, status, email, firstname, productinfo, amount, txnid, key))
}

// InitiatePayment signs the hosted-form parameters. PayU's redirect flow
// has no server-to-server order call; the signed form is posted by the
// hosted checkout page, so the result carries the form fields in Raw.
func (a *payuAdapter) InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResult, error) {
	amount := paiseToRupees(req.Amount)
	productinfo := req.Description
	if productinfo == "" {
		productinfo = "Payment"
	}
	firstname := req.Customer.Name
	if firstname == "" {
		firstname = "Customer"
	}

	form := map[string]any{
		"action":           a.baseURL(),
		"key":              a.creds.MerchantKey,
		"txnid":            req.TransactionID,
		"amount":           amount,
		"productinfo":      productinfo,
		"firstname":        firstname,
		"email":            req.Customer.Email,
		"phone":            req.Customer.Phone,
		"surl":             req.ReturnURL + "?status=success",
		"furl":             req.ReturnURL + "?status=failure",
		"hash":             a.requestHash(req.TransactionID, amount, productinfo, firstname, req.Customer.Email),
		"service_provider": "payu_paisa",
	}

	return &InitiateResult{
		Success:   true,
		PaymentID: req.TransactionID,
		Raw:       form,
	}, nil
}

func (a *payuAdapter) CheckStatus(ctx context.Context, paymentID string) (*StatusResult, error) {
	const command = "verify_payment"
	hash := sha512Hex(fmt.Sprintf("%s|%s|%s|%s", a.creds.MerchantKey, command, paymentID, a.creds.Salt))

	values := url.Values{}
	values.Set("key", a.creds.MerchantKey)
	values.Set("command", command)
	values.Set("hash", hash)
	values.Set("var1", paymentID)

	result, statusCode, err := postForm(ctx, a.httpClient, payuInfoURL, values)
	if err != nil {
		return nil, err
	}
	if statusCode >= 300 {
		return nil, fmt.Errorf("payu status check returned http %d", statusCode)
	}
	if v, ok := result["status"].(float64); ok && v == 0 {
		return &StatusResult{Status: types.PaymentStatusPending, Raw: result}, nil
	}

	details, _ := result["transaction_details"].(map[string]any)
	txn, _ := details[paymentID].(map[string]any)
	if txn == nil {
		return &StatusResult{Status: types.PaymentStatusPending, Raw: result}, nil
	}

	return &StatusResult{
		Status:       mapStatus(payuStatusMap, str(txn, "status")),
		GatewayTxnID: str(txn, "mihpayid"),
		Amount:       rupeesToPaise(str(txn, "amount")),
		Raw:          result,
	}, nil
}

func (a *payuAdapter) VerifyWebhook(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error) {
	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, err
	}

	status := values.Get("status")
	txnid := values.Get("txnid")
	amount := values.Get("amount")
	expected := a.webhookHash(status,
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
		GatewayTxnID:  values.Get("mihpayid"),
		Status:        mapStatus(payuStatusMap, status),
		Amount:        rupeesToPaise(amount),
		Raw:           raw,
	}, nil
}

// ValidateCredentials runs the merchant-codes lookup, a read-only call
// that fails on a bad key/salt pair.
func (a *payuAdapter) ValidateCredentials(ctx context.Context) bool {
	const command = "get_merchant_ibibo_codes"
	hash := sha512Hex(fmt.Sprintf("%s|%s|default|%s", a.creds.MerchantKey, command, a.creds.Salt))

	values := url.Values{}
	values.Set("key", a.creds.MerchantKey)
	values.Set("command", command)
	values.Set("hash", hash)
	values.Set("var1", "default")

	result, statusCode, err := postForm(ctx, a.httpClient, payuInfoURL, values)
	if err != nil || statusCode >= 300 {
		return false
	}
	if v, ok := result["status"].(float64); ok && v == 0 {
		return false
	}
	return true
}
