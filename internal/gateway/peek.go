package gateway

import (
	"encoding/json"
	"net/url"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// PeekTransactionID extracts the platform transaction id from a raw
// webhook payload without verifying it. The webhook pipeline uses it to
// locate the transaction, and through it the gateway credentials needed
// for verification. An empty return means the payload shape did not
// match the provider.
func PeekTransactionID(provider types.Provider, payload []byte) string {
	switch provider {
	case types.ProviderRazorpay:
		var env razorpayWebhookEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return ""
		}
		if notes, ok := env.Payload.Payment.Entity["notes"].(map[string]any); ok {
			return str(notes, "lightspeed_txn_id")
		}
		return ""
	case types.ProviderPayU, types.ProviderEasebuzz:
		values, err := url.ParseQuery(string(payload))
		if err != nil {
			return ""
		}
		return values.Get("txnid")
	case types.ProviderOnePayment:
		values, err := url.ParseQuery(string(payload))
		if err != nil {
			return ""
		}
		return values.Get("user_data")
	case types.ProviderCustom:
		var raw map[string]any
		if err := json.Unmarshal(payload, &raw); err != nil {
			return ""
		}
		return str(raw, "transaction_id")
	}
	return ""
}
