package gateway

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// Credential field registry. This is the single source of truth for
// which fields each provider requires; both the factory and admin-facing
// validation consume it.

var requiredCredentialFields = map[types.Provider][]string{
	types.ProviderRazorpay:   {"api_key", "api_secret"},
	types.ProviderPayU:       {"merchant_key", "salt"},
	types.ProviderEasebuzz:   {"api_key", "api_secret"},
	types.ProviderOnePayment: {"partner_id", "project_id", "api_secret"},
	types.ProviderCustom:     {"api_endpoint_url", "api_key", "api_secret"},
}

var optionalCredentialFields = map[types.Provider][]string{
	types.ProviderRazorpay:   {"webhook_secret"},
	types.ProviderPayU:       {"auth_header"},
	types.ProviderEasebuzz:   {"webhook_secret"},
	types.ProviderOnePayment: {},
	types.ProviderCustom:     {"webhook_secret"},
}

// RequiredFields returns the credential fields a provider cannot be
// configured without.
func RequiredFields(p types.Provider) []string {
	return requiredCredentialFields[p]
}

// OptionalFields returns the credential fields a provider accepts beyond
// the required set.
func OptionalFields(p types.Provider) []string {
	return optionalCredentialFields[p]
}

// ValidateCredentialFields checks a credential map against the registry
// without constructing an adapter. Missing fields are returned sorted.
func ValidateCredentialFields(p types.Provider, creds map[string]string) []string {
	var missing []string
	for _, f := range requiredCredentialFields[p] {
		if creds[f] == "" {
			missing = append(missing, f)
		}
	}
	sort.Strings(missing)
	return missing
}

// Per-provider credential variants. The free-form map is validated once
// here; adapters only ever see their own typed struct.

type RazorpayCredentials struct {
	APIKey        string
	APISecret     string
	WebhookSecret string
}

type PayUCredentials struct {
	MerchantKey string
	Salt        string
	AuthHeader  string
}

type EasebuzzCredentials struct {
	APIKey    string // merchant key
	APISecret string // salt
}

type OnePaymentCredentials struct {
	PartnerID string
	ProjectID string
	APISecret string
}

type CustomCredentials struct {
	EndpointURL   string
	APIKey        string
	APISecret     string
	WebhookSecret string
}

// Factory builds adapters from stored gateway configurations.
type Factory struct {
	httpClient *http.Client
}

// NewFactory wires the shared outbound HTTP client. The timeout bounds
// every provider call (spec: no PSP call may stall a request forever).
func NewFactory(providerTimeout time.Duration) *Factory {
	if providerTimeout <= 0 {
		providerTimeout = 30 * time.Second
	}
	return &Factory{httpClient: &http.Client{Timeout: providerTimeout}}
}

// CreateAdapter validates the credential map for the provider and
// constructs the matching adapter. Fails fast with the exact missing
// field names rather than a generic error.
func (f *Factory) CreateAdapter(provider types.Provider, creds map[string]string, sandbox bool) (Adapter, error) {
	if !provider.Valid() {
		return nil, fmt.Errorf("unsupported payment gateway provider: %s", provider)
	}
	if missing := ValidateCredentialFields(provider, creds); len(missing) > 0 {
		return nil, fmt.Errorf("%s credentials missing required fields: %v", provider, missing)
	}

	switch provider {
	case types.ProviderRazorpay:
		return newRazorpayAdapter(RazorpayCredentials{
			APIKey:        creds["api_key"],
			APISecret:     creds["api_secret"],
			WebhookSecret: creds["webhook_secret"],
		}, sandbox, f.httpClient), nil
	case types.ProviderPayU:
		return newPayUAdapter(PayUCredentials{
			MerchantKey: creds["merchant_key"],
			Salt:        creds["salt"],
			AuthHeader:  creds["auth_header"],
		}, sandbox, f.httpClient), nil
	case types.ProviderEasebuzz:
		return newEasebuzzAdapter(EasebuzzCredentials{
			APIKey:    creds["api_key"],
			APISecret: creds["api_secret"],
		}, sandbox, f.httpClient), nil
	case types.ProviderOnePayment:
		return newOnePaymentAdapter(OnePaymentCredentials{
			PartnerID: creds["partner_id"],
			ProjectID: creds["project_id"],
			APISecret: creds["api_secret"],
		}, f.httpClient), nil
	case types.ProviderCustom:
		return newCustomAdapter(CustomCredentials{
			EndpointURL:   creds["api_endpoint_url"],
			APIKey:        creds["api_key"],
			APISecret:     creds["api_secret"],
			WebhookSecret: creds["webhook_secret"],
		}, f.httpClient), nil
	}
	return nil, fmt.Errorf("unsupported payment gateway provider: %s", provider)
}
