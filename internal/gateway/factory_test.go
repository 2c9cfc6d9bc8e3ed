package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func TestCreateAdapter_AllProviders(t *testing.T) {
	f := NewFactory(5 * time.Second)
	creds := map[types.Provider]map[string]string{
		types.ProviderRazorpay:   {"api_key": "k", "api_secret": "s"},
		types.ProviderPayU:       {"merchant_key": "k", "salt": "s"},
		types.ProviderEasebuzz:   {"api_key": "k", "api_secret": "s"},
		types.ProviderOnePayment: {"partner_id": "p", "project_id": "j", "api_secret": "s"},
		types.ProviderCustom:     {"api_endpoint_url": "https://gw.example.com", "api_key": "k", "api_secret": "s"},
	}
	for _, p := range types.SupportedProviders() {
		adapter, err := f.CreateAdapter(p, creds[p], true)
		require.NoError(t, err, "provider %s", p)
		require.Equal(t, p, adapter.Provider())
	}
}

func TestCreateAdapter_UnsupportedProvider(t *testing.T) {
	f := NewFactory(5 * time.Second)
	_, err := f.CreateAdapter("stripe", map[string]string{"api_key": "k"}, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported payment gateway provider")
}

func TestCreateAdapter_MissingFieldsAreNamed(t *testing.T) {
	f := NewFactory(5 * time.Second)
	_, err := f.CreateAdapter(types.ProviderOnePayment, map[string]string{"partner_id": "p"}, true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "api_secret")
	require.Contains(t, err.Error(), "project_id")
}

func TestValidateCredentialFields_SortedMissing(t *testing.T) {
	missing := ValidateCredentialFields(types.ProviderCustom, map[string]string{"api_key": "k"})
	require.Equal(t, []string{"api_endpoint_url", "api_secret"}, missing)

	require.Empty(t, ValidateCredentialFields(types.ProviderPayU, map[string]string{
		"merchant_key": "k", "salt": "s",
	}))
}

func TestRequiredFields_CoverEveryProvider(t *testing.T) {
	for _, p := range types.SupportedProviders() {
		require.NotEmpty(t, RequiredFields(p), "provider %s has no required fields", p)
	}
}
