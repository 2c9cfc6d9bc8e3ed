package types

// Provider identifies a payment service provider behind the platform.
type Provider string

const (
	ProviderRazorpay   Provider = "razorpay"
	ProviderPayU       Provider = "payu"
	ProviderEasebuzz   Provider = "easebuzz"
	ProviderOnePayment Provider = "onepayment"
	ProviderCustom     Provider = "custom"
)

// SupportedProviders lists every provider the registry can construct,
// in the order they are shown to admins.
func SupportedProviders() []Provider {
	return []Provider{
		ProviderRazorpay,
		ProviderPayU,
		ProviderEasebuzz,
		ProviderOnePayment,
		ProviderCustom,
	}
}

func (p Provider) Valid() bool {
	for _, sp := range SupportedProviders() {
		if p == sp {
			return true
		}
	}
	return false
}

// PaymentStatus is the canonical status vocabulary. Every provider-specific
// status string must be mapped into exactly one of these four values.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSuccess   PaymentStatus = "SUCCESS"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Terminal reports whether the status is sticky: a transaction in a
// terminal status never transitions again.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusSuccess, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// Environment separates sandbox and production gateway configurations.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// CustomerInfo carries the optional customer fields forwarded to providers.
// Adapters fill provider-required defaults instead of rejecting the request.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
