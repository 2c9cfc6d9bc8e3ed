package payment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func testConfigService() *Service {
	cfg := &config.Config{
		Payment: config.PaymentConfig{
			MaxAmount:       10000000,
			DefaultCurrency: "INR",
		},
	}
	return &Service{cfg: cfg}
}

func TestValidate_AmountBounds(t *testing.T) {
	s := testConfigService()
	client := &models.ClientAccount{}

	err := s.validate(client, &InitiateParams{OrderID: "o1", Amount: 0})
	require.ErrorIs(t, err, ErrValidation)

	err = s.validate(client, &InitiateParams{OrderID: "o1", Amount: -5})
	require.ErrorIs(t, err, ErrValidation)

	err = s.validate(client, &InitiateParams{OrderID: "o1", Amount: 10000001})
	require.ErrorIs(t, err, ErrValidation)

	err = s.validate(client, &InitiateParams{OrderID: "o1", Amount: 10000000})
	require.NoError(t, err)

	err = s.validate(client, &InitiateParams{OrderID: "o1", Amount: 1})
	require.NoError(t, err)
}

func TestValidate_RequiresOrderID(t *testing.T) {
	s := testConfigService()
	err := s.validate(&models.ClientAccount{}, &InitiateParams{Amount: 100})
	require.ErrorIs(t, err, ErrValidation)
}

func TestValidate_CurrencyDefaultsAndUppercases(t *testing.T) {
	s := testConfigService()

	p := &InitiateParams{OrderID: "o1", Amount: 100}
	require.NoError(t, s.validate(&models.ClientAccount{}, p))
	require.Equal(t, "INR", p.Currency)

	p = &InitiateParams{OrderID: "o1", Amount: 100, Currency: "usd"}
	require.NoError(t, s.validate(&models.ClientAccount{}, p))
	require.Equal(t, "USD", p.Currency)
}

func TestRowToPaymentStatus(t *testing.T) {
	require.Equal(t, types.PaymentStatusSuccess, rowToPaymentStatus(models.TransactionStatusSuccess))
	require.Equal(t, types.PaymentStatusFailed, rowToPaymentStatus(models.TransactionStatusFailed))
	require.Equal(t, types.PaymentStatusCancelled, rowToPaymentStatus(models.TransactionStatusCancelled))
	require.Equal(t, types.PaymentStatusPending, rowToPaymentStatus(models.TransactionStatusCreated))
	require.Equal(t, types.PaymentStatusPending, rowToPaymentStatus(models.TransactionStatusPending))
}

func TestSnapshotJSON(t *testing.T) {
	b := snapshotJSON(map[string]any{"amount": 100, "currency": "INR"})
	require.Contains(t, string(b), `"amount":100`)
	require.Contains(t, string(b), `"currency":"INR"`)
}
