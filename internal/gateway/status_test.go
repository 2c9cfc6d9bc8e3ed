package gateway

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

func TestMapStatus_UnknownDefaultsToPending(t *testing.T) {
	tables := []map[string]types.PaymentStatus{
		razorpayStatusMap, razorpayEventMap, payuStatusMap,
		easebuzzStatusMap, onePaymentStatusMap, customStatusMap,
	}
	for _, table := range tables {
		require.Equal(t, types.PaymentStatusPending, mapStatus(table, "something-new"))
		require.Equal(t, types.PaymentStatusPending, mapStatus(table, ""))
	}
}

func TestMapStatus_CaseAndWhitespaceInsensitive(t *testing.T) {
	require.Equal(t, types.PaymentStatusSuccess, mapStatus(payuStatusMap, " SUCCESS "))
	require.Equal(t, types.PaymentStatusCancelled, mapStatus(easebuzzStatusMap, "UserCancel"))
}

func TestMapStatus_EveryEntryIsCanonical(t *testing.T) {
	canonical := map[types.PaymentStatus]bool{
		types.PaymentStatusPending:   true,
		types.PaymentStatusSuccess:   true,
		types.PaymentStatusFailed:    true,
		types.PaymentStatusCancelled: true,
	}
	tables := []map[string]types.PaymentStatus{
		razorpayStatusMap, razorpayEventMap, payuStatusMap,
		easebuzzStatusMap, onePaymentStatusMap, customStatusMap,
	}
	for _, table := range tables {
		for k, v := range table {
			require.True(t, canonical[v], "status %q maps outside the canonical set", k)
		}
	}
}

func TestMapStatus_TerminalVerdicts(t *testing.T) {
	require.Equal(t, types.PaymentStatusSuccess, mapStatus(razorpayEventMap, "payment.captured"))
	require.Equal(t, types.PaymentStatusFailed, mapStatus(razorpayEventMap, "payment.failed"))
	require.Equal(t, types.PaymentStatusCancelled, mapStatus(payuStatusMap, "usercancelled"))
	require.Equal(t, types.PaymentStatusFailed, mapStatus(easebuzzStatusMap, "bounced"))
	require.Equal(t, types.PaymentStatusSuccess, mapStatus(onePaymentStatusMap, "1"))
}
