package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaiseToRupees(t *testing.T) {
	require.Equal(t, "100.00", paiseToRupees(10000))
	require.Equal(t, "0.01", paiseToRupees(1))
	require.Equal(t, "250.50", paiseToRupees(25050))
	require.Equal(t, "0.00", paiseToRupees(0))
}

func TestRupeesToPaise(t *testing.T) {
	require.Equal(t, int64(10000), rupeesToPaise("100.00"))
	require.Equal(t, int64(10000), rupeesToPaise("100"))
	require.Equal(t, int64(25050), rupeesToPaise(" 250.50 "))
	require.Equal(t, int64(0), rupeesToPaise("not-a-number"))
}

func TestRoundTripAmounts(t *testing.T) {
	for _, paise := range []int64{1, 99, 100, 10000, 25050, 9999999} {
		require.Equal(t, paise, rupeesToPaise(paiseToRupees(paise)))
	}
}

func TestHashEqual(t *testing.T) {
	require.True(t, hashEqual("abcdef", "abcdef"))
	require.False(t, hashEqual("abcdef", "abcdeg"))
	require.False(t, hashEqual("abcdef", "abcde"))
	require.False(t, hashEqual("", "abcdef"))
}

func TestClassifyTransportError(t *testing.T) {
	require.Equal(t, ErrorCodeNone, classifyTransportError(nil))
	require.Equal(t, ErrorCodeTimeout, classifyTransportError(context.DeadlineExceeded))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, ErrorCodeNetwork, classifyTransportError(ctx.Err()))
}
