package commission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	// 3.5% of 1000.00 INR (100000 paise) is exactly 3500 paise.
	require.Equal(t, int64(3500), Calculate(100000, 3.5))
	require.Equal(t, int64(0), Calculate(100000, 0))
	require.Equal(t, int64(100000), Calculate(100000, 100))
}

func TestCalculate_RoundsHalfAwayFromZero(t *testing.T) {
	// 2.5% of 101 paise = 2.525 -> 3.
	require.Equal(t, int64(3), Calculate(101, 2.5))
	// 1% of 49 paise = 0.49 -> 0.
	require.Equal(t, int64(0), Calculate(49, 1))
	// 1% of 50 paise = 0.5 -> 1.
	require.Equal(t, int64(1), Calculate(50, 1))
}

func TestCalculate_DegenerateInputs(t *testing.T) {
	require.Equal(t, int64(0), Calculate(0, 3.5))
	// Fractional fee on a small amount still rounds, never truncates.
	require.Equal(t, int64(1), Calculate(35, 1.5)) // 0.525 -> 1
}
