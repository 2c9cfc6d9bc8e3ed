package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightspeedpay/gatewaycore/pkg/config"
)

func testService(secret string) *Service {
	return NewService(&config.Config{
		Brand: config.BrandConfig{
			Name:           "LightSpeed Payment Gateway",
			CheckoutSecret: secret,
		},
	})
}

func TestIssueAndVerifyToken_RoundTrip(t *testing.T) {
	s := testService("session-secret")
	token, err := s.IssueToken("LSP_1712345678901_ABC123")
	require.NoError(t, err)

	txnID, err := s.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "LSP_1712345678901_ABC123", txnID)
}

func TestIssueToken_RejectsForeignIDs(t *testing.T) {
	s := testService("session-secret")
	_, err := s.IssueToken("pay_NXh2qWkl")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyToken_RejectsTamperedToken(t *testing.T) {
	s := testService("session-secret")
	token, err := s.IssueToken("LSP_1712345678901_ABC123")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = s.VerifyToken(tampered)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyToken_RejectsWrongSecret(t *testing.T) {
	issued, err := testService("secret-a").IssueToken("LSP_1712345678901_ABC123")
	require.NoError(t, err)

	_, err = testService("secret-b").VerifyToken(issued)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestVerifyToken_RejectsGarbage(t *testing.T) {
	s := testService("session-secret")
	for _, tok := range []string{"", "abc", "a.b.c"} {
		_, err := s.VerifyToken(tok)
		require.ErrorIs(t, err, ErrInvalidSession)
	}
}
