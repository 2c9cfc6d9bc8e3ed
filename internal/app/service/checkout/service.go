package checkout

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
)

// ErrInvalidSession covers every token failure: bad signature, expired,
// wrong transaction. Callers never learn which.
var ErrInvalidSession = errors.New("invalid checkout session")

const sessionTTL = 30 * time.Minute

// Service issues and verifies short-lived checkout session tokens so the
// hosted payment page can read transaction state without client
// credentials.
type Service struct {
	secret []byte
	issuer string
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		secret: []byte(cfg.Brand.CheckoutSecret),
		issuer: cfg.Brand.Name,
	}
}

// IssueToken creates a session token bound to one transaction.
func (s *Service) IssueToken(transactionID string) (string, error) {
	if !lightspeed.IsTransactionID(transactionID) {
		return "", ErrInvalidSession
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   transactionID,
		Issuer:    s.issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(sessionTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign checkout session: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a session token and returns the transaction id it
// is bound to.
func (s *Service) VerifyToken(tokenStr string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidSession
	}
	if claims.Subject == "" || !lightspeed.IsTransactionID(claims.Subject) {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
