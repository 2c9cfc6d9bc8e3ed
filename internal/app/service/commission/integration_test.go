//go:build integration
// +build integration

package commission

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/tool"
)

type LedgerSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service

	clientID string
}

func (s *LedgerSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=gatewaycore_test port=5432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to database: %v", err)
	}
	s.db = db
	if err := s.db.AutoMigrate(&models.CommissionLedgerEntry{}); err != nil {
		s.T().Fatalf("failed to run migrations: %v", err)
	}
	s.svc = NewService(db, zap.NewNop().Sugar())
}

func (s *LedgerSuite) SetupTest() {
	s.clientID = tool.GenerateUUIDV7()
}

func (s *LedgerSuite) TearDownTest() {
	s.db.Exec("DELETE FROM commission_ledger_entry WHERE client_id = ?", s.clientID)
}

// Replayed webhooks call Record more than once for the same transaction;
// the unique index must swallow every call after the first.
func (s *LedgerSuite) TestRecordIsIdempotentPerTransaction() {
	ctx := context.Background()
	txnID := "LSP_1700000000000_ABC123"

	s.Require().NoError(s.svc.Record(ctx, nil, txnID, s.clientID, 100000, 3.5))
	s.Require().NoError(s.svc.Record(ctx, nil, txnID, s.clientID, 100000, 3.5))

	var entries []models.CommissionLedgerEntry
	s.Require().NoError(s.db.Where("transaction_id = ?", txnID).Find(&entries).Error)
	s.Require().Len(entries, 1)
	s.Require().EqualValues(3500, entries[0].Amount)
}

func (s *LedgerSuite) TestOutstandingBalanceSumsRecordedOnly() {
	ctx := context.Background()

	s.Require().NoError(s.svc.Record(ctx, nil, "LSP_1700000000001_AAAAAA", s.clientID, 100000, 2.5))
	s.Require().NoError(s.svc.Record(ctx, nil, "LSP_1700000000002_BBBBBB", s.clientID, 200000, 2.5))

	balance, err := s.svc.OutstandingBalance(ctx, s.clientID)
	s.Require().NoError(err)
	s.Require().EqualValues(2500+5000, balance)

	var entry models.CommissionLedgerEntry
	s.Require().NoError(s.db.Where("transaction_id = ?", "LSP_1700000000001_AAAAAA").First(&entry).Error)
	s.Require().NoError(s.svc.MarkPaidOut(ctx, []string{entry.ID}))

	balance, err = s.svc.OutstandingBalance(ctx, s.clientID)
	s.Require().NoError(err)
	s.Require().EqualValues(5000, balance)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}
