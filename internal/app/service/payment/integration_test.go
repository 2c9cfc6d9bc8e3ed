//go:build integration
// +build integration

package payment

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/commission"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
	"github.com/lightspeedpay/gatewaycore/pkg/tool"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// StatusTransitionSuite exercises the transition rules against a real
// database: terminal states stay sticky even for unlocked writers, and a
// duplicate success never posts a second commission entry.
type StatusTransitionSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service

	clientID string
}

func (s *StatusTransitionSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=gatewaycore_test port=5432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		s.T().Fatalf("failed to connect to database: %v", err)
	}
	s.db = db

	err = s.db.AutoMigrate(
		&models.GatewayConfig{},
		&models.ClientAccount{},
		&models.Transaction{},
		&models.CommissionLedgerEntry{},
	)
	if err != nil {
		s.T().Fatalf("failed to run migrations: %v", err)
	}

	log := zap.NewNop().Sugar()
	s.svc = &Service{
		db:         db,
		wrapper:    lightspeed.NewWrapper("LightSpeed Payment Gateway", "https://pay.example.com"),
		commission: commission.NewService(db, log),
		log:        log,
	}
}

func (s *StatusTransitionSuite) SetupTest() {
	s.clientID = tool.GenerateUUIDV7()
	client := &models.ClientAccount{
		ID:          s.clientID,
		Name:        "integration client",
		ClientKey:   "lsk_" + tool.CompactUUID(),
		ClientSalt:  tool.CompactUUID(),
		FeePercent:  2.5,
		Status:      models.ClientStatusActive,
		Environment: types.EnvironmentSandbox,
	}
	s.Require().NoError(s.db.Create(client).Error)
}

func (s *StatusTransitionSuite) TearDownTest() {
	s.db.Exec("DELETE FROM commission_ledger_entry WHERE client_id = ?", s.clientID)
	s.db.Exec(`DELETE FROM "transaction" WHERE client_id = ?`, s.clientID)
	s.db.Exec("DELETE FROM client_account WHERE id = ?", s.clientID)
}

func (s *StatusTransitionSuite) seedPending(amount int64) models.Transaction {
	txn := models.Transaction{
		ID:        lightspeed.GenerateTransactionID(),
		ClientID:  s.clientID,
		GatewayID: tool.GenerateUUIDV7(),
		OrderID:   "ord-" + tool.CompactUUID()[:12],
		Amount:    amount,
		Currency:  "INR",
		Status:    models.TransactionStatusPending,
	}
	s.Require().NoError(s.db.Create(&txn).Error)
	return txn
}

// A status-check writer holding a copy read before a webhook settled the
// row must not overwrite the settled verdict.
func (s *StatusTransitionSuite) TestLaggingVerdictCannotRegressSettledRow() {
	ctx := context.Background()
	txn := s.seedPending(100000)

	// Copy read before the concurrent settlement.
	stale := txn

	settled := txn
	s.Require().NoError(s.svc.ApplyStatus(ctx, s.db, &settled, types.PaymentStatusSuccess, "pay_webhook1", nil))
	s.Require().Equal(models.TransactionStatusSuccess, settled.Status)

	// The lagging provider verdict arrives through the stale copy.
	s.Require().NoError(s.svc.ApplyStatus(ctx, s.db, &stale, types.PaymentStatusFailed, "mih123", nil))

	var after models.Transaction
	s.Require().NoError(s.db.Where("id = ?", txn.ID).First(&after).Error)
	s.Require().Equal(models.TransactionStatusSuccess, after.Status)
	s.Require().Equal("pay_webhook1", after.GatewayTxnID)

	// The losing writer observes the settled state.
	s.Require().Equal(models.TransactionStatusSuccess, stale.Status)
}

// Delivering the same success twice must leave exactly one ledger entry.
func (s *StatusTransitionSuite) TestDuplicateSuccessPostsOneCommission() {
	ctx := context.Background()
	txn := s.seedPending(100000)

	first := txn
	second := txn
	s.Require().NoError(s.svc.ApplyStatus(ctx, s.db, &first, types.PaymentStatusSuccess, "pay_dup", nil))
	s.Require().NoError(s.svc.ApplyStatus(ctx, s.db, &second, types.PaymentStatusSuccess, "pay_dup", nil))

	var entries []models.CommissionLedgerEntry
	s.Require().NoError(s.db.Where("transaction_id = ?", txn.ID).Find(&entries).Error)
	s.Require().Len(entries, 1)
	s.Require().EqualValues(2500, entries[0].Amount)
}

// A success arriving on a row that already failed stays ignored and
// never creates a ledger entry.
func (s *StatusTransitionSuite) TestNoCommissionAfterTerminalFailure() {
	ctx := context.Background()
	txn := s.seedPending(50000)

	failed := txn
	s.Require().NoError(s.svc.ApplyStatus(ctx, s.db, &failed, types.PaymentStatusFailed, "", nil))

	late := txn
	s.Require().NoError(s.svc.ApplyStatus(ctx, s.db, &late, types.PaymentStatusSuccess, "pay_late", nil))

	var after models.Transaction
	s.Require().NoError(s.db.Where("id = ?", txn.ID).First(&after).Error)
	s.Require().Equal(models.TransactionStatusFailed, after.Status)

	var count int64
	s.Require().NoError(s.db.Model(&models.CommissionLedgerEntry{}).
		Where("transaction_id = ?", txn.ID).Count(&count).Error)
	s.Require().EqualValues(0, count)
}

func TestStatusTransitionSuite(t *testing.T) {
	suite.Run(t, new(StatusTransitionSuite))
}
