package commission

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/tool"
)

// Service maintains the append-only commission ledger. A client's
// outstanding balance is the sum of its recorded (unpaid) entries.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Calculate derives the fee in minor units. Rounding is half away from
// zero, fixed once for the whole ledger: 100000 paisa at 3.5% is exactly
// 3500 paisa, and .5 boundaries round up.
func Calculate(amount int64, feePercent float64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(feePercent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// Record inserts the ledger entry for a successful transaction. The
// unique index on transaction_id makes the insert idempotent: replayed
// webhooks post nothing.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, transactionID, clientID string, amount int64, feePercent float64) error {
	if tx == nil {
		tx = s.db
	}
	entry := &models.CommissionLedgerEntry{
		ID:            tool.GenerateUUIDV7(),
		TransactionID: transactionID,
		ClientID:      clientID,
		Amount:        Calculate(amount, feePercent),
		Status:        models.CommissionStatusRecorded,
	}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "transaction_id"}}, DoNothing: true}).
		Create(entry)
	if res.Error != nil {
		return fmt.Errorf("failed to record commission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.log.Infow("commission already recorded", "transaction_id", transactionID)
	}
	return nil
}

// OutstandingBalance sums the unpaid entries for a client in one
// consistent read.
func (s *Service) OutstandingBalance(ctx context.Context, clientID string) (int64, error) {
	var balance int64
	err := s.db.WithContext(ctx).
		Model(&models.CommissionLedgerEntry{}).
		Where("client_id = ? AND status = ?", clientID, models.CommissionStatusRecorded).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum commission balance: %w", err)
	}
	return balance, nil
}

// MarkPaidOut flips recorded entries to paid_out for the settlement feed.
func (s *Service) MarkPaidOut(ctx context.Context, entryIDs []string) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.CommissionLedgerEntry{}).
		Where("id IN ? AND status = ?", entryIDs, models.CommissionStatusRecorded).
		Update("status", models.CommissionStatusPaidOut).Error
}

// ListByClient returns a client's ledger entries, newest first.
func (s *Service) ListByClient(ctx context.Context, clientID string, from, size int) ([]*models.CommissionLedgerEntry, int64, error) {
	if size <= 0 {
		size = 50
	}
	q := s.db.WithContext(ctx).Model(&models.CommissionLedgerEntry{}).Where("client_id = ?", clientID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []*models.CommissionLedgerEntry
	if err := q.Order("created_at DESC").Offset(from).Limit(size).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
