package webhooklog

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/tool"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// Service persists the audit trail for inbound provider callbacks.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create records a verified callback before it is queued for processing.
func (s *Service) Create(ctx context.Context, provider types.Provider, gatewayID, transactionID, sourceIP, traceID string, data []byte) (*models.WebhookLog, error) {
	log := &models.WebhookLog{
		ID:            tool.GenerateUUIDV7(),
		Provider:      provider,
		GatewayID:     gatewayID,
		TraceID:       traceID,
		TransactionID: transactionID,
		SourceIP:      sourceIP,
		Data:          datatypes.JSON(data),
		Status:        models.WebhookLogStatusReceived,
		ForwardStatus: models.ForwardStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, fmt.Errorf("failed to save webhook log: %w", err)
	}
	return log, nil
}

// MarkProcessed stores the processing outcome for a received callback.
func (s *Service) MarkProcessed(ctx context.Context, id string, result []byte) error {
	r := datatypes.JSON(result)
	return s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": models.WebhookLogStatusProcessed,
			"result": &r,
		}).Error
}

// MarkProcessFailed records a processing error without losing the payload.
func (s *Service) MarkProcessFailed(ctx context.Context, id string, processErr error) error {
	r := datatypes.JSON(fmt.Sprintf(`{"error":%q}`, processErr.Error()))
	return s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": models.WebhookLogStatusProcessFailed,
			"result": &r,
		}).Error
}

// UpdateForward tracks merchant forwarding progress for a callback.
func (s *Service) UpdateForward(ctx context.Context, id string, status models.ForwardStatus, attempts int, lastErr string) error {
	updates := map[string]any{
		"forward_status":   status,
		"forward_attempts": attempts,
	}
	if lastErr != "" {
		updates["last_forward_error"] = &lastErr
	}
	return s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListByTransaction returns the callback history for one transaction,
// newest first.
func (s *Service) ListByTransaction(ctx context.Context, transactionID string) ([]*models.WebhookLog, error) {
	var logs []*models.WebhookLog
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	return logs, nil
}
