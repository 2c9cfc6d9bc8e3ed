package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/webhooklog"
	"github.com/lightspeedpay/gatewaycore/internal/gateway"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

var (
	// ErrUnsupportedProvider means the callback path named a provider the
	// registry cannot construct.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrVerificationFailed means no configured gateway accepted the
	// payload's signature. The payload must not be processed.
	ErrVerificationFailed = errors.New("webhook verification failed")
)

// Service is the synchronous half of the callback pipeline: verify the
// signature, persist an audit row, enqueue for processing, and answer
// the provider fast. Everything slow happens in the worker.
type Service struct {
	db       *gorm.DB
	payments *payment.Service
	logs     *webhooklog.Service
	queue    *Queue
	log      *zap.SugaredLogger
}

func NewService(
	db *gorm.DB,
	payments *payment.Service,
	logs *webhooklog.Service,
	queue *Queue,
	log *zap.SugaredLogger,
) *Service {
	return &Service{db: db, payments: payments, logs: logs, queue: queue, log: log}
}

// Ingest runs verification phase for one inbound callback. On success the
// job is durably queued and the caller can acknowledge the provider; any
// returned error means the payload was rejected unprocessed.
func (s *Service) Ingest(ctx context.Context, provider types.Provider, payload []byte, header http.Header, sourceIP, traceID string) error {
	if !provider.Valid() {
		return ErrUnsupportedProvider
	}

	txnID := gateway.PeekTransactionID(provider, payload)
	configs, err := s.candidateGateways(ctx, provider, txnID)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return ErrVerificationFailed
	}

	for _, gw := range configs {
		adapter, err := s.payments.AdapterFor(gw)
		if err != nil {
			s.log.Warnw("skipping gateway with unusable credentials",
				"gateway_id", gw.ID, "provider", provider, "err", err)
			continue
		}
		res, err := adapter.VerifyWebhook(ctx, payload, header)
		if err != nil || !res.Success {
			continue
		}

		logRow, err := s.logs.Create(ctx, provider, gw.ID, res.TransactionID, sourceIP, traceID, payload)
		if err != nil {
			return err
		}
		job := &Job{
			WebhookLogID: logRow.ID,
			Provider:     string(provider),
			GatewayID:    gw.ID,
			Payload:      payload,
			Header:       map[string][]string(header),
			TraceID:      traceID,
		}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			return err
		}
		s.log.Infow("webhook accepted",
			"provider", provider, "gateway_id", gw.ID, "transaction_id", res.TransactionID)
		return nil
	}
	return ErrVerificationFailed
}

// candidateGateways resolves which gateway configurations may have signed
// the payload. A known transaction pins the exact gateway; otherwise every
// active configuration for the provider is tried, so a valid signature
// still verifies even when the transaction id is unknown.
func (s *Service) candidateGateways(ctx context.Context, provider types.Provider, txnID string) ([]*models.GatewayConfig, error) {
	if txnID != "" {
		var txn models.Transaction
		err := s.db.WithContext(ctx).Where("id = ?", txnID).First(&txn).Error
		if err == nil {
			var gw models.GatewayConfig
			if err := s.db.WithContext(ctx).Unscoped().Where("id = ?", txn.GatewayID).First(&gw).Error; err != nil {
				return nil, fmt.Errorf("failed to load gateway config: %w", err)
			}
			if gw.Provider == provider {
				return []*models.GatewayConfig{&gw}, nil
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to load transaction: %w", err)
		}
	}

	var configs []*models.GatewayConfig
	err := s.db.WithContext(ctx).
		Where("provider = ? AND is_active = true", provider).
		Order("priority ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway configs: %w", err)
	}
	return configs, nil
}

// QueueDepth exposes the pending job count for health reporting.
func (s *Service) QueueDepth(ctx context.Context) (int64, error) {
	return s.queue.Depth(ctx)
}
