package payment

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go.uber.org/zap"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/commission"
	"github.com/lightspeedpay/gatewaycore/internal/app/service/selector"
	"github.com/lightspeedpay/gatewaycore/internal/gateway"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/config"
	"github.com/lightspeedpay/gatewaycore/pkg/lightspeed"
	"github.com/lightspeedpay/gatewaycore/pkg/metrics"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// InitiateParams is the merchant-facing initiation input after header
// authentication has already identified the client.
type InitiateParams struct {
	OrderID     string
	Amount      int64
	Currency    string
	Customer    types.CustomerInfo
	ReturnURL   string
	Description string
}

// Service orchestrates the payment lifecycle: authenticate, validate,
// select a gateway, call the provider, and keep the transaction row as
// the single source of truth throughout.
type Service struct {
	db         *gorm.DB
	cfg        *config.Config
	wrapper    *lightspeed.Wrapper
	factory    *gateway.Factory
	selector   *selector.Service
	commission *commission.Service
	metrics    *metrics.Domain
	log        *zap.SugaredLogger
}

func NewService(
	db *gorm.DB,
	cfg *config.Config,
	wrapper *lightspeed.Wrapper,
	factory *gateway.Factory,
	sel *selector.Service,
	com *commission.Service,
	dom *metrics.Domain,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		db:         db,
		cfg:        cfg,
		wrapper:    wrapper,
		factory:    factory,
		selector:   sel,
		commission: com,
		metrics:    dom,
		log:        log,
	}
}

func (s *Service) countInitiation(provider types.Provider, result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.PaymentTotal.WithLabelValues(string(provider), result).Inc()
}

// Authenticate resolves a client_key/client_salt pair. The salt compare
// is constant-time, and every failure path returns the same error with
// comparable timing so callers cannot probe which part was wrong.
func (s *Service) Authenticate(ctx context.Context, clientKey, clientSalt string) (*models.ClientAccount, error) {
	if clientKey == "" || clientSalt == "" {
		return nil, ErrInvalidCredentials
	}
	var client models.ClientAccount
	err := s.db.WithContext(ctx).Where("client_key = ?", clientKey).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a compare against a dummy salt anyway.
			subtle.ConstantTimeCompare([]byte(clientSalt), []byte("00000000000000000000000000000000"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load client account: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(clientSalt), []byte(client.ClientSalt)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if client.Status == models.ClientStatusInactive {
		return nil, ErrInvalidCredentials
	}
	return &client, nil
}

// AdapterFor builds a live adapter from a stored gateway configuration.
func (s *Service) AdapterFor(gw *models.GatewayConfig) (gateway.Adapter, error) {
	creds, err := gw.CredentialMap()
	if err != nil {
		return nil, err
	}
	return s.factory.CreateAdapter(gw.Provider, creds, gw.Sandbox())
}

func (s *Service) validate(client *models.ClientAccount, p *InitiateParams) error {
	if p.OrderID == "" {
		return fmt.Errorf("%w: order_id is required", ErrValidation)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if s.cfg.Payment.MaxAmount > 0 && p.Amount > s.cfg.Payment.MaxAmount {
		return fmt.Errorf("%w: amount exceeds maximum allowed", ErrValidation)
	}
	if p.Currency == "" {
		p.Currency = s.cfg.Payment.DefaultCurrency
	}
	p.Currency = strings.ToUpper(p.Currency)
	return nil
}

// InitiatePayment runs the full initiation flow. The transaction row is
// persisted before the provider is called, so a crash mid-call leaves an
// auditable created/pending row instead of a silent gap.
func (s *Service) InitiatePayment(ctx context.Context, client *models.ClientAccount, p *InitiateParams) (*lightspeed.PaymentResponse, error) {
	if client.Status == models.ClientStatusSuspended {
		return nil, ErrAccountSuspended
	}
	if client.SuspendThreshold > 0 {
		balance, err := s.commission.OutstandingBalance(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		if balance >= client.SuspendThreshold {
			return nil, ErrAccountSuspended
		}
	}
	if err := s.validate(client, p); err != nil {
		return nil, err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("client_id = ? AND order_id = ?", client.ID, p.OrderID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check order id: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateOrder
	}

	sel, err := s.selector.Select(ctx, client, p.Amount)
	if err != nil {
		return nil, err
	}
	adapter, err := s.AdapterFor(sel.Gateway)
	if err != nil {
		s.selector.Release(ctx, sel, p.Amount)
		return nil, err
	}

	txn := &models.Transaction{
		ID:          lightspeed.GenerateTransactionID(),
		ClientID:    client.ID,
		GatewayID:   sel.Gateway.ID,
		OrderID:     p.OrderID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Status:      models.TransactionStatusCreated,
		Description: p.Description,
	}
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		s.selector.Release(ctx, sel, p.Amount)
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Payment.ProviderTimeout)
	defer cancel()
	result, err := adapter.InitiatePayment(callCtx, &gateway.InitiateRequest{
		TransactionID: txn.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Customer:      p.Customer,
		ReturnURL:     p.ReturnURL,
		Description:   p.Description,
	})
	if err != nil {
		// Adapter misuse, not a provider verdict. The row stays created.
		return nil, err
	}

	if result.Success {
		updates := map[string]any{
			"status":             models.TransactionStatusPending,
			"gateway_payment_id": result.PaymentID,
			"gateway_response":   snapshotJSON(s.wrapper.SanitizeRawResponse(result.Raw)),
		}
		if err := s.db.WithContext(ctx).Model(txn).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		s.countInitiation(sel.Gateway.Provider, "initiated")
		s.log.Infow("payment initiated",
			"transaction_id", txn.ID, "client_id", client.ID, "gateway_id", sel.Gateway.ID, "amount", p.Amount)
		return s.wrapper.SanitizePaymentResponse(true, txn.ID, types.PaymentStatusPending, p.Amount, p.Currency, "", true), nil
	}

	if result.ErrorCode == gateway.ErrorCodeTimeout {
		// Unknown outcome: the provider may have accepted the payment. Keep
		// the reservation and the pending row until a webhook or status
		// check resolves it.
		if err := s.db.WithContext(ctx).Model(txn).
			Update("status", models.TransactionStatusPending).Error; err != nil {
			return nil, fmt.Errorf("failed to update transaction: %w", err)
		}
		s.countInitiation(sel.Gateway.Provider, "timeout")
		s.log.Warnw("payment initiation timed out",
			"transaction_id", txn.ID, "gateway_id", sel.Gateway.ID)
		return s.wrapper.SanitizePaymentResponse(false, txn.ID, types.PaymentStatusPending, p.Amount, p.Currency, "timeout", false), nil
	}

	// Definite failure: release the limit reservation.
	if err := s.db.WithContext(ctx).Model(txn).
		Update("status", models.TransactionStatusFailed).Error; err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	s.selector.Release(ctx, sel, p.Amount)
	s.countInitiation(sel.Gateway.Provider, "failed")
	s.log.Warnw("payment initiation failed",
		"transaction_id", txn.ID, "gateway_id", sel.Gateway.ID,
		"error_code", result.ErrorCode, "provider_error", result.ErrorMessage)
	return s.wrapper.SanitizePaymentResponse(false, txn.ID, types.PaymentStatusFailed, p.Amount, p.Currency, string(result.ErrorCode), false), nil
}

// CheckStatus returns the current merchant-facing view of a transaction.
// Non-terminal transactions with a provider payment id are refreshed by
// querying the provider; terminal ones are answered from the row alone.
func (s *Service) CheckStatus(ctx context.Context, client *models.ClientAccount, transactionID string) (*lightspeed.PaymentResponse, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", transactionID, client.ID).
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if !txn.Status.Terminal() && txn.GatewayPaymentID != "" {
		s.refreshFromProvider(ctx, &txn)
	}

	return s.wrapper.SanitizePaymentResponse(
		txn.Status == models.TransactionStatusSuccess,
		txn.ID, rowToPaymentStatus(txn.Status), txn.Amount, txn.Currency, "",
		!txn.Status.Terminal(),
	), nil
}

// refreshFromProvider polls the provider and applies any terminal result.
// Failures are logged and swallowed: the stored row is still a valid
// answer.
func (s *Service) refreshFromProvider(ctx context.Context, txn *models.Transaction) {
	var gw models.GatewayConfig
	if err := s.db.WithContext(ctx).Unscoped().Where("id = ?", txn.GatewayID).First(&gw).Error; err != nil {
		s.log.Warnw("failed to load gateway for status refresh", "transaction_id", txn.ID, "err", err)
		return
	}
	adapter, err := s.AdapterFor(&gw)
	if err != nil {
		s.log.Warnw("failed to build adapter for status refresh", "transaction_id", txn.ID, "err", err)
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Payment.ProviderTimeout)
	defer cancel()
	res, err := adapter.CheckStatus(callCtx, txn.GatewayPaymentID)
	if err != nil {
		s.log.Warnw("status refresh failed", "transaction_id", txn.ID, "err", err)
		return
	}
	if err := s.ApplyStatus(ctx, s.db, txn, res.Status, res.GatewayTxnID, res.Raw); err != nil {
		s.log.Errorw("failed to apply refreshed status", "transaction_id", txn.ID, "err", err)
	}
}

// nonTerminalStatuses guards every status write: the transition query
// matches only rows that have not settled yet.
var nonTerminalStatuses = []models.TransactionStatus{
	models.TransactionStatusCreated,
	models.TransactionStatusPending,
}

// ApplyStatus applies a provider-reported status to a transaction row.
// Terminal rows never change again, and the first transition to SUCCESS
// records the commission exactly once. Callers holding a row lock pass
// their own *gorm.DB so the update joins their transaction; callers
// without a lock are still safe because the UPDATE itself refuses to
// touch a settled row.
func (s *Service) ApplyStatus(ctx context.Context, db *gorm.DB, txn *models.Transaction, status types.PaymentStatus, gatewayTxnID string, raw map[string]any) error {
	if txn.Status.Terminal() {
		return nil
	}
	next := models.FromPaymentStatus(status)
	if next == txn.Status && gatewayTxnID == "" {
		return nil
	}

	updates := map[string]any{"status": next}
	if gatewayTxnID != "" {
		updates["gateway_txn_id"] = gatewayTxnID
	}
	if raw != nil {
		updates["gateway_response"] = snapshotJSON(s.wrapper.SanitizeRawResponse(raw))
	}
	res := db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", txn.ID, nonTerminalStatuses).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update transaction status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Another writer settled the row between our read and this write.
		// Its verdict stands; reload so the caller sees the settled state.
		if err := db.WithContext(ctx).Where("id = ?", txn.ID).First(txn).Error; err != nil {
			return fmt.Errorf("failed to reload transaction: %w", err)
		}
		return nil
	}
	txn.Status = next
	if gatewayTxnID != "" {
		txn.GatewayTxnID = gatewayTxnID
	}

	if next == models.TransactionStatusSuccess {
		var client models.ClientAccount
		if err := db.WithContext(ctx).Where("id = ?", txn.ClientID).First(&client).Error; err != nil {
			return fmt.Errorf("failed to load client for commission: %w", err)
		}
		if err := s.commission.Record(ctx, db, txn.ID, txn.ClientID, txn.Amount, client.FeePercent); err != nil {
			return err
		}
	}
	return nil
}

// PublicTransactionView is the checkout page's read model: enough to
// render a branded payment page, nothing provider-identifying.
type PublicTransactionView struct {
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	Gateway       string `json:"gateway"`
	CreatedAt     string `json:"created_at"`
}

// PublicView loads a transaction without client auth, for checkout session
// rendering. The checkout token service gates access to it.
func (s *Service) PublicView(ctx context.Context, transactionID string) (*PublicTransactionView, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("id = ?", transactionID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	return &PublicTransactionView{
		TransactionID: txn.ID,
		OrderID:       txn.OrderID,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		Status:        lightspeed.SanitizeStatus(rowToPaymentStatus(txn.Status)),
		Gateway:       s.wrapper.BrandName(),
		CreatedAt:     txn.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func rowToPaymentStatus(s models.TransactionStatus) types.PaymentStatus {
	switch s {
	case models.TransactionStatusSuccess:
		return types.PaymentStatusSuccess
	case models.TransactionStatusFailed:
		return types.PaymentStatusFailed
	case models.TransactionStatusCancelled:
		return types.PaymentStatusCancelled
	default:
		return types.PaymentStatusPending
	}
}

func snapshotJSON(m map[string]any) datatypes.JSON {
	b, err := json.Marshal(m)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}
