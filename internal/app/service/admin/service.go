package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go.uber.org/zap"

	"github.com/lightspeedpay/gatewaycore/internal/app/service/payment"
	"github.com/lightspeedpay/gatewaycore/internal/gateway"
	"github.com/lightspeedpay/gatewaycore/internal/models"
	"github.com/lightspeedpay/gatewaycore/pkg/tool"
	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidProvider    = errors.New("invalid provider")
	ErrMissingCredentials = errors.New("missing credential fields")
)

// Service backs the operator API: gateway and client management plus
// reporting. Credentials flow in through it but never back out.
type Service struct {
	db       *gorm.DB
	payments *payment.Service
	log      *zap.SugaredLogger
}

func NewService(db *gorm.DB, payments *payment.Service, log *zap.SugaredLogger) *Service {
	return &Service{db: db, payments: payments, log: log}
}

// GatewayParams is the create/update input for a gateway configuration.
// Credentials are accepted here and stored write-only.
type GatewayParams struct {
	Name         string            `json:"name"`
	Provider     types.Provider    `json:"provider"`
	Credentials  map[string]string `json:"credentials"`
	Priority     *int              `json:"priority"`
	IsActive     *bool             `json:"is_active"`
	Environment  types.Environment `json:"environment"`
	MonthlyLimit *int64            `json:"monthly_limit"`
}

func (s *Service) CreateGateway(ctx context.Context, p *GatewayParams) (*models.GatewayConfig, error) {
	if !p.Provider.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, p.Provider)
	}
	if missing := gateway.ValidateCredentialFields(p.Provider, p.Credentials); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	creds, err := json.Marshal(p.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	gw := &models.GatewayConfig{
		ID:          tool.GenerateUUIDV7(),
		Name:        p.Name,
		Provider:    p.Provider,
		Credentials: datatypes.JSON(creds),
		Priority:    100,
		IsActive:    true,
		Environment: types.EnvironmentSandbox,
	}
	if p.Priority != nil {
		gw.Priority = *p.Priority
	}
	if p.IsActive != nil {
		gw.IsActive = *p.IsActive
	}
	if p.Environment != "" {
		gw.Environment = p.Environment
	}
	if p.MonthlyLimit != nil {
		gw.MonthlyLimit = *p.MonthlyLimit
	}
	if err := s.db.WithContext(ctx).Create(gw).Error; err != nil {
		return nil, fmt.Errorf("failed to create gateway: %w", err)
	}
	s.log.Infow("gateway created", "gateway_id", gw.ID, "provider", gw.Provider, "environment", gw.Environment)
	return gw, nil
}

func (s *Service) GetGateway(ctx context.Context, id string) (*models.GatewayConfig, error) {
	var gw models.GatewayConfig
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&gw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &gw, nil
}

func (s *Service) ListGateways(ctx context.Context) ([]*models.GatewayConfig, error) {
	var gws []*models.GatewayConfig
	err := s.db.WithContext(ctx).Order("priority ASC, created_at ASC").Find(&gws).Error
	return gws, err
}

// UpdateGateway applies a partial update. Credentials, when present,
// replace the stored set wholesale after registry validation.
func (s *Service) UpdateGateway(ctx context.Context, id string, p *GatewayParams) (*models.GatewayConfig, error) {
	gw, err := s.GetGateway(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if p.Name != "" {
		updates["name"] = p.Name
	}
	if p.Priority != nil {
		updates["priority"] = *p.Priority
	}
	if p.IsActive != nil {
		updates["is_active"] = *p.IsActive
	}
	if p.Environment != "" {
		updates["environment"] = p.Environment
	}
	if p.MonthlyLimit != nil {
		updates["monthly_limit"] = *p.MonthlyLimit
	}
	if len(p.Credentials) > 0 {
		if missing := gateway.ValidateCredentialFields(gw.Provider, p.Credentials); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
		}
		creds, err := json.Marshal(p.Credentials)
		if err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		updates["credentials"] = datatypes.JSON(creds)
	}
	if len(updates) == 0 {
		return gw, nil
	}
	if err := s.db.WithContext(ctx).Model(gw).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update gateway: %w", err)
	}
	return s.GetGateway(ctx, id)
}

// DeleteGateway soft-deletes so historical transactions keep resolving.
func (s *Service) DeleteGateway(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.GatewayConfig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ValidateGateway makes a live credential check against the provider.
func (s *Service) ValidateGateway(ctx context.Context, id string) (bool, error) {
	gw, err := s.GetGateway(ctx, id)
	if err != nil {
		return false, err
	}
	adapter, err := s.payments.AdapterFor(gw)
	if err != nil {
		return false, err
	}
	return adapter.ValidateCredentials(ctx), nil
}

// ResetMonthlyVolumes zeroes every gateway's month counter, for the
// first-of-month scheduler.
func (s *Service) ResetMonthlyVolumes(ctx context.Context) error {
	return s.db.WithContext(ctx).Model(&models.GatewayConfig{}).
		Where("current_month_volume > 0").
		Update("current_month_volume", 0).Error
}

// ClientParams is the create/update input for a merchant account.
type ClientParams struct {
	Name             string              `json:"name"`
	FeePercent       *float64            `json:"fee_percent"`
	SuspendThreshold *int64              `json:"suspend_threshold"`
	WebhookURL       *string             `json:"webhook_url"`
	Status           models.ClientStatus `json:"status"`
	Environment      types.Environment   `json:"environment"`
}

// CreatedClient carries the one-time salt alongside the stored account.
type CreatedClient struct {
	Client *models.ClientAccount
	// Salt is shown exactly once; it is not recoverable afterwards.
	Salt string
}

func (s *Service) CreateClient(ctx context.Context, p *ClientParams) (*CreatedClient, error) {
	if p.Name == "" {
		return nil, errors.New("client name is required")
	}
	salt := tool.CompactUUID()
	client := &models.ClientAccount{
		ID:          tool.GenerateUUIDV7(),
		Name:        p.Name,
		ClientKey:   "lsk_" + tool.CompactUUID(),
		ClientSalt:  salt,
		Status:      models.ClientStatusActive,
		Environment: types.EnvironmentSandbox,
	}
	if p.FeePercent != nil {
		client.FeePercent = *p.FeePercent
	}
	if p.SuspendThreshold != nil {
		client.SuspendThreshold = *p.SuspendThreshold
	}
	if p.WebhookURL != nil {
		client.WebhookURL = *p.WebhookURL
	}
	if p.Status != "" {
		client.Status = p.Status
	}
	if p.Environment != "" {
		client.Environment = p.Environment
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.log.Infow("client created", "client_id", client.ID, "client_key", client.ClientKey)
	return &CreatedClient{Client: client, Salt: salt}, nil
}

func (s *Service) GetClient(ctx context.Context, id string) (*models.ClientAccount, error) {
	var client models.ClientAccount
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *Service) ListClients(ctx context.Context) ([]*models.ClientAccount, error) {
	var clients []*models.ClientAccount
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&clients).Error
	return clients, err
}

func (s *Service) UpdateClient(ctx context.Context, id string, p *ClientParams) (*models.ClientAccount, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if p.Name != "" {
		updates["name"] = p.Name
	}
	if p.FeePercent != nil {
		updates["fee_percent"] = *p.FeePercent
	}
	if p.SuspendThreshold != nil {
		updates["suspend_threshold"] = *p.SuspendThreshold
	}
	if p.WebhookURL != nil {
		updates["webhook_url"] = *p.WebhookURL
	}
	if p.Status != "" {
		updates["status"] = p.Status
	}
	if p.Environment != "" {
		updates["environment"] = p.Environment
	}
	if len(updates) == 0 {
		return client, nil
	}
	if err := s.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return s.GetClient(ctx, id)
}

// AssignmentParams creates or updates a client-gateway link.
type AssignmentParams struct {
	GatewayID     string `json:"gateway_id"`
	RotationOrder *int   `json:"rotation_order"`
	Weight        *int   `json:"weight"`
	DailyLimit    *int64 `json:"daily_limit"`
	IsActive      *bool  `json:"is_active"`
}

// UpsertAssignment links a client to a gateway, updating the existing
// link if one exists.
func (s *Service) UpsertAssignment(ctx context.Context, clientID string, p *AssignmentParams) (*models.GatewayAssignment, error) {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	if _, err := s.GetGateway(ctx, p.GatewayID); err != nil {
		return nil, err
	}

	a := &models.GatewayAssignment{
		ID:            tool.GenerateUUIDV7(),
		ClientID:      clientID,
		GatewayID:     p.GatewayID,
		RotationOrder: 100,
		Weight:        1,
		IsActive:      true,
	}
	if p.RotationOrder != nil {
		a.RotationOrder = *p.RotationOrder
	}
	if p.Weight != nil {
		a.Weight = *p.Weight
	}
	if p.DailyLimit != nil {
		a.DailyLimit = *p.DailyLimit
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_id"}, {Name: "gateway_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rotation_order", "weight", "daily_limit", "is_active", "updated_at",
		}),
	}).Create(a).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert assignment: %w", err)
	}

	var saved models.GatewayAssignment
	err = s.db.WithContext(ctx).Preload("Gateway").
		Where("client_id = ? AND gateway_id = ?", clientID, p.GatewayID).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) ListAssignments(ctx context.Context, clientID string) ([]*models.GatewayAssignment, error) {
	var assignments []*models.GatewayAssignment
	err := s.db.WithContext(ctx).Preload("Gateway").
		Where("client_id = ?", clientID).
		Order("rotation_order ASC").
		Find(&assignments).Error
	return assignments, err
}

// TransactionListRequest drives the filterable admin transaction view.
type TransactionListRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// filtersWhere joins the request filters into one WHERE expression.
type filtersWhere struct{ filters []*types.CommonFilter }

func (w filtersWhere) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, f := range w.filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		f.Build(builder)
	}
}

func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, req *TransactionListRequest) ([]*models.Transaction, int64, error) {
	size := req.Size
	if size <= 0 || size > 500 {
		size = 50
	}
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(req.SortOrder, "asc") {
		order = "ASC"
	}

	q := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Clauses(clause.Where{Exprs: []clause.Expression{filtersWhere{filters: req.Filters}}})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	var items []*models.Transaction
	err := q.Order(fmt.Sprintf("%s %s", sortBy, order)).
		Offset(req.From).Limit(size).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return items, total, nil
}
