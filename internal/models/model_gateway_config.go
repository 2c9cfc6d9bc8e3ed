package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

// GatewayConfig is one configured provider account. Credentials are
// write-only over the API and are never included in log output.
type GatewayConfig struct {
	ID       string         `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name     string         `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Provider types.Provider `gorm:"column:provider;type:varchar(32);not null;index" json:"provider"`
	// Credentials holds the provider-specific field map. Validated against
	// the registry's required-field list before any adapter is built.
	Credentials        datatypes.JSON    `gorm:"column:credentials;type:jsonb;not null" json:"-"`
	Priority           int               `gorm:"column:priority;not null;default:100" json:"priority"`
	IsActive           bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Environment        types.Environment `gorm:"column:environment;type:varchar(16);not null;default:'sandbox'" json:"environment"`
	MonthlyLimit       int64             `gorm:"column:monthly_limit;type:bigint;not null;default:0" json:"monthly_limit"`
	CurrentMonthVolume int64             `gorm:"column:current_month_volume;type:bigint;not null;default:0" json:"current_month_volume"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	// Soft delete only: transactions keep referencing deactivated gateways.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (GatewayConfig) TableName() string { return "gateway_config" }

// CredentialMap decodes the stored credential JSON into the free-form
// field map the adapter factory consumes.
func (g *GatewayConfig) CredentialMap() (map[string]string, error) {
	creds := make(map[string]string)
	if len(g.Credentials) == 0 {
		return creds, nil
	}
	if err := json.Unmarshal(g.Credentials, &creds); err != nil {
		return nil, fmt.Errorf("failed to decode gateway credentials: %w", err)
	}
	return creds, nil
}

// Sandbox reports whether the gateway runs against the provider's test
// environment.
func (g *GatewayConfig) Sandbox() bool {
	return g.Environment != types.EnvironmentProduction
}
