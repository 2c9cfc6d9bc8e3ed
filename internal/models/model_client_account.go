package models

import (
	"time"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusInactive  ClientStatus = "inactive"
	ClientStatusSuspended ClientStatus = "suspended"
)

// ClientAccount is a merchant of the platform. The client_key/client_salt
// pair authenticates payment API calls; the salt is returned exactly once
// at creation and never re-displayed.
type ClientAccount struct {
	ID         string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name       string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	ClientKey  string `gorm:"column:client_key;type:varchar(64);not null;uniqueIndex" json:"client_key"`
	ClientSalt string `gorm:"column:client_salt;type:varchar(64);not null" json:"-"`
	// FeePercent is the platform commission, e.g. 3.5 means 3.5%.
	FeePercent float64 `gorm:"column:fee_percent;type:numeric(6,3);not null;default:0" json:"fee_percent"`
	// SuspendThreshold is the unpaid commission balance, in minor units,
	// at which new initiations are rejected.
	SuspendThreshold int64             `gorm:"column:suspend_threshold;type:bigint;not null;default:0" json:"suspend_threshold"`
	WebhookURL       string            `gorm:"column:webhook_url;type:varchar(512)" json:"webhook_url"`
	Status           ClientStatus      `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	Environment      types.Environment `gorm:"column:environment;type:varchar(16);not null;default:'sandbox'" json:"environment"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (ClientAccount) TableName() string { return "client_account" }
