package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

type WebhookLogStatus string

const (
	WebhookLogStatusReceived      WebhookLogStatus = "received"
	WebhookLogStatusProcessed     WebhookLogStatus = "processed"
	WebhookLogStatusProcessFailed WebhookLogStatus = "process_failed"
)

type ForwardStatus string

const (
	ForwardStatusPending   ForwardStatus = "pending"
	ForwardStatusSent      ForwardStatus = "sent"
	ForwardStatusFailed    ForwardStatus = "failed"
	ForwardStatusAbandoned ForwardStatus = "abandoned"
)

// WebhookLog tracks one inbound provider callback through verification,
// processing and merchant forwarding. Abandoned forwards stay here for
// manual replay.
type WebhookLog struct {
	ID               string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider         types.Provider   `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	GatewayID        string           `gorm:"column:gateway_id;type:uuid" json:"gateway_id"`
	TraceID          string           `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	TransactionID    string           `gorm:"column:transaction_id;type:varchar(64);index" json:"transaction_id"`
	SourceIP         string           `gorm:"column:source_ip;type:varchar(64)" json:"source_ip"`
	Data             datatypes.JSON   `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON  `gorm:"column:result;type:jsonb" json:"result"`
	Status           WebhookLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	ForwardStatus    ForwardStatus    `gorm:"column:forward_status;type:varchar(16)" json:"forward_status"`
	ForwardAttempts  int              `gorm:"column:forward_attempts;not null;default:0" json:"forward_attempts"`
	LastForwardError *string          `gorm:"column:last_forward_error;type:varchar(512)" json:"last_forward_error"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (WebhookLog) TableName() string { return "webhook_log" }
