package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/lightspeedpay/gatewaycore/pkg/types"
)

type TransactionStatus string

const (
	TransactionStatusCreated   TransactionStatus = "created"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Terminal statuses are sticky: exactly one non-terminal to terminal
// transition is honored per transaction.
func (s TransactionStatus) Terminal() bool {
	switch s {
	case TransactionStatusSuccess, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// FromPaymentStatus maps a canonical webhook status onto the row status.
func FromPaymentStatus(s types.PaymentStatus) TransactionStatus {
	switch s {
	case types.PaymentStatusSuccess:
		return TransactionStatusSuccess
	case types.PaymentStatusFailed:
		return TransactionStatusFailed
	case types.PaymentStatusCancelled:
		return TransactionStatusCancelled
	default:
		return TransactionStatusPending
	}
}

// Transaction is a payment accepted by the orchestration service. The ID
// is system-issued (LSP_ format) and is the id echoed through provider
// receipt/user_data fields so webhooks can be resolved back to it.
type Transaction struct {
	ID        string `gorm:"column:id;primary_key;type:varchar(64)" json:"id"`
	ClientID  string `gorm:"column:client_id;type:uuid;not null;index;uniqueIndex:unique_client_order,priority:1" json:"client_id"`
	GatewayID string `gorm:"column:gateway_id;type:uuid;not null;index" json:"gateway_id"`
	// OrderID is merchant-supplied, unique per client.
	OrderID  string            `gorm:"column:order_id;type:varchar(128);not null;uniqueIndex:unique_client_order,priority:2" json:"order_id"`
	Amount   int64             `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency string            `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status   TransactionStatus `gorm:"column:status;type:varchar(16);not null;default:'created'" json:"status"`
	// GatewayPaymentID is the provider's order/payment id from initiation.
	GatewayPaymentID string `gorm:"column:gateway_payment_id;type:varchar(128)" json:"gateway_payment_id"`
	// GatewayTxnID is the provider's final transaction id from the webhook.
	GatewayTxnID string `gorm:"column:gateway_txn_id;type:varchar(128)" json:"gateway_txn_id"`
	// GatewayResponse is the allow-listed snapshot, never the raw payload.
	GatewayResponse datatypes.JSON `gorm:"column:gateway_response;type:jsonb" json:"gateway_response"`
	Description     string         `gorm:"column:description;type:varchar(256)" json:"description"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (Transaction) TableName() string { return "transaction" }
