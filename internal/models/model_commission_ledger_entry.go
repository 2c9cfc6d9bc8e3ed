package models

import (
	"time"
)

type CommissionStatus string

const (
	CommissionStatusRecorded CommissionStatus = "recorded"
	CommissionStatusPaidOut  CommissionStatus = "paid_out"
)

// CommissionLedgerEntry records the fee owed by a client for one
// successful transaction. The ledger is append-only; the unique index on
// transaction_id makes recording idempotent.
type CommissionLedgerEntry struct {
	ID            string           `gorm:"column:id;primary_key;type:uuid" json:"id"`
	TransactionID string           `gorm:"column:transaction_id;type:varchar(64);not null;uniqueIndex" json:"transaction_id"`
	ClientID      string           `gorm:"column:client_id;type:uuid;not null;index" json:"client_id"`
	Amount        int64            `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Status        CommissionStatus `gorm:"column:status;type:varchar(16);not null;default:'recorded'" json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (CommissionLedgerEntry) TableName() string { return "commission_ledger_entry" }
