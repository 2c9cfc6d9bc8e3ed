package models

import (
	"time"
)

// GatewayAssignment links a client to a gateway it may use. An assignment
// can disable a gateway for one client without affecting others, and
// carries its own rotation order and daily limit.
type GatewayAssignment struct {
	ID            string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	ClientID      string `gorm:"column:client_id;type:uuid;not null;uniqueIndex:unique_client_gateway,priority:1" json:"client_id"`
	GatewayID     string `gorm:"column:gateway_id;type:uuid;not null;uniqueIndex:unique_client_gateway,priority:2" json:"gateway_id"`
	RotationOrder int    `gorm:"column:rotation_order;not null;default:100" json:"rotation_order"`
	Weight        int    `gorm:"column:weight;not null;default:1" json:"weight"`
	// DailyLimit of 0 means unlimited.
	DailyLimit int64 `gorm:"column:daily_limit;type:bigint;not null;default:0" json:"daily_limit"`
	DailyUsage int64 `gorm:"column:daily_usage;type:bigint;not null;default:0" json:"daily_usage"`
	// UsageDate is the day DailyUsage counts for; usage on any other day
	// is treated as zero by the reservation query.
	UsageDate time.Time `gorm:"column:usage_date;type:date" json:"usage_date"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Gateway *GatewayConfig `gorm:"foreignKey:GatewayID" json:"gateway,omitempty"`
}

func (GatewayAssignment) TableName() string { return "gateway_assignment" }
