package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PrizeClaim is one successful payout.
type PrizeClaim struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement"`
	ContestID uint64          `gorm:"not null;index"`
	Player    string          `gorm:"type:text;not null;index"`
	Amount    decimal.Decimal `gorm:"type:numeric(38,0);not null"`
	ClaimedAt time.Time       `gorm:"type:timestamptz;not null"`
}

func (PrizeClaim) TableName() string {
	return "arena_claims"
}
