package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Contest mirrors one round of the arena for audit and history queries. The
// in-memory ledger stays authoritative; rows here are write-through snapshots.
type Contest struct {
	ID              uint64           `gorm:"primaryKey"`
	StartTime       time.Time        `gorm:"type:timestamptz;not null;index"`
	LockTime        time.Time        `gorm:"type:timestamptz;not null"`
	SettleTime      time.Time        `gorm:"type:timestamptz;not null"`
	StartingPrice   decimal.Decimal  `gorm:"type:numeric(30,8);not null"`
	FinalPrice      *decimal.Decimal `gorm:"type:numeric(30,8)"`
	RangeBounds     datatypes.JSON   `gorm:"type:jsonb;not null"`
	EntryFee        decimal.Decimal  `gorm:"type:numeric(38,0);not null"`
	PrizePool       decimal.Decimal  `gorm:"type:numeric(38,0);not null"`
	PaidOut         decimal.Decimal  `gorm:"type:numeric(38,0);not null"`
	Entrants        uint64           `gorm:"not null;default:0"`
	DirectionsReady bool             `gorm:"not null;default:false"`
	Settled         bool             `gorm:"not null;default:false;index"`
	RolledOver      bool             `gorm:"not null;default:false"`
	WinningRange    int16            `gorm:"not null;default:-1"`
	WinnerCount     uint64           `gorm:"not null;default:0"`
	ClaimedCount    uint64           `gorm:"not null;default:0"`
	UpdatedAt       time.Time        `gorm:"type:timestamptz;not null"`
}

func (Contest) TableName() string {
	return "arena_contests"
}
