package models

import "time"

// ContestEntry is one player's position in one round. RangeIndex stays -1
// until the verified reveal attributes the confidential choice.
type ContestEntry struct {
	ContestID  uint64    `gorm:"primaryKey;autoIncrement:false"`
	Player     string    `gorm:"primaryKey;type:text;index"`
	Handle     string    `gorm:"type:text;not null"`
	RangeIndex int16     `gorm:"not null;default:-1"`
	Won        bool      `gorm:"not null;default:false"`
	Claimed    bool      `gorm:"not null;default:false"`
	EnteredAt  time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;not null"`
}

func (ContestEntry) TableName() string {
	return "arena_entries"
}
