package models

import "time"

// ContestRange is one price-change bucket of one round.
type ContestRange struct {
	ContestID        uint64    `gorm:"primaryKey;autoIncrement:false"`
	RangeIndex       int16     `gorm:"primaryKey;autoIncrement:false"`
	LowerBps         int64     `gorm:"not null"`
	UpperBps         int64     `gorm:"not null"`
	Entrants         uint64    `gorm:"not null;default:0"`
	RevealedExposure uint64    `gorm:"not null;default:0"`
	UpdatedAt        time.Time `gorm:"type:timestamptz;not null"`
}

func (ContestRange) TableName() string {
	return "arena_ranges"
}
