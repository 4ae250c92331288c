// Package store persists detected opportunities to MySQL.
package store

import (
	"time"
)

// OpportunityRecord is a persisted arbitrage opportunity.
type OpportunityRecord struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	ExternalID string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	Path       string    `gorm:"type:varchar(512);not null"`
	Multiplier float64   `gorm:"not null"`
	ProfitBps  int       `gorm:"not null"`
	Hops       int       `gorm:"not null"`
	DetectedAt time.Time `gorm:"index;not null"`

	Legs []*LegRecord `gorm:"foreignKey:OpportunityID;references:ID"`
}

// LegRecord is one trade within a persisted opportunity.
type LegRecord struct {
	ID            uint64  `gorm:"primaryKey;autoIncrement"`
	OpportunityID uint64  `gorm:"index;not null"`
	Position      int     `gorm:"not null"`
	FromCurrency  string  `gorm:"type:varchar(16);not null"`
	ToCurrency    string  `gorm:"type:varchar(16);not null"`
	Rate          float64 `gorm:"not null"`
	Fee           float64 `gorm:"not null"`
}
