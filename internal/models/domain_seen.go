package models

import (
	"time"

	"github.com/leadscout/techscan/internal/enum"
)

// DomainSeen is the dedup bookkeeping row. Exactly one row per domain,
// created on first sight and mutated on every subsequent attempt.
type DomainSeen struct {
	ID           uint64            `gorm:"primary_key;autoIncrement" json:"id"`
	Domain       string            `gorm:"column:domain;type:varchar(255);not null;uniqueIndex" json:"domain"`
	Category     enum.TechCategory `gorm:"column:category;type:varchar(50)" json:"category"`
	FirstSeen    time.Time         `gorm:"column:first_seen;type:timestamp;not null" json:"firstSeen"`
	LastScanned  time.Time         `gorm:"column:last_scanned;type:timestamp;not null" json:"lastScanned"`
	TimesScanned int               `gorm:"column:times_scanned;not null;default:1" json:"timesScanned"`
}

func (DomainSeen) TableName() string {
	return "domains_seen"
}
