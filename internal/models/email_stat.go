package models

import (
	"time"
)

// EmailStat counts sends per (variant, persona, main tech) triple. The
// selector seeds its fairness counters from these rows on boot so restarts
// do not skew A/B exposure.
type EmailStat struct {
	ID         uint64     `gorm:"primary_key;autoIncrement" json:"id"`
	VariantID  string     `gorm:"column:variant_id;type:varchar(100);not null;uniqueIndex:idx_email_stats_triple" json:"variantId"`
	PersonaID  string     `gorm:"column:persona_id;type:varchar(100);not null;uniqueIndex:idx_email_stats_triple" json:"personaId"`
	MainTech   string     `gorm:"column:main_tech;type:varchar(100);not null;uniqueIndex:idx_email_stats_triple" json:"mainTech"`
	SendCount  int        `gorm:"column:send_count;not null;default:0" json:"sendCount"`
	LastSentAt *time.Time `gorm:"column:last_sent_at;type:timestamp" json:"lastSentAt"`
}

func (EmailStat) TableName() string {
	return "email_stats"
}
