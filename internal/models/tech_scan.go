package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/utils"
)

// TechScan is one processing attempt for a domain. Rows are append-only
// history, one per attempt, never overwritten.
type TechScan struct {
	ID       string            `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Domain   string            `gorm:"column:domain;type:varchar(255);index;not null" json:"domain"`
	Category enum.TechCategory `gorm:"column:category;type:varchar(50)" json:"category"`
	// Detection output, ordered snapshots including matched signals
	Technologies       JSONArray      `gorm:"column:technologies;type:jsonb" json:"technologies"`
	ScoredTechnologies JSONArray      `gorm:"column:scored_technologies;type:jsonb" json:"scoredTechnologies"`
	TopTechnology      string         `gorm:"column:top_technology;type:varchar(100)" json:"topTechnology"`
	TechNames          pq.StringArray `gorm:"column:tech_names;type:text[]" json:"techNames"`
	// Extracted contact emails, ordered first-seen
	Emails JSONArray `gorm:"column:emails;type:jsonb" json:"emails"`
	// Generated outreach email, null when no email was produced
	GeneratedEmail JSONMap `gorm:"column:generated_email;type:jsonb" json:"generatedEmail"`
	Error          string  `gorm:"column:error;type:text" json:"error"`
	// Send outcome
	Emailed   bool       `gorm:"column:emailed;not null;default:false" json:"emailed"`
	EmailedAt *time.Time `gorm:"column:emailed_at;type:timestamp" json:"emailedAt"`
	// Conversion outcome, set by the calendly sync
	Booked               bool       `gorm:"column:booked;not null;default:false" json:"booked"`
	BookedAt             *time.Time `gorm:"column:booked_at;type:timestamp" json:"bookedAt"`
	CalendlyEventURI     string     `gorm:"column:calendly_event_uri;type:text" json:"calendlyEventUri"`
	CalendlyInviteeEmail string     `gorm:"column:calendly_invitee_email;type:varchar(255)" json:"calendlyInviteeEmail"`
	CalendlyEventName    string     `gorm:"column:calendly_event_name;type:varchar(255)" json:"calendlyEventName"`
	// Raw HTML snapshot key in object storage, empty when archiving disabled
	SnapshotKey string    `gorm:"column:snapshot_key;type:text" json:"snapshotKey"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (TechScan) TableName() string {
	return "tech_scans"
}

func (t *TechScan) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("scan", 16)
	}
	return nil
}
