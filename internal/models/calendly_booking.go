package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/leadscout/techscan/internal/utils"
)

// CalendlyBooking is one invitee on one scheduled event, upserted on
// (event_uuid, invitee_email). Lead columns are denormalized from the
// matched tech scan for analytics.
type CalendlyBooking struct {
	ID            string     `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	InviteeEmail  string     `gorm:"column:invitee_email;type:varchar(255);not null;uniqueIndex:idx_bookings_event_invitee" json:"inviteeEmail"`
	InviteeName   string     `gorm:"column:invitee_name;type:varchar(255)" json:"inviteeName"`
	InviteeStatus string     `gorm:"column:invitee_status;type:varchar(50)" json:"inviteeStatus"`
	EventUUID     string     `gorm:"column:event_uuid;type:varchar(100);not null;uniqueIndex:idx_bookings_event_invitee" json:"eventUuid"`
	EventURI      string     `gorm:"column:event_uri;type:text" json:"eventUri"`
	EventName     string     `gorm:"column:event_name;type:varchar(255)" json:"eventName"`
	EventStatus   string     `gorm:"column:event_status;type:varchar(50)" json:"eventStatus"`
	EventStartAt  *time.Time `gorm:"column:event_start_at;type:timestamp" json:"eventStartAt"`
	EventEndAt    *time.Time `gorm:"column:event_end_at;type:timestamp" json:"eventEndAt"`
	// Matched lead info, empty when no scan row contained the invitee email
	MatchedScanID string `gorm:"column:matched_scan_id;type:varchar(50);index" json:"matchedScanId"`
	MatchedDomain string `gorm:"column:matched_domain;type:varchar(255)" json:"matchedDomain"`
	// Persona/variant tracking for conversion analytics
	Persona      string `gorm:"column:persona;type:varchar(100)" json:"persona"`
	PersonaEmail string `gorm:"column:persona_email;type:varchar(255)" json:"personaEmail"`
	VariantID    string `gorm:"column:variant_id;type:varchar(100)" json:"variantId"`
	MainTech     string `gorm:"column:main_tech;type:varchar(100)" json:"mainTech"`
	// Timestamps
	CalendlyCreatedAt *time.Time `gorm:"column:calendly_created_at;type:timestamp" json:"calendlyCreatedAt"`
	CreatedAt         time.Time  `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (CalendlyBooking) TableName() string {
	return "calendly_bookings"
}

func (b *CalendlyBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = utils.GenerateNanoIDWithPrefix("book", 16)
	}
	return nil
}
