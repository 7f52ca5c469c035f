package models

import (
	"github.com/leadscout/techscan/internal/enum"
)

// Persona is a sender identity from the configured roster.
type Persona struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Tone        string `json:"tone"`
	BookingLink string `json:"bookingLink,omitempty"`
}

// MessageVariant is one subject/body template registered for a technology
// category. Multiple variants per category rotate for A/B exposure.
type MessageVariant struct {
	ID       string            `json:"id"`
	Category enum.TechCategory `json:"category"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
}

// GeneratedEmail is the rendered outreach message. Immutable once produced;
// MainTech always equals the top technology of the scan that produced it.
type GeneratedEmail struct {
	Subject         string   `json:"subject"`
	Body            string   `json:"body"`
	MainTech        string   `json:"main_tech"`
	SupportingTechs []string `json:"supporting_techs"`
	PersonaID       string   `json:"persona_id"`
	Persona         string   `json:"persona"`
	PersonaEmail    string   `json:"persona_email"`
	PersonaRole     string   `json:"persona_role"`
	VariantID       string   `json:"variant_id"`
}

// AsJSONMap converts the email into the shape stored on tech_scans.generated_email.
func (g GeneratedEmail) AsJSONMap() JSONMap {
	supporting := make([]interface{}, 0, len(g.SupportingTechs))
	for _, t := range g.SupportingTechs {
		supporting = append(supporting, t)
	}
	return JSONMap{
		"subject":          g.Subject,
		"body":             g.Body,
		"main_tech":        g.MainTech,
		"supporting_techs": supporting,
		"persona_id":       g.PersonaID,
		"persona":          g.Persona,
		"persona_email":    g.PersonaEmail,
		"persona_role":     g.PersonaRole,
		"variant_id":       g.VariantID,
	}
}
