package outreach

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/leadscout/techscan/internal/models"
)

// DefaultPersonas is the built-in sender roster used when PERSONAS_JSON is
// not configured.
func DefaultPersonas() []models.Persona {
	return []models.Persona{
		{
			ID:          "jordan",
			DisplayName: "Jordan Blake",
			Email:       "jordan@leadscout.io",
			Role:        "Partnerships",
			Tone:        "direct",
			BookingLink: "https://calendly.com/leadscout-jordan/intro",
		},
		{
			ID:          "sam",
			DisplayName: "Sam Rivera",
			Email:       "sam@leadscout.io",
			Role:        "Growth",
			Tone:        "curious",
			BookingLink: "https://calendly.com/leadscout-sam/intro",
		},
		{
			ID:          "alex",
			DisplayName: "Alex Morgan",
			Email:       "alex@leadscout.io",
			Role:        "Solutions",
			Tone:        "consultative",
			BookingLink: "https://calendly.com/leadscout-alex/intro",
		},
	}
}

// ParsePersonas decodes a PERSONAS_JSON roster. The format is a bare JSON
// array of persona objects.
func ParsePersonas(raw string) ([]models.Persona, error) {
	var personas []models.Persona
	if err := json.Unmarshal([]byte(raw), &personas); err != nil {
		return nil, errors.Wrap(err, "cannot parse personas json")
	}
	for _, p := range personas {
		if p.ID == "" || p.DisplayName == "" || p.Email == "" {
			return nil, errors.Errorf("persona missing id, display name or email: %+v", p)
		}
	}
	return personas, nil
}
