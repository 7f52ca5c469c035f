package outreach

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
)

// DefaultVariants is the built-in message library. Placeholders resolve
// against the render data in generator.go; every category in the catalog has
// at least one variant, the high-volume ones carry two for A/B rotation.
func DefaultVariants() []models.MessageVariant {
	return []models.MessageVariant{
		{
			ID:       "crm_audit",
			Category: enum.TechCategoryCRM,
			Subject:  "Quick question about your {{.MainTech}} setup",
			Body: `Hi there,

I was on {{.Domain}} and noticed you're running {{.MainTech}}{{if .SupportingTechs}} alongside {{.SupportingTechs}}{{end}}. In our experience {{.TalkingPoint}}.

We help teams get more out of exactly this stack. Worth a 15 minute look?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "crm_benchmark",
			Category: enum.TechCategoryCRM,
			Subject:  "How {{.MainTech}} teams like yours compare",
			Body: `Hi,

Noticed {{.MainTech}} on {{.Domain}}. We recently benchmarked a set of companies on the same stack and {{.TalkingPoint}}.

Happy to share the numbers on a short call:

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "ecommerce_cro",
			Category: enum.TechCategoryEcommerce,
			Subject:  "Your {{.MainTech}} store on {{.Domain}}",
			Body: `Hi,

Came across {{.Domain}} and saw it runs on {{.MainTech}}{{if .SupportingTechs}} with {{.SupportingTechs}} in the mix{{end}}. The pattern we keep seeing: {{.TalkingPoint}}.

We do conversion work for stores on this exact platform. Open to comparing notes?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "ecommerce_teardown",
			Category: enum.TechCategoryEcommerce,
			Subject:  "Free teardown of {{.Domain}}",
			Body: `Hi,

Your store runs {{.MainTech}}, which we know inside out. {{.TalkingPoint}} and we can usually show where within one working session.

Want a free teardown? Grab a slot:

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "payments_revops",
			Category: enum.TechCategoryPayments,
			Subject:  "{{.MainTech}} data you're probably not using",
			Body: `Hi,

Saw {{.MainTech}} on {{.Domain}}. {{.TalkingPoint}}.

We wire payment data into reporting teams actually read. 15 minutes to see if it fits?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "email_marketing_flows",
			Category: enum.TechCategoryEmailMarketing,
			Subject:  "Your {{.MainTech}} flows",
			Body: `Hi,

{{.Domain}} is running {{.MainTech}} and {{.TalkingPoint}}.

We build out the flows most teams never get to. Worth a quick chat?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "analytics_insight",
			Category: enum.TechCategoryAnalytics,
			Subject:  "Is anyone reading your {{.MainTech}} data?",
			Body: `Hi,

{{.MainTech}} is live on {{.Domain}}{{if .SupportingTechs}} next to {{.SupportingTechs}}{{end}}, and in our experience {{.TalkingPoint}}.

We turn that data into a weekly decision loop. Want to see how?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "cdp_activation",
			Category: enum.TechCategoryCDPTesting,
			Subject:  "Activating what {{.MainTech}} already collects",
			Body: `Hi,

Spotted {{.MainTech}} on {{.Domain}}. {{.TalkingPoint}}.

Activation is exactly what we do. Open to a short call?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "cms_growth",
			Category: enum.TechCategoryCMSHosting,
			Subject:  "{{.Domain}} on {{.MainTech}}",
			Body: `Hi,

{{.Domain}} runs on {{.MainTech}} and {{.TalkingPoint}}.

We layer the growth stack on top without a replatform. Worth 15 minutes?

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
		{
			ID:       "general_intro",
			Category: enum.TechCategoryOther,
			Subject:  "Noticed {{.MainTech}} on {{.Domain}}",
			Body: `Hi,

I came across {{.Domain}} and noticed you're using {{.MainTech}}. {{.TalkingPoint}}.

If growth tooling is on your roadmap this quarter, happy to compare notes:

{{.BookingLink}}

{{.PersonaName}}
{{.PersonaRole}}, LeadScout`,
		},
	}
}

// ParseVariants decodes a variants override. The format is a bare JSON array
// of variant objects.
func ParseVariants(raw string) ([]models.MessageVariant, error) {
	var variants []models.MessageVariant
	if err := json.Unmarshal([]byte(raw), &variants); err != nil {
		return nil, errors.Wrap(err, "cannot parse variants json")
	}
	for _, v := range variants {
		if v.ID == "" || v.Subject == "" || v.Body == "" {
			return nil, errors.Errorf("variant missing id, subject or body: %s", v.ID)
		}
		if v.Category == "" {
			return nil, errors.Errorf("variant %s missing category", v.ID)
		}
	}
	return variants, nil
}
