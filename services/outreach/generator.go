package outreach

import (
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/leadscout/techscan/internal/enum"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/services/catalog"
)

// fallback snippets for technologies without a talking point of their own
var categoryTalkingPoints = map[enum.TechCategory]string{
	enum.TechCategoryCRM:            "CRM installs like this usually hold more pipeline signal than anyone acts on",
	enum.TechCategoryEcommerce:      "stores on this platform tend to leave easy conversion wins on the table",
	enum.TechCategoryPayments:       "payment data like this rarely makes it into the reporting loop",
	enum.TechCategoryEmailMarketing: "most teams on this tool run a fraction of the flows it supports",
	enum.TechCategoryAnalytics:      "the tracking is in place but the reading habit usually is not",
	enum.TechCategoryCDPTesting:     "the data plumbing exists; the activation usually does not",
	enum.TechCategoryCMSHosting:     "sites on this platform often ship without a growth stack around them",
	enum.TechCategoryOther:          "tooling like this tends to be set up once and never revisited",
}

type renderData struct {
	Domain          string
	MainTech        string
	TalkingPoint    string
	SupportingTechs string
	PersonaName     string
	PersonaRole     string
	PersonaEmail    string
	BookingLink     string
}

// GeneratorService renders outreach emails from a selected variant. Pure and
// deterministic for identical inputs.
type GeneratorService struct {
	catalog       *catalog.Catalog
	maxSupporting int
}

func NewGeneratorService(cat *catalog.Catalog, maxSupporting int) *GeneratorService {
	if maxSupporting < 0 {
		maxSupporting = 0
	}
	return &GeneratorService{
		catalog:       cat,
		maxSupporting: maxSupporting,
	}
}

// Render fills the variant's subject and body templates. Any unresolved
// placeholder fails with ErrTemplateRender rather than producing a
// half-rendered email.
func (s *GeneratorService) Render(domain string, top models.ScoredTechnology, supporting []models.ScoredTechnology, persona models.Persona, variant models.MessageVariant) (models.GeneratedEmail, error) {
	supportingNames := make([]string, 0, s.maxSupporting)
	for _, tech := range supporting {
		if len(supportingNames) == s.maxSupporting {
			break
		}
		if tech.Name == top.Name {
			continue
		}
		supportingNames = append(supportingNames, tech.Name)
	}

	data := renderData{
		Domain:          domain,
		MainTech:        top.Name,
		TalkingPoint:    s.talkingPoint(top),
		SupportingTechs: strings.Join(supportingNames, " and "),
		PersonaName:     persona.DisplayName,
		PersonaRole:     persona.Role,
		PersonaEmail:    persona.Email,
		BookingLink:     persona.BookingLink,
	}

	subject, err := renderTemplate(variant.ID+".subject", variant.Subject, data)
	if err != nil {
		return models.GeneratedEmail{}, err
	}
	body, err := renderTemplate(variant.ID+".body", variant.Body, data)
	if err != nil {
		return models.GeneratedEmail{}, err
	}

	return models.GeneratedEmail{
		Subject:         subject,
		Body:            body,
		MainTech:        top.Name,
		SupportingTechs: supportingNames,
		PersonaID:       persona.ID,
		Persona:         persona.DisplayName,
		PersonaEmail:    persona.Email,
		PersonaRole:     persona.Role,
		VariantID:       variant.ID,
	}, nil
}

func (s *GeneratorService) talkingPoint(top models.ScoredTechnology) string {
	if sig, ok := s.catalog.Get(top.Name); ok && sig.TalkingPoint != "" {
		return sig.TalkingPoint
	}
	if point, ok := categoryTalkingPoints[top.Category]; ok {
		return point
	}
	return categoryTalkingPoints[enum.TechCategoryOther]
}

func renderTemplate(name, text string, data renderData) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", errors.Wrapf(techscan_errors.ErrTemplateRender, "parse %s: %v", name, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", errors.Wrapf(techscan_errors.ErrTemplateRender, "execute %s: %v", name, err)
	}

	rendered := out.String()
	if strings.Contains(rendered, "{{") {
		return "", errors.Wrapf(techscan_errors.ErrTemplateRender, "%s has unresolved placeholders", name)
	}
	return rendered, nil
}
