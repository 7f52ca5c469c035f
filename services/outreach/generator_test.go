package outreach

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/enum"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/services/catalog"
)

func scoredTech(name string, category enum.TechCategory) models.ScoredTechnology {
	return models.ScoredTechnology{
		DetectedTechnology: models.DetectedTechnology{Name: name, Category: category},
	}
}

func TestRenderFillsAllPlaceholders(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)
	persona := DefaultPersonas()[0]
	variant := DefaultVariants()[0] // crm_audit

	top := scoredTech("HubSpot", enum.TechCategoryCRM)
	supporting := []models.ScoredTechnology{
		scoredTech("Stripe", enum.TechCategoryPayments),
		scoredTech("Google Analytics", enum.TechCategoryAnalytics),
	}

	email, err := gen.Render("acme.com", top, supporting, persona, variant)
	require.NoError(t, err)

	require.Equal(t, "Quick question about your HubSpot setup", email.Subject)
	require.Contains(t, email.Body, "acme.com")
	require.Contains(t, email.Body, "HubSpot")
	require.Contains(t, email.Body, "Stripe and Google Analytics")
	require.Contains(t, email.Body, persona.DisplayName)
	require.Contains(t, email.Body, persona.BookingLink)
	require.NotContains(t, email.Body, "{{")

	require.Equal(t, "HubSpot", email.MainTech)
	require.Equal(t, []string{"Stripe", "Google Analytics"}, email.SupportingTechs)
	require.Equal(t, persona.ID, email.PersonaID)
	require.Equal(t, persona.Email, email.PersonaEmail)
	require.Equal(t, variant.ID, email.VariantID)
}

func TestRenderUsesCatalogTalkingPoint(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)

	email, err := gen.Render("acme.com", scoredTech("HubSpot", enum.TechCategoryCRM), nil, DefaultPersonas()[0], DefaultVariants()[0])
	require.NoError(t, err)

	sig, _ := catalog.Default().Get("HubSpot")
	require.Contains(t, email.Body, sig.TalkingPoint)
}

func TestRenderFallsBackToCategoryTalkingPoint(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)

	email, err := gen.Render("acme.com", scoredTech("SomethingNew", enum.TechCategoryCRM), nil, DefaultPersonas()[0], DefaultVariants()[0])
	require.NoError(t, err)
	require.Contains(t, email.Body, categoryTalkingPoints[enum.TechCategoryCRM])
}

func TestRenderCapsSupportingTechs(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 1)

	supporting := []models.ScoredTechnology{
		scoredTech("HubSpot", enum.TechCategoryCRM), // same as top, skipped
		scoredTech("Stripe", enum.TechCategoryPayments),
		scoredTech("Klaviyo", enum.TechCategoryEmailMarketing),
	}

	email, err := gen.Render("acme.com", scoredTech("HubSpot", enum.TechCategoryCRM), supporting, DefaultPersonas()[0], DefaultVariants()[0])
	require.NoError(t, err)
	require.Equal(t, []string{"Stripe"}, email.SupportingTechs)
}

func TestRenderDeterministic(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)
	top := scoredTech("Shopify", enum.TechCategoryEcommerce)
	variant := DefaultVariants()[2] // ecommerce_cro

	first, err := gen.Render("acme.com", top, nil, DefaultPersonas()[1], variant)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := gen.Render("acme.com", top, nil, DefaultPersonas()[1], variant)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestRenderUnresolvedPlaceholderFails(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)

	variant := models.MessageVariant{
		ID:       "broken",
		Category: enum.TechCategoryCRM,
		Subject:  "Hello {{.NoSuchField}}",
		Body:     "body",
	}

	_, err := gen.Render("acme.com", scoredTech("HubSpot", enum.TechCategoryCRM), nil, DefaultPersonas()[0], variant)
	require.Error(t, err)
	require.True(t, errors.Is(err, techscan_errors.ErrTemplateRender))
}

func TestRenderMalformedTemplateFails(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)

	variant := models.MessageVariant{
		ID:       "unclosed",
		Category: enum.TechCategoryCRM,
		Subject:  "Hello {{.MainTech",
		Body:     "body",
	}

	_, err := gen.Render("acme.com", scoredTech("HubSpot", enum.TechCategoryCRM), nil, DefaultPersonas()[0], variant)
	require.True(t, errors.Is(err, techscan_errors.ErrTemplateRender))
}

func TestDefaultVariantsAllRender(t *testing.T) {
	gen := NewGeneratorService(catalog.Default(), 2)
	persona := DefaultPersonas()[2]

	for _, variant := range DefaultVariants() {
		top := scoredTech("HubSpot", variant.Category)
		email, err := gen.Render("acme.com", top, nil, persona, variant)
		require.NoError(t, err, "variant %s", variant.ID)
		require.NotContains(t, email.Subject, "{{")
		require.NotContains(t, email.Body, "{{")
	}
}
