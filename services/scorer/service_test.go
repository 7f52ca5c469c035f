package scorer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/services/catalog"
)

func detected(names ...string) []models.DetectedTechnology {
	cat := catalog.Default()
	out := make([]models.DetectedTechnology, 0, len(names))
	for _, name := range names {
		sig, _ := cat.Get(name)
		out = append(out, models.DetectedTechnology{Name: sig.Name, Category: sig.Category})
	}
	return out
}

func TestScoreDefaultMultipliers(t *testing.T) {
	svc := NewScorerService(catalog.Default(), nil)

	scored := svc.Score(detected("Shopify", "HubSpot"))
	require.Len(t, scored, 2)

	require.Equal(t, "HubSpot", scored[0].Name)
	require.Equal(t, float64(8), scored[0].Score)
	require.Equal(t, 1, scored[0].Rank)

	require.Equal(t, "Shopify", scored[1].Name)
	require.Equal(t, float64(6), scored[1].Score)
	require.Equal(t, 2, scored[1].Rank)
}

func TestScoreSpecializationMultiplierChangesRanking(t *testing.T) {
	multipliers := map[enum.TechCategory]float64{
		enum.TechCategoryEcommerce: 2.0,
	}
	svc := NewScorerService(catalog.Default(), multipliers)

	scored := svc.Score(detected("Shopify", "HubSpot"))
	require.Equal(t, "Shopify", scored[0].Name)
	require.Equal(t, float64(12), scored[0].Score)
	require.Equal(t, float64(2), scored[0].SpecializationWeight)
	require.Equal(t, "HubSpot", scored[1].Name)
}

func TestScoreTieBreaks(t *testing.T) {
	svc := NewScorerService(catalog.Default(), nil)

	// Segment and Optimizely both score 7; name asc decides
	scored := svc.Score(detected("Optimizely", "Segment"))
	require.Equal(t, "Optimizely", scored[0].Name)
	require.Equal(t, "Segment", scored[1].Name)

	again := svc.Score(detected("Segment", "Optimizely"))
	require.Equal(t, "Optimizely", again[0].Name)
	require.Equal(t, "Segment", again[1].Name)
}

func TestScoreEmptyAndUnknownInput(t *testing.T) {
	svc := NewScorerService(catalog.Default(), nil)

	require.Empty(t, svc.Score(nil))

	scored := svc.Score([]models.DetectedTechnology{{Name: "NotInCatalog"}})
	require.Empty(t, scored)
}
