package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/enum"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/models"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	require.Greater(t, c.Len(), 15)

	sig, ok := c.Get("HubSpot")
	require.True(t, ok)
	require.Equal(t, enum.TechCategoryCRM, sig.Category)
	require.Equal(t, float64(8), sig.EnterpriseWeight)
	require.NotEmpty(t, sig.TalkingPoint)

	_, ok = c.Get("NotATechnology")
	require.False(t, ok)
}

func TestNewRejectsInvalidSignatures(t *testing.T) {
	valid := models.TechnologySignature{
		Name:             "Shopify",
		Category:         enum.TechCategoryEcommerce,
		Rules:            []models.DetectionRule{{Kind: enum.RuleScriptSrc, Value: "cdn.shopify.com"}},
		EnterpriseWeight: 6,
	}

	tests := []struct {
		name       string
		signatures []models.TechnologySignature
	}{
		{
			name:       "empty catalog",
			signatures: nil,
		},
		{
			name: "empty name",
			signatures: []models.TechnologySignature{
				{Category: enum.TechCategoryCRM, Rules: valid.Rules, EnterpriseWeight: 5},
			},
		},
		{
			name:       "duplicate name",
			signatures: []models.TechnologySignature{valid, valid},
		},
		{
			name: "no rules",
			signatures: []models.TechnologySignature{
				{Name: "Shopify", Category: enum.TechCategoryEcommerce, EnterpriseWeight: 6},
			},
		},
		{
			name: "zero weight",
			signatures: []models.TechnologySignature{
				{Name: "Shopify", Category: enum.TechCategoryEcommerce, Rules: valid.Rules, EnterpriseWeight: 0},
			},
		},
		{
			name: "unknown rule kind",
			signatures: []models.TechnologySignature{
				{
					Name:             "Shopify",
					Category:         enum.TechCategoryEcommerce,
					Rules:            []models.DetectionRule{{Kind: "dns_record", Value: "shopify"}},
					EnterpriseWeight: 6,
				},
			},
		},
		{
			name: "bad regex",
			signatures: []models.TechnologySignature{
				{
					Name:             "Shopify",
					Category:         enum.TechCategoryEcommerce,
					Rules:            []models.DetectionRule{{Kind: enum.RuleBodyRegex, Value: "G-[A-Z"}},
					EnterpriseWeight: 6,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.signatures)
			require.Error(t, err)
			require.True(t, errors.Is(err, techscan_errors.ErrCatalogInvalid))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "catalog.json")
	content := `{
		"signatures": [
			{
				"name": "Shopify",
				"category": "ecommerce",
				"rules": [{"kind": "script_src", "value": "cdn.shopify.com"}],
				"enterprise_weight": 6,
				"talking_point": "checkout flows on defaults"
			}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	sig, ok := c.Get("Shopify")
	require.True(t, ok)
	require.Equal(t, enum.TechCategoryEcommerce, sig.Category)
	require.Equal(t, enum.RuleScriptSrc, sig.Rules[0].Kind)
}

func TestLoadFromFileRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"signatures": [`), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	require.True(t, errors.Is(err, techscan_errors.ErrCatalogInvalid))
}

func TestLoadFromFileMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	require.True(t, errors.Is(err, techscan_errors.ErrCatalogInvalid))
}
