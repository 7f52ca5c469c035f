package detector

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/services/catalog"
)

func TestDetectEmptyPage(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	detected := svc.Detect("", nil)
	require.Empty(t, detected)
}

func TestDetectScriptSrc(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	page := `<html><head>
		<script src="https://cdn.shopify.com/s/files/theme.js"></script>
	</head><body>Welcome</body></html>`

	detected := svc.Detect(page, nil)
	require.Len(t, detected, 1)
	require.Equal(t, "Shopify", detected[0].Name)
	require.Equal(t, enum.TechCategoryEcommerce, detected[0].Category)
	require.Len(t, detected[0].MatchedSignals, 1)
	require.Equal(t, enum.RuleScriptSrc, detected[0].MatchedSignals[0].Kind)
	require.Equal(t, "cdn.shopify.com", detected[0].MatchedSignals[0].Value)
}

func TestDetectHeadersCaseInsensitive(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	headers := map[string]string{
		"X-Shopify-Stage": "production",
		"SERVER":          "Squarespace",
	}

	detected := svc.Detect("<html></html>", headers)

	names := make([]string, 0, len(detected))
	for _, d := range detected {
		names = append(names, d.Name)
	}
	require.Contains(t, names, "Shopify")
	require.Contains(t, names, "Squarespace")
}

func TestDetectCookieFromSetCookieHeader(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	headers := map[string]string{
		"Set-Cookie": "hubspotutk=abc123; path=/; _ga=GA1.2.3",
	}

	detected := svc.Detect("<html></html>", headers)

	names := make([]string, 0, len(detected))
	for _, d := range detected {
		names = append(names, d.Name)
	}
	require.Contains(t, names, "HubSpot")
	require.Contains(t, names, "Google Analytics")
}

func TestDetectMetaGenerator(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	page := `<html><head><meta name="generator" content="WordPress 6.4"></head><body></body></html>`

	detected := svc.Detect(page, nil)
	require.Len(t, detected, 1)
	require.Equal(t, "WordPress", detected[0].Name)
}

func TestDetectBodyRegex(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	page := `<html><body><script>gtag('config', 'G-ABCDEF1234');</script></body></html>`

	detected := svc.Detect(page, nil)
	require.Len(t, detected, 1)
	require.Equal(t, "Google Analytics", detected[0].Name)
}

func TestDetectRecordsAllFiredRules(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	page := `<html><head>
		<script src="https://js.hs-scripts.com/12345.js"></script>
		<script src="https://js.hs-analytics.net/analytics/1/12345.js"></script>
	</head><body></body></html>`
	headers := map[string]string{"Set-Cookie": "hubspotutk=xyz"}

	detected := svc.Detect(page, headers)
	require.Len(t, detected, 1)
	require.Equal(t, "HubSpot", detected[0].Name)
	require.Len(t, detected[0].MatchedSignals, 3)
}

func TestDetectDeterministicCatalogOrder(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	page := `<html><head>
		<script src="https://cdn.shopify.com/theme.js"></script>
		<script src="https://js.stripe.com/v3/"></script>
		<script src="https://static.klaviyo.com/onsite/js/klaviyo.js"></script>
	</head><body></body></html>`

	first := svc.Detect(page, nil)
	require.Len(t, first, 3)
	require.Equal(t, "Shopify", first[0].Name)
	require.Equal(t, "Stripe", first[1].Name)
	require.Equal(t, "Klaviyo", first[2].Name)

	for i := 0; i < 5; i++ {
		again := svc.Detect(page, nil)
		require.Equal(t, first, again)
	}
}

func TestDetectNoFalsePositives(t *testing.T) {
	svc := NewDetectorService(catalog.Default())

	page := `<html><head><title>Plain corporate site</title></head>
	<body><p>We build furniture.</p></body></html>`

	detected := svc.Detect(page, map[string]string{"Content-Type": "text/html"})
	require.Empty(t, detected)
}
