package extractor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractEmptyPage(t *testing.T) {
	svc := NewExtractorService()
	require.Empty(t, svc.Extract(""))
}

func TestExtractMailtoLinks(t *testing.T) {
	svc := NewExtractorService()

	page := `<html><body>
		<a href="mailto:Sales@Acme.com">Contact sales</a>
		<a href="mailto:support@acme.com?subject=Help">Support</a>
	</body></html>`

	emails := svc.Extract(page)
	require.Equal(t, []string{"sales@acme.com", "support@acme.com"}, emails)
}

func TestExtractFromText(t *testing.T) {
	svc := NewExtractorService()

	page := `<html><body>
		<p>Reach us at hello@acme.com or call.</p>
		<footer>press@acme.com</footer>
	</body></html>`

	emails := svc.Extract(page)
	require.Equal(t, []string{"hello@acme.com", "press@acme.com"}, emails)
}

func TestExtractDeduplicatesFirstSeen(t *testing.T) {
	svc := NewExtractorService()

	page := `<html><body>
		<a href="mailto:hello@acme.com">Email</a>
		<p>Write to HELLO@ACME.COM or sales@acme.com, then hello@acme.com again.</p>
	</body></html>`

	emails := svc.Extract(page)
	require.Equal(t, []string{"hello@acme.com", "sales@acme.com"}, emails)
}

func TestExtractFiltersNoise(t *testing.T) {
	svc := NewExtractorService()

	page := `<html><body>
		<img src="hero@2x.png">
		<p>icon@2x.png logo@3x.jpg</p>
		<p>demo@example.com</p>
		<script>dsn: "a1b2c3d4e5f6a1b2c3d4e5f6a1b2@sentry.io"</script>
		<p>real@acme.com</p>
	</body></html>`

	emails := svc.Extract(page)
	require.Equal(t, []string{"real@acme.com"}, emails)
}
