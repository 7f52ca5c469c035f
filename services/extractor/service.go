package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/customeros/mailsherpa/mailvalidate"

	"github.com/leadscout/techscan/internal/utils"
)

var (
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	hexUserPattern = regexp.MustCompile(`^[0-9a-f]+$`)
)

// domains and suffixes that produce address-shaped noise, not contacts
var noiseDomains = map[string]struct{}{
	"example.com":         {},
	"example.org":         {},
	"sentry.io":           {},
	"sentry.wixpress.com": {},
	"domain.com":          {},
	"email.com":           {},
	"yourdomain.com":      {},
}

var noiseSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js"}

// ExtractorService pulls candidate contact addresses out of fetched page
// content. Pure and safe for concurrent use.
type ExtractorService struct{}

func NewExtractorService() *ExtractorService {
	return &ExtractorService{}
}

// Extract collects addresses from mailto: links and from an address regex
// over the raw content, lowercased and deduplicated preserving first-seen
// order. Addresses that fail syntax validation or look like asset noise are
// dropped. Never errors; an unparseable page simply yields fewer candidates.
func (s *ExtractorService) Extract(pageContent string) []string {
	if pageContent == "" {
		return []string{}
	}

	var candidates []string

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageContent)); err == nil {
		doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			// strip ?subject=... and friends
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			candidates = append(candidates, addr)
		})
	}

	candidates = append(candidates, emailPattern.FindAllString(pageContent, -1)...)

	emails := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		email := strings.ToLower(strings.TrimSpace(candidate))
		if email == "" || isNoise(email) {
			continue
		}
		validation := mailvalidate.ValidateEmailSyntax(email)
		if !validation.IsValid || validation.Domain == "" {
			continue
		}
		emails = append(emails, email)
	}

	return utils.UniqueEmails(emails)
}

func isNoise(email string) bool {
	for _, suffix := range noiseSuffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}

	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return true
	}
	domain := email[at+1:]
	if _, noisy := noiseDomains[domain]; noisy {
		return true
	}

	// sentry-style DSNs embed long hex users that pass syntax checks
	user := email[:at]
	if len(user) >= 24 && hexUserPattern.MatchString(user) {
		return true
	}
	return false
}
