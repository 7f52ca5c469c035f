package detector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/services/catalog"
)

// DetectorService matches fetched page content against the signature
// catalog. Pure function of its inputs and the catalog; safe for concurrent
// use.
type DetectorService struct {
	catalog *catalog.Catalog
	regexes map[string]*regexp.Regexp
}

func NewDetectorService(cat *catalog.Catalog) *DetectorService {
	// Body regexes are validated at catalog load, compile them once here.
	regexes := make(map[string]*regexp.Regexp)
	for _, sig := range cat.Signatures() {
		for _, rule := range sig.Rules {
			if rule.Kind == enum.RuleBodyRegex {
				regexes[rule.Value] = regexp.MustCompile(rule.Value)
			}
		}
	}
	return &DetectorService{
		catalog: cat,
		regexes: regexes,
	}
}

// page holds the parsed views of one fetched response that rules are
// evaluated against.
type page struct {
	body       string
	lowerBody  string
	headers    map[string]string // lower-cased names
	scriptSrcs []string
	generators []string
}

// Detect evaluates every catalog signature against the page. A signature is
// detected when any of its rules matches; every fired rule is recorded in
// order for auditability. Empty content yields an empty set, never an error.
// Output order follows the catalog, so identical inputs give identical
// output.
func (s *DetectorService) Detect(pageContent string, headers map[string]string) []models.DetectedTechnology {
	p := parsePage(pageContent, headers)

	detected := make([]models.DetectedTechnology, 0)
	for _, sig := range s.catalog.Signatures() {
		var signals []models.MatchedSignal
		for _, rule := range sig.Rules {
			if s.matches(p, rule) {
				signals = append(signals, models.MatchedSignal{Kind: rule.Kind, Value: rule.Value})
			}
		}
		if len(signals) > 0 {
			detected = append(detected, models.DetectedTechnology{
				Name:           sig.Name,
				Category:       sig.Category,
				MatchedSignals: signals,
			})
		}
	}
	return detected
}

func parsePage(pageContent string, headers map[string]string) *page {
	p := &page{
		body:      pageContent,
		lowerBody: strings.ToLower(pageContent),
		headers:   make(map[string]string, len(headers)),
	}
	for name, value := range headers {
		p.headers[strings.ToLower(name)] = value
	}

	if pageContent == "" {
		return p
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageContent))
	if err != nil {
		// rule kinds that need the DOM simply see an empty page
		return p
	}

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			p.scriptSrcs = append(p.scriptSrcs, strings.ToLower(src))
		}
	})
	doc.Find(`meta[name="generator"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			p.generators = append(p.generators, strings.ToLower(content))
		}
	})

	return p
}

func (s *DetectorService) matches(p *page, rule models.DetectionRule) bool {
	switch rule.Kind {
	case enum.RuleBodyContains:
		return p.lowerBody != "" && strings.Contains(p.lowerBody, strings.ToLower(rule.Value))

	case enum.RuleBodyRegex:
		return p.body != "" && s.regexes[rule.Value].MatchString(p.body)

	case enum.RuleScriptSrc:
		needle := strings.ToLower(rule.Value)
		for _, src := range p.scriptSrcs {
			if strings.Contains(src, needle) {
				return true
			}
		}
		return false

	case enum.RuleHeaderPresent:
		_, present := p.headers[strings.ToLower(rule.Value)]
		return present

	case enum.RuleHeaderContains:
		// value format is "name:substring"
		name, substr, found := strings.Cut(rule.Value, ":")
		if !found {
			return false
		}
		header, present := p.headers[strings.ToLower(name)]
		return present && strings.Contains(strings.ToLower(header), strings.ToLower(substr))

	case enum.RuleMetaGenerator:
		needle := strings.ToLower(rule.Value)
		for _, generator := range p.generators {
			if strings.Contains(generator, needle) {
				return true
			}
		}
		return false

	case enum.RuleCookieName:
		needle := strings.ToLower(rule.Value)
		if setCookie, present := p.headers["set-cookie"]; present {
			if strings.Contains(strings.ToLower(setCookie), needle) {
				return true
			}
		}
		// cookie tokens also show up inline in tracking snippets
		return p.lowerBody != "" && strings.Contains(p.lowerBody, needle)

	default:
		return false
	}
}
