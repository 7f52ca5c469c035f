package catalog

import (
	"encoding/json"
	"os"
	"regexp"

	"github.com/pkg/errors"

	"github.com/leadscout/techscan/internal/enum"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/models"
)

// Catalog is the static registry of technology signatures. Immutable after
// load; safe for concurrent readers.
type Catalog struct {
	signatures []models.TechnologySignature
	byName     map[string]int
}

func New(signatures []models.TechnologySignature) (*Catalog, error) {
	if err := validate(signatures); err != nil {
		return nil, err
	}

	byName := make(map[string]int, len(signatures))
	for i, sig := range signatures {
		byName[sig.Name] = i
	}

	return &Catalog{
		signatures: signatures,
		byName:     byName,
	}, nil
}

// Default builds the built-in catalog covering the technologies the scanner
// targets out of the box.
func Default() *Catalog {
	c, err := New(defaultSignatures())
	if err != nil {
		// the built-in catalog is validated by tests; a failure here is a
		// programming error
		panic(err)
	}
	return c
}

type catalogFile struct {
	Signatures []signatureFile `json:"signatures"`
}

type signatureFile struct {
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Rules            []ruleFile `json:"rules"`
	EnterpriseWeight float64    `json:"enterprise_weight"`
	TalkingPoint     string     `json:"talking_point"`
}

type ruleFile struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// LoadFromFile replaces the built-in catalog with a JSON one. A malformed
// file is fatal at startup; the caller must not fall back silently.
func LoadFromFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(techscan_errors.ErrCatalogInvalid, "cannot read catalog file %s: %v", path, err)
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, errors.Wrapf(techscan_errors.ErrCatalogInvalid, "cannot parse catalog file %s: %v", path, err)
	}

	signatures := make([]models.TechnologySignature, 0, len(file.Signatures))
	for _, s := range file.Signatures {
		rules := make([]models.DetectionRule, 0, len(s.Rules))
		for _, r := range s.Rules {
			rules = append(rules, models.DetectionRule{
				Kind:  enum.RuleKind(r.Kind),
				Value: r.Value,
			})
		}
		signatures = append(signatures, models.TechnologySignature{
			Name:             s.Name,
			Category:         enum.DecodeTechCategory(s.Category),
			Rules:            rules,
			EnterpriseWeight: s.EnterpriseWeight,
			TalkingPoint:     s.TalkingPoint,
		})
	}

	return New(signatures)
}

// Signatures returns the signatures in catalog order. Callers must not
// mutate the returned slice.
func (c *Catalog) Signatures() []models.TechnologySignature {
	return c.signatures
}

func (c *Catalog) Get(name string) (models.TechnologySignature, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return models.TechnologySignature{}, false
	}
	return c.signatures[idx], true
}

func (c *Catalog) Len() int {
	return len(c.signatures)
}

var knownRuleKinds = map[enum.RuleKind]struct{}{
	enum.RuleBodyContains:   {},
	enum.RuleBodyRegex:      {},
	enum.RuleScriptSrc:      {},
	enum.RuleHeaderPresent:  {},
	enum.RuleHeaderContains: {},
	enum.RuleCookieName:     {},
	enum.RuleMetaGenerator:  {},
}

func validate(signatures []models.TechnologySignature) error {
	if len(signatures) == 0 {
		return errors.Wrap(techscan_errors.ErrCatalogInvalid, "catalog has no signatures")
	}

	seen := make(map[string]struct{}, len(signatures))
	for _, sig := range signatures {
		if sig.Name == "" {
			return errors.Wrap(techscan_errors.ErrCatalogInvalid, "signature with empty name")
		}
		if _, dup := seen[sig.Name]; dup {
			return errors.Wrapf(techscan_errors.ErrCatalogInvalid, "duplicate signature %s", sig.Name)
		}
		seen[sig.Name] = struct{}{}

		if len(sig.Rules) == 0 {
			return errors.Wrapf(techscan_errors.ErrCatalogInvalid, "signature %s has no detection rules", sig.Name)
		}
		if sig.EnterpriseWeight <= 0 {
			return errors.Wrapf(techscan_errors.ErrCatalogInvalid, "signature %s has non-positive enterprise weight", sig.Name)
		}
		for _, rule := range sig.Rules {
			if _, known := knownRuleKinds[rule.Kind]; !known {
				return errors.Wrapf(techscan_errors.ErrCatalogInvalid, "signature %s has unknown rule kind %q", sig.Name, rule.Kind)
			}
			if rule.Value == "" {
				return errors.Wrapf(techscan_errors.ErrCatalogInvalid, "signature %s has a rule with empty value", sig.Name)
			}
			if rule.Kind == enum.RuleBodyRegex {
				if _, err := regexp.Compile(rule.Value); err != nil {
					return errors.Wrapf(techscan_errors.ErrCatalogInvalid, "signature %s has invalid regex %q: %v", sig.Name, rule.Value, err)
				}
			}
		}
	}
	return nil
}
