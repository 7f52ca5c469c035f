package enum

// RuleKind identifies how a detection rule is evaluated against a fetched
// page. New kinds require a case in the detector's dispatch, nothing else.
type RuleKind string

const (
	RuleBodyContains  RuleKind = "body_contains"
	RuleBodyRegex     RuleKind = "body_regex"
	RuleScriptSrc     RuleKind = "script_src"
	RuleHeaderPresent RuleKind = "header_present"
	RuleHeaderContains RuleKind = "header_contains"
	RuleCookieName    RuleKind = "cookie_name"
	RuleMetaGenerator RuleKind = "meta_generator"
)

func (r RuleKind) String() string {
	return string(r)
}
