package models

import (
	"github.com/leadscout/techscan/internal/enum"
)

// DetectionRule is one predicate over a fetched page. Kind selects how the
// detector evaluates Value; there is no behavior attached here.
type DetectionRule struct {
	Kind  enum.RuleKind `json:"kind"`
	Value string        `json:"value"`
}

// TechnologySignature describes one detectable technology. Signatures are
// immutable after catalog load.
type TechnologySignature struct {
	Name             string             `json:"name"`
	Category         enum.TechCategory  `json:"category"`
	Rules            []DetectionRule    `json:"rules"`
	EnterpriseWeight float64            `json:"enterpriseWeight"`
	TalkingPoint     string             `json:"talkingPoint,omitempty"`
}

// MatchedSignal records which rule fired, in rule order, for auditability.
type MatchedSignal struct {
	Kind  enum.RuleKind `json:"kind"`
	Value string        `json:"value"`
}

// DetectedTechnology is one signature found on a page plus the signals that
// put it there. A detection with no matched signals is never produced.
type DetectedTechnology struct {
	Name           string            `json:"name"`
	Category       enum.TechCategory `json:"category"`
	MatchedSignals []MatchedSignal   `json:"matchedSignals"`
}

// ScoredTechnology is a detected technology with its computed sales score
// and deterministic rank (1-based, 1 is the top technology).
type ScoredTechnology struct {
	DetectedTechnology
	EnterpriseWeight     float64 `json:"enterpriseWeight"`
	SpecializationWeight float64 `json:"specializationWeight"`
	Score                float64 `json:"score"`
	Rank                 int     `json:"rank"`
}
