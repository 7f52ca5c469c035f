package dto

// ScanBatchRequest triggers a scan batch over the API.
type ScanBatchRequest struct {
	Domains []string `json:"domains" binding:"required"`
	Send    bool     `json:"send"`
}

// DomainOutcome is one domain's result inside a batch. Failures never abort
// the batch; they land in Error here and on the persisted scan row.
type DomainOutcome struct {
	Domain        string `json:"domain"`
	ScanID        string `json:"scanId,omitempty"`
	Skipped       bool   `json:"skipped"`
	SkipReason    string `json:"skipReason,omitempty"`
	TopTechnology string `json:"topTechnology,omitempty"`
	Emailed       bool   `json:"emailed"`
	Error         string `json:"error,omitempty"`
}
