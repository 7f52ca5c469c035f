package interfaces

import (
	"context"

	"github.com/leadscout/techscan/dto"
)

// PipelineService runs the per-domain scan pipeline: dedup gate, fetch,
// detect, score, persist, select, render, send.
type PipelineService interface {
	// ProcessDomains runs a bounded-concurrency batch. It always returns
	// one outcome per input domain; per-domain failures never abort the
	// batch.
	ProcessDomains(ctx context.Context, domains []string, send bool) []dto.DomainOutcome
	ProcessDomain(ctx context.Context, domain string, send bool) dto.DomainOutcome
}
