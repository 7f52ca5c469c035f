package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

// DedupService gates re-scanning through the domains_seen table. An
// in-process per-domain lock serializes concurrent gate checks for the same
// domain, so two workers cannot both pass.
type DedupService struct {
	domainSeen repository.DomainSeenRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDedupService(domainSeen repository.DomainSeenRepository) *DedupService {
	return &DedupService{
		domainSeen: domainSeen,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Lock acquires the in-process lock for a domain. The caller holds it across
// its whole gate-check-then-record sequence and must call the returned
// unlock.
func (s *DedupService) Lock(domain string) func() {
	s.mu.Lock()
	lock, ok := s.locks[domain]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[domain] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ShouldProcess reports whether the domain is due for a scan. A domain whose
// last_scanned is within rescanAfter is skipped; rescanAfter of 0 always
// passes.
func (s *DedupService) ShouldProcess(ctx context.Context, domain string, rescanAfter time.Duration) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DedupService.ShouldProcess")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domain)

	if rescanAfter <= 0 {
		return true, nil
	}

	recentlyScanned, err := s.domainSeen.ScannedSince(ctx, domain, utils.Now().Add(-rescanAfter))
	if err != nil {
		tracing.TraceErr(span, err)
		return false, err
	}
	span.LogKV("result.recentlyScanned", recentlyScanned)
	return !recentlyScanned, nil
}

// Record marks the domain as scanned now, creating its row on first sight.
func (s *DedupService) Record(ctx context.Context, domain string, category enum.TechCategory) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DedupService.Record")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomain(span, domain)

	if err := s.domainSeen.Record(ctx, domain, category); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
