package health

import (
	"context"
	"fmt"

	"github.com/customeros/mailwatcher/blscan"
	"github.com/customeros/mailwatcher/domainage"
	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/tracing"
	smtpservice "github.com/leadscout/techscan/services/smtp"
)

// inboxHealthService scores the deliverability of every sending domain in
// the inbox rotation. Outreach from a blacklisted or freshly registered
// domain burns the whole campaign, so the daily cron surfaces this early.
type inboxHealthService struct {
	log     logger.Logger
	inboxes []smtpservice.Inbox
}

func NewInboxHealthService(log logger.Logger, inboxes []smtpservice.Inbox) interfaces.InboxHealthService {
	return &inboxHealthService{
		log:     log,
		inboxes: inboxes,
	}
}

func (s *inboxHealthService) CheckInboxHealth(ctx context.Context) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "InboxHealthService.CheckInboxHealth")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if len(s.inboxes) == 0 {
		s.log.Warn("inbox health check skipped, no inboxes configured")
		return nil
	}

	checked := make(map[string]struct{})
	for _, inbox := range s.inboxes {
		domain := inbox.Domain()
		if domain == "" {
			continue
		}
		if _, done := checked[domain]; done {
			continue
		}
		checked[domain] = struct{}{}

		score := s.reputationScore(span, domain)
		span.LogKV("domain."+domain+".score", score)

		if score < 50 {
			s.log.Errorf("sending domain %s reputation score %d, pause outreach from this domain", domain, score)
		} else if score < 85 {
			s.log.Warnf("sending domain %s reputation score %d", domain, score)
		} else {
			s.log.Infof("sending domain %s reputation score %d", domain, score)
		}
	}
	return nil
}

func (s *inboxHealthService) reputationScore(span opentracing.Span, domain string) int {
	agePenalty := s.domainAgePenalty(span, domain)
	blacklistPenaltyPct := s.blacklistPenaltyPercent(domain)

	return (100 - agePenalty) * (1 - blacklistPenaltyPct/100)
}

func (s *inboxHealthService) domainAgePenalty(span opentracing.Span, domain string) int {
	domainDates, err := domainage.GetDomainDates(domain)
	if err != nil {
		tracing.TraceErr(span, fmt.Errorf("cannot determine domain dates: %v", err))
		return 0
	}

	if !domainDates.Success {
		return 0
	}

	domainAgeInDays := domainDates.CreationAge

	switch {
	case domainAgeInDays <= 1:
		return 75
	case domainAgeInDays <= 7:
		return 60
	case domainAgeInDays <= 10:
		return 50
	case domainAgeInDays <= 15:
		return 40
	case domainAgeInDays <= 30:
		return 30
	case domainAgeInDays <= 90:
		return 15
	default:
		return 0
	}
}

func (s *inboxHealthService) blacklistPenaltyPercent(domain string) int {
	blacklists := blscan.ScanBlacklists(domain, "domain")

	pct := (blacklists.MajorLists * 80) + (blacklists.MinorLists * 10) + (blacklists.SpamTrapLists * 20)
	if pct > 100 {
		return 100
	}
	return pct
}
