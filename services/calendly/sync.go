package calendly

import (
	"context"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/dto"
	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
)

type calendlyService struct {
	log          logger.Logger
	client       *Client
	repositories *repository.Repositories
	lookback     time.Duration
}

// NewCalendlyService wires the booking sync. lookback bounds how far back
// scheduled events are fetched on each run.
func NewCalendlyService(log logger.Logger, client *Client, repositories *repository.Repositories, lookback time.Duration) interfaces.CalendlyService {
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	return &calendlyService{
		log:          log,
		client:       client,
		repositories: repositories,
		lookback:     lookback,
	}
}

// Sync pulls recent scheduled events, matches invitee emails against emailed
// leads and records booking rows. Per-event failures are logged and skipped;
// one broken event never aborts the run.
func (s *calendlyService) Sync(ctx context.Context) (*dto.SyncStats, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CalendlyService.Sync")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	s.log.Infof("calendly sync connected as %s (%s)", user.Name, user.Email)

	now := utils.Now()
	events, err := s.client.ListScheduledEvents(ctx, now.Add(-s.lookback), now)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	s.log.Infof("calendly sync found %d scheduled events", len(events))

	stats := &dto.SyncStats{}
	for _, event := range events {
		if err := s.processEvent(ctx, event, stats); err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("calendly sync: event %s failed: %v", event.Name, err)
			continue
		}
		stats.EventsProcessed++
	}

	span.LogKV("result.eventsProcessed", stats.EventsProcessed,
		"result.bookingsFound", stats.BookingsFound,
		"result.leadsMatched", stats.LeadsMatched)
	s.log.Infof("calendly sync complete: %d events, %d bookings, %d leads matched, %d leads updated",
		stats.EventsProcessed, stats.BookingsFound, stats.LeadsMatched, stats.LeadsUpdated)
	return stats, nil
}

func (s *calendlyService) processEvent(ctx context.Context, event ScheduledEvent, stats *dto.SyncStats) error {
	invitees, err := s.client.ListEventInvitees(ctx, event)
	if err != nil {
		return err
	}

	for _, invitee := range invitees {
		email := strings.ToLower(strings.TrimSpace(invitee.Email))
		if email == "" {
			continue
		}
		stats.BookingsFound++

		scan, err := s.repositories.TechScanRepository.FindEmailedByExtractedEmail(ctx, email)
		if err != nil {
			return err
		}

		booking := s.buildBooking(event, invitee, email, scan)

		if scan != nil {
			stats.LeadsMatched++
			s.log.Infof("calendly sync: matched booking %s to lead %s (%s)", email, scan.Domain, scan.ID)

			if !scan.Booked {
				if err := s.repositories.TechScanRepository.MarkBooked(ctx, scan.ID, booking); err != nil {
					return err
				}
				stats.LeadsUpdated++
			}
		}

		if err := s.repositories.CalendlyBookingRepository.Upsert(ctx, booking); err != nil {
			return err
		}
		stats.NewBookings++
	}
	return nil
}

func (s *calendlyService) buildBooking(event ScheduledEvent, invitee Invitee, email string, scan *models.TechScan) *models.CalendlyBooking {
	booking := &models.CalendlyBooking{
		InviteeEmail:      email,
		InviteeName:       invitee.Name,
		InviteeStatus:     invitee.Status,
		EventUUID:         event.UUID(),
		EventURI:          event.URI,
		EventName:         event.Name,
		EventStatus:       event.Status,
		EventStartAt:      event.StartTime,
		EventEndAt:        event.EndTime,
		CalendlyCreatedAt: invitee.CreatedAt,
	}

	if scan != nil {
		booking.MatchedScanID = scan.ID
		booking.MatchedDomain = scan.Domain
		booking.Persona = stringField(scan.GeneratedEmail, "persona")
		booking.PersonaEmail = stringField(scan.GeneratedEmail, "persona_email")
		booking.VariantID = stringField(scan.GeneratedEmail, "variant_id")
		booking.MainTech = stringField(scan.GeneratedEmail, "main_tech")
	}
	return booking
}

func stringField(m models.JSONMap, key string) string {
	if m == nil {
		return ""
	}
	if value, ok := m[key].(string); ok {
		return value
	}
	return ""
}
