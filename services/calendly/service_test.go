package calendly

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/utils"
)

type fakeTechScanRepository struct {
	scans  map[string]*models.TechScan
	booked []string
}

func (f *fakeTechScanRepository) Create(_ context.Context, scan *models.TechScan) error {
	f.scans[scan.ID] = scan
	return nil
}

func (f *fakeTechScanRepository) GetByID(_ context.Context, id string) (*models.TechScan, error) {
	return f.scans[id], nil
}

func (f *fakeTechScanRepository) ListByDomain(_ context.Context, domain string) ([]models.TechScan, error) {
	var out []models.TechScan
	for _, scan := range f.scans {
		if scan.Domain == domain {
			out = append(out, *scan)
		}
	}
	return out, nil
}

func (f *fakeTechScanRepository) ListRecent(_ context.Context, _ int) ([]models.TechScan, error) {
	return nil, nil
}

func (f *fakeTechScanRepository) WasEmailed(_ context.Context, domain string) (bool, error) {
	for _, scan := range f.scans {
		if scan.Domain == domain && scan.Emailed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTechScanRepository) MarkEmailed(_ context.Context, id string, generatedEmail models.JSONMap) error {
	scan := f.scans[id]
	scan.Emailed = true
	scan.EmailedAt = utils.NowPtr()
	scan.GeneratedEmail = generatedEmail
	return nil
}

func (f *fakeTechScanRepository) FindEmailedByExtractedEmail(_ context.Context, email string) (*models.TechScan, error) {
	for _, scan := range f.scans {
		if !scan.Emailed {
			continue
		}
		for _, e := range scan.Emails {
			if e == email {
				return scan, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeTechScanRepository) MarkBooked(_ context.Context, id string, booking *models.CalendlyBooking) error {
	scan := f.scans[id]
	scan.Booked = true
	scan.BookedAt = booking.EventStartAt
	scan.CalendlyEventURI = booking.EventURI
	scan.CalendlyInviteeEmail = booking.InviteeEmail
	scan.CalendlyEventName = booking.EventName
	f.booked = append(f.booked, id)
	return nil
}

func (f *fakeTechScanRepository) SetSnapshotKey(_ context.Context, id string, key string) error {
	f.scans[id].SnapshotKey = key
	return nil
}

type fakeBookingRepository struct {
	bookings map[string]*models.CalendlyBooking
}

func (f *fakeBookingRepository) Upsert(_ context.Context, booking *models.CalendlyBooking) error {
	f.bookings[booking.EventUUID+"|"+booking.InviteeEmail] = booking
	return nil
}

func (f *fakeBookingRepository) ListAll(_ context.Context) ([]models.CalendlyBooking, error) {
	var out []models.CalendlyBooking
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, nil
}

type fakeEmailStatRepository struct {
	totalSends int64
}

func (f *fakeEmailStatRepository) IncrementSend(_ context.Context, _, _, _ string) error {
	f.totalSends++
	return nil
}

func (f *fakeEmailStatRepository) ListAll(_ context.Context) ([]models.EmailStat, error) {
	return nil, nil
}

func (f *fakeEmailStatRepository) TotalSends(_ context.Context) (int64, error) {
	return f.totalSends, nil
}

func testLogger() logger.Logger {
	log := logger.NewAppLogger(&logger.Config{LogLevel: "error", DevMode: true, Encoder: "console"})
	log.InitLogger()
	return log
}

func fakeCalendlyServer(t *testing.T, eventURIBase *string) *httptest.Server {
	start := time.Now().Add(-24 * time.Hour).UTC()
	end := start.Add(30 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"resource": map[string]interface{}{
				"uri":   *eventURIBase + "/users/u1",
				"name":  "Jordan Blake",
				"email": "jordan@leadscout.io",
			},
		})
	})
	mux.HandleFunc("/scheduled_events", func(w http.ResponseWriter, r *http.Request) {
		require.NotEmpty(t, r.URL.Query().Get("user"))
		require.Equal(t, "active", r.URL.Query().Get("status"))

		if r.URL.Query().Get("page_token") == "" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"collection": []map[string]interface{}{
					{
						"uri":        *eventURIBase + "/scheduled_events/ev1",
						"name":       "Intro Call",
						"status":     "active",
						"start_time": start.Format(time.RFC3339),
						"end_time":   end.Format(time.RFC3339),
					},
				},
				"pagination": map[string]interface{}{"next_page_token": "page2"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"collection": []map[string]interface{}{
				{
					"uri":    *eventURIBase + "/scheduled_events/ev2",
					"name":   "Strategy Call",
					"status": "active",
				},
			},
			"pagination": map[string]interface{}{},
		})
	})
	mux.HandleFunc("/scheduled_events/ev1/invitees", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"collection": []map[string]interface{}{
				{"uri": "inv1", "email": " CEO@Acme.com ", "name": "Pat CEO", "status": "active"},
			},
			"pagination": map[string]interface{}{},
		})
	})
	mux.HandleFunc("/scheduled_events/ev2/invitees", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"collection": []map[string]interface{}{
				{"uri": "inv2", "email": "stranger@other.com", "name": "Stranger", "status": "active"},
			},
			"pagination": map[string]interface{}{},
		})
	})
	return httptest.NewServer(mux)
}

func TestSyncMatchesLeadsAndRecordsBookings(t *testing.T) {
	var base string
	server := fakeCalendlyServer(t, &base)
	defer server.Close()
	base = server.URL

	scanRepo := &fakeTechScanRepository{scans: map[string]*models.TechScan{
		"scan_1": {
			ID:      "scan_1",
			Domain:  "acme.com",
			Emails:  models.JSONArray{"ceo@acme.com"},
			Emailed: true,
			GeneratedEmail: models.JSONMap{
				"persona":       "Jordan Blake",
				"persona_email": "jordan@leadscout.io",
				"variant_id":    "crm_audit",
				"main_tech":     "HubSpot",
			},
		},
	}}
	bookingRepo := &fakeBookingRepository{bookings: map[string]*models.CalendlyBooking{}}
	statRepo := &fakeEmailStatRepository{totalSends: 10}

	repos := &repository.Repositories{
		TechScanRepository:        scanRepo,
		CalendlyBookingRepository: bookingRepo,
		EmailStatRepository:       statRepo,
	}

	svc := NewCalendlyService(testLogger(), NewClientWithBaseURL("test-token", server.URL), repos, 7*24*time.Hour)

	stats, err := svc.Sync(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, stats.EventsProcessed)
	require.Equal(t, 2, stats.BookingsFound)
	require.Equal(t, 1, stats.LeadsMatched)
	require.Equal(t, 1, stats.LeadsUpdated)
	require.Equal(t, 2, stats.NewBookings)

	require.Equal(t, []string{"scan_1"}, scanRepo.booked)
	require.True(t, scanRepo.scans["scan_1"].Booked)
	require.Equal(t, "ceo@acme.com", scanRepo.scans["scan_1"].CalendlyInviteeEmail)
	require.Equal(t, "Intro Call", scanRepo.scans["scan_1"].CalendlyEventName)

	matched := bookingRepo.bookings["ev1|ceo@acme.com"]
	require.NotNil(t, matched)
	require.Equal(t, "scan_1", matched.MatchedScanID)
	require.Equal(t, "acme.com", matched.MatchedDomain)
	require.Equal(t, "Jordan Blake", matched.Persona)
	require.Equal(t, "crm_audit", matched.VariantID)
	require.Equal(t, "HubSpot", matched.MainTech)

	unmatched := bookingRepo.bookings["ev2|stranger@other.com"]
	require.NotNil(t, unmatched)
	require.Empty(t, unmatched.MatchedScanID)
}

func TestSyncDoesNotRebookLead(t *testing.T) {
	var base string
	server := fakeCalendlyServer(t, &base)
	defer server.Close()
	base = server.URL

	scanRepo := &fakeTechScanRepository{scans: map[string]*models.TechScan{
		"scan_1": {
			ID:      "scan_1",
			Domain:  "acme.com",
			Emails:  models.JSONArray{"ceo@acme.com"},
			Emailed: true,
			Booked:  true,
		},
	}}
	repos := &repository.Repositories{
		TechScanRepository:        scanRepo,
		CalendlyBookingRepository: &fakeBookingRepository{bookings: map[string]*models.CalendlyBooking{}},
		EmailStatRepository:       &fakeEmailStatRepository{},
	}

	svc := NewCalendlyService(testLogger(), NewClientWithBaseURL("test-token", server.URL), repos, 0)

	stats, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.LeadsMatched)
	require.Equal(t, 0, stats.LeadsUpdated)
	require.Empty(t, scanRepo.booked)
}

func TestAnalyticsAggregatesBookings(t *testing.T) {
	bookingRepo := &fakeBookingRepository{bookings: map[string]*models.CalendlyBooking{}}
	for i := 0; i < 3; i++ {
		bookingRepo.bookings[fmt.Sprintf("ev%d|a", i)] = &models.CalendlyBooking{
			EventUUID:     fmt.Sprintf("ev%d", i),
			InviteeEmail:  "a",
			MatchedScanID: "scan_1",
			Persona:       "Jordan Blake",
			VariantID:     "crm_audit",
			MainTech:      "HubSpot",
		}
	}
	bookingRepo.bookings["evx|b"] = &models.CalendlyBooking{
		EventUUID:    "evx",
		InviteeEmail: "b",
	}

	repos := &repository.Repositories{
		CalendlyBookingRepository: bookingRepo,
		EmailStatRepository:       &fakeEmailStatRepository{totalSends: 12},
	}
	svc := NewCalendlyService(testLogger(), NewClient("t"), repos, 0)

	analytics, err := svc.Analytics(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, analytics.TotalBookings)
	require.Equal(t, 3, analytics.MatchedBookings)
	require.Equal(t, 3, analytics.ByPersona["Jordan Blake"])
	require.Equal(t, 1, analytics.ByPersona["Unknown"])
	require.Equal(t, 3, analytics.ByVariant["crm_audit"])
	require.Equal(t, 3, analytics.ByTech["HubSpot"])
	require.InDelta(t, 0.25, analytics.OverallConversionRate, 1e-9)
}
