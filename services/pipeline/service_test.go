package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/utils"
	"github.com/leadscout/techscan/services/catalog"
	"github.com/leadscout/techscan/services/dedup"
	"github.com/leadscout/techscan/services/detector"
	"github.com/leadscout/techscan/services/extractor"
	"github.com/leadscout/techscan/services/outreach"
	"github.com/leadscout/techscan/services/scorer"
)

const acmePage = `<html>
<head>
<script src="https://cdn.shopify.com/s/files/1/shop.js"></script>
<script src="https://js.hs-scripts.com/123456.js"></script>
</head>
<body>
Questions? Reach us at <a href="mailto:founder@acme.com">founder@acme.com</a>
or sales@acme.com.
</body>
</html>`

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, domain string) (string, map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.errs[domain]; ok {
		return "", nil, err
	}
	return f.pages[domain], map[string]string{"Content-Type": "text/html"}, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to    string
	email models.GeneratedEmail
}

func (f *fakeSender) Send(_ context.Context, to string, email *models.GeneratedEmail) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, email: *email})
	return "jordan@leadscout.io", nil
}

func (f *fakeSender) InboxCount() int      { return 1 }
func (f *fakeSender) SendingEnabled() bool { return false }

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[key], nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error { return nil }
func (f *fakeStorage) GetPublicURL(key string) string             { return "https://cdn.test/" + key }

type fakeTechScanRepository struct {
	mu    sync.Mutex
	scans map[string]*models.TechScan
	order []string
}

func newFakeTechScanRepository() *fakeTechScanRepository {
	return &fakeTechScanRepository{scans: make(map[string]*models.TechScan)}
}

func (f *fakeTechScanRepository) Create(_ context.Context, scan *models.TechScan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if scan.ID == "" {
		scan.ID = utils.GenerateNanoIDWithPrefix("scan", 16)
	}
	f.scans[scan.ID] = scan
	f.order = append(f.order, scan.ID)
	return nil
}

func (f *fakeTechScanRepository) GetByID(_ context.Context, id string) (*models.TechScan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scans[id], nil
}

func (f *fakeTechScanRepository) ListByDomain(_ context.Context, domain string) ([]models.TechScan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TechScan
	for _, id := range f.order {
		if f.scans[id].Domain == domain {
			out = append(out, *f.scans[id])
		}
	}
	return out, nil
}

func (f *fakeTechScanRepository) ListRecent(_ context.Context, _ int) ([]models.TechScan, error) {
	return nil, nil
}

func (f *fakeTechScanRepository) WasEmailed(_ context.Context, domain string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, scan := range f.scans {
		if scan.Domain == domain && scan.Emailed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTechScanRepository) MarkEmailed(_ context.Context, id string, generatedEmail models.JSONMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	scan := f.scans[id]
	scan.Emailed = true
	scan.EmailedAt = utils.NowPtr()
	scan.GeneratedEmail = generatedEmail
	return nil
}

func (f *fakeTechScanRepository) FindEmailedByExtractedEmail(_ context.Context, _ string) (*models.TechScan, error) {
	return nil, nil
}

func (f *fakeTechScanRepository) MarkBooked(_ context.Context, _ string, _ *models.CalendlyBooking) error {
	return nil
}

func (f *fakeTechScanRepository) SetSnapshotKey(_ context.Context, id string, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans[id].SnapshotKey = key
	return nil
}

type fakeDomainSeenRepository struct {
	mu   sync.Mutex
	seen map[string]*models.DomainSeen
}

func newFakeDomainSeenRepository() *fakeDomainSeenRepository {
	return &fakeDomainSeenRepository{seen: make(map[string]*models.DomainSeen)}
}

func (f *fakeDomainSeenRepository) Get(_ context.Context, domain string) (*models.DomainSeen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[domain], nil
}

func (f *fakeDomainSeenRepository) ScannedSince(_ context.Context, domain string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.seen[domain]
	if !ok {
		return false, nil
	}
	return entry.LastScanned.After(since), nil
}

func (f *fakeDomainSeenRepository) Record(_ context.Context, domain string, category enum.TechCategory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.seen[domain]
	if !ok {
		entry = &models.DomainSeen{Domain: domain, FirstSeen: utils.Now()}
		f.seen[domain] = entry
	}
	entry.Category = category
	entry.LastScanned = utils.Now()
	entry.TimesScanned++
	return nil
}

func (f *fakeDomainSeenRepository) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.seen)), nil
}

type fakeEmailStatRepository struct {
	mu    sync.Mutex
	sends map[string]int
}

func newFakeEmailStatRepository() *fakeEmailStatRepository {
	return &fakeEmailStatRepository{sends: make(map[string]int)}
}

func (f *fakeEmailStatRepository) IncrementSend(_ context.Context, variantID, personaID, mainTech string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends[variantID+"|"+personaID+"|"+mainTech]++
	return nil
}

func (f *fakeEmailStatRepository) ListAll(_ context.Context) ([]models.EmailStat, error) {
	return nil, nil
}

func (f *fakeEmailStatRepository) TotalSends(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, n := range f.sends {
		total += int64(n)
	}
	return total, nil
}

type pipelineFixture struct {
	service *pipelineService
	fetcher *fakeFetcher
	sender  *fakeSender
	storage *fakeStorage
	scans   *fakeTechScanRepository
	seen    *fakeDomainSeenRepository
	stats   *fakeEmailStatRepository
}

func newPipelineFixture(t *testing.T, cfg Config) *pipelineFixture {
	t.Helper()

	cat := catalog.Default()
	scans := newFakeTechScanRepository()
	seen := newFakeDomainSeenRepository()
	stats := newFakeEmailStatRepository()
	repos := &repository.Repositories{
		TechScanRepository:   scans,
		DomainSeenRepository: seen,
		EmailStatRepository:  stats,
	}

	fetcher := &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
	sender := &fakeSender{}
	store := &fakeStorage{}

	service := NewPipelineService(
		testLogger(),
		cfg,
		repos,
		detector.NewDetectorService(cat),
		extractor.NewExtractorService(),
		scorer.NewScorerService(cat, nil),
		outreach.NewGeneratorService(cat, 2),
		outreach.NewRotationState(outreach.DefaultPersonas(), outreach.DefaultVariants(), 0),
		dedup.NewDedupService(seen),
		fetcher,
		sender,
		store,
		nil,
	).(*pipelineService)

	return &pipelineFixture{
		service: service,
		fetcher: fetcher,
		sender:  sender,
		storage: store,
		scans:   scans,
		seen:    seen,
		stats:   stats,
	}
}

func testLogger() logger.Logger {
	log := logger.NewAppLogger(&logger.Config{LogLevel: "error", DevMode: true, Encoder: "console"})
	log.InitLogger()
	return log
}

func TestProcessDomain_ScanAndSend(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["acme.com"] = acmePage

	outcome := fixture.service.ProcessDomain(context.Background(), "https://www.acme.com/", true)

	require.Empty(t, outcome.Error)
	require.False(t, outcome.Skipped)
	require.Equal(t, "acme.com", outcome.Domain)
	require.Equal(t, "HubSpot", outcome.TopTechnology)
	require.True(t, outcome.Emailed)
	require.NotEmpty(t, outcome.ScanID)

	scan := fixture.scans.scans[outcome.ScanID]
	require.NotNil(t, scan)
	require.Equal(t, "acme.com", scan.Domain)
	require.Equal(t, enum.TechCategoryCRM, scan.Category)
	require.Equal(t, "HubSpot", scan.TopTechnology)
	require.ElementsMatch(t, []string{"HubSpot", "Shopify"}, []string(scan.TechNames))
	require.Len(t, scan.Emails, 2)
	require.Equal(t, "founder@acme.com", scan.Emails[0])
	require.True(t, scan.Emailed)
	require.NotNil(t, scan.EmailedAt)
	require.Equal(t, "HubSpot", scan.GeneratedEmail["main_tech"])

	require.Len(t, fixture.sender.sent, 1)
	require.Equal(t, "founder@acme.com", fixture.sender.sent[0].to)
	require.Equal(t, "HubSpot", fixture.sender.sent[0].email.MainTech)
	require.Contains(t, fixture.sender.sent[0].email.Body, "acme.com")

	entry := fixture.seen.seen["acme.com"]
	require.NotNil(t, entry)
	require.Equal(t, 1, entry.TimesScanned)
	require.Equal(t, enum.TechCategoryCRM, entry.Category)

	total, err := fixture.stats.TotalSends(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestProcessDomain_SnapshotStored(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["acme.com"] = acmePage

	outcome := fixture.service.ProcessDomain(context.Background(), "acme.com", false)

	scan := fixture.scans.scans[outcome.ScanID]
	require.NotEmpty(t, scan.SnapshotKey)
	require.Equal(t, "snapshots/acme.com/"+scan.ID+".html", scan.SnapshotKey)
	require.Equal(t, []byte(acmePage), fixture.storage.objects[scan.SnapshotKey])
}

func TestProcessDomain_SnapshotFailureNotFatal(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["acme.com"] = acmePage
	fixture.storage.err = errors.New("bucket unavailable")

	outcome := fixture.service.ProcessDomain(context.Background(), "acme.com", true)

	require.Empty(t, outcome.Error)
	require.True(t, outcome.Emailed)
	require.Empty(t, fixture.scans.scans[outcome.ScanID].SnapshotKey)
}

func TestProcessDomain_DryRunGeneratesWithoutSending(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["acme.com"] = acmePage

	outcome := fixture.service.ProcessDomain(context.Background(), "acme.com", false)

	require.Empty(t, outcome.Error)
	require.False(t, outcome.Emailed)
	require.Empty(t, fixture.sender.sent)

	scan := fixture.scans.scans[outcome.ScanID]
	require.False(t, scan.Emailed)
	require.Equal(t, "HubSpot", scan.GeneratedEmail["main_tech"])
}

func TestProcessDomain_RescanWindowSkips(t *testing.T) {
	fixture := newPipelineFixture(t, Config{RescanAfter: time.Hour})
	fixture.fetcher.pages["acme.com"] = acmePage

	first := fixture.service.ProcessDomain(context.Background(), "acme.com", false)
	require.False(t, first.Skipped)

	second := fixture.service.ProcessDomain(context.Background(), "acme.com", false)
	require.True(t, second.Skipped)
	require.Equal(t, "recently scanned", second.SkipReason)
	require.Empty(t, second.ScanID)
	require.Equal(t, 1, fixture.fetcher.calls)
}

func TestProcessDomain_AlreadyEmailedSkipsOutreach(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["acme.com"] = acmePage

	first := fixture.service.ProcessDomain(context.Background(), "acme.com", true)
	require.True(t, first.Emailed)

	second := fixture.service.ProcessDomain(context.Background(), "acme.com", true)
	require.False(t, second.Emailed)
	require.True(t, second.Skipped)
	require.Equal(t, "already emailed", second.SkipReason)
	// the rescan is still recorded as history
	require.NotEmpty(t, second.ScanID)
	require.Len(t, fixture.sender.sent, 1)
}

func TestProcessDomain_FetchErrorRecorded(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.errs["down.example"] = errors.New("connection refused")

	outcome := fixture.service.ProcessDomain(context.Background(), "down.example", true)

	require.True(t, outcome.Skipped)
	require.Equal(t, "no technology signal", outcome.SkipReason)
	require.NotEmpty(t, outcome.ScanID)

	scan := fixture.scans.scans[outcome.ScanID]
	require.Contains(t, scan.Error, "connection refused")
	require.Empty(t, scan.TechNames)
	require.False(t, scan.Emailed)
	require.Empty(t, fixture.sender.sent)
}

func TestProcessDomain_NoEmailsNoOutreach(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["quiet.example"] = `<html><head>
<script src="https://cdn.shopify.com/s/shop.js"></script>
</head><body>No contact details here.</body></html>`

	outcome := fixture.service.ProcessDomain(context.Background(), "quiet.example", true)

	require.True(t, outcome.Skipped)
	require.Equal(t, "no contact emails", outcome.SkipReason)
	require.Equal(t, "Shopify", outcome.TopTechnology)
	require.Empty(t, fixture.sender.sent)

	scan := fixture.scans.scans[outcome.ScanID]
	require.Nil(t, scan.GeneratedEmail)
	require.False(t, scan.Emailed)
}

func TestProcessDomain_SendFailureKeepsScan(t *testing.T) {
	fixture := newPipelineFixture(t, Config{})
	fixture.fetcher.pages["acme.com"] = acmePage
	fixture.sender.err = errors.New("smtp unreachable")

	outcome := fixture.service.ProcessDomain(context.Background(), "acme.com", true)

	require.Contains(t, outcome.Error, "smtp unreachable")
	require.False(t, outcome.Emailed)
	require.NotEmpty(t, outcome.ScanID)
	require.False(t, fixture.scans.scans[outcome.ScanID].Emailed)
}

func TestProcessDomains_BatchNeverAborts(t *testing.T) {
	fixture := newPipelineFixture(t, Config{MaxWorkers: 2})
	fixture.fetcher.pages["acme.com"] = acmePage
	fixture.fetcher.errs["down.example"] = errors.New("timeout")
	fixture.fetcher.pages["quiet.example"] = `<html><body>plain page</body></html>`

	outcomes := fixture.service.ProcessDomains(
		context.Background(),
		[]string{"acme.com", "down.example", "quiet.example"},
		true,
	)

	require.Len(t, outcomes, 3)
	require.Equal(t, "acme.com", outcomes[0].Domain)
	require.True(t, outcomes[0].Emailed)
	require.Equal(t, "down.example", outcomes[1].Domain)
	require.True(t, outcomes[1].Skipped)
	require.Equal(t, "quiet.example", outcomes[2].Domain)
	require.True(t, outcomes[2].Skipped)
	require.Equal(t, "no technology signal", outcomes[2].SkipReason)
}

func TestProcessDomains_SameDomainSerialized(t *testing.T) {
	fixture := newPipelineFixture(t, Config{MaxWorkers: 4})
	fixture.fetcher.pages["acme.com"] = acmePage

	outcomes := fixture.service.ProcessDomains(
		context.Background(),
		[]string{"acme.com", "acme.com", "acme.com", "acme.com"},
		true,
	)

	emailed := 0
	for _, outcome := range outcomes {
		if outcome.Emailed {
			emailed++
		}
	}
	require.Equal(t, 1, emailed)
	require.Len(t, fixture.sender.sent, 1)
}
