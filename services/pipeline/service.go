package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/leadscout/techscan/dto"
	"github.com/leadscout/techscan/interfaces"
	techscan_errors "github.com/leadscout/techscan/internal/errors"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/internal/utils"
	"github.com/leadscout/techscan/services/dedup"
	"github.com/leadscout/techscan/services/detector"
	"github.com/leadscout/techscan/services/events"
	"github.com/leadscout/techscan/services/extractor"
	"github.com/leadscout/techscan/services/outreach"
	"github.com/leadscout/techscan/services/scorer"
	"github.com/leadscout/techscan/services/storage"
)

const defaultMaxWorkers = 4

type Config struct {
	MaxWorkers  int
	RescanAfter time.Duration
}

// PipelineService runs the scan-to-outreach sequence per domain. Every
// failure is caught at the domain boundary; a batch always returns one
// outcome per input domain.
type pipelineService struct {
	log          logger.Logger
	cfg          Config
	repositories *repository.Repositories

	detector  *detector.DetectorService
	extractor *extractor.ExtractorService
	scorer    *scorer.ScorerService
	generator *outreach.GeneratorService
	rotation  *outreach.RotationState
	dedup     *dedup.DedupService

	fetcher   interfaces.FetcherService
	sender    interfaces.SenderService
	snapshots interfaces.StorageService // nil when archiving disabled
	publisher *events.RabbitMQPublisher // nil means send inline
}

func NewPipelineService(
	log logger.Logger,
	cfg Config,
	repositories *repository.Repositories,
	detectorService *detector.DetectorService,
	extractorService *extractor.ExtractorService,
	scorerService *scorer.ScorerService,
	generatorService *outreach.GeneratorService,
	rotation *outreach.RotationState,
	dedupService *dedup.DedupService,
	fetcher interfaces.FetcherService,
	sender interfaces.SenderService,
	snapshots interfaces.StorageService,
	publisher *events.RabbitMQPublisher,
) interfaces.PipelineService {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	return &pipelineService{
		log:          log,
		cfg:          cfg,
		repositories: repositories,
		detector:     detectorService,
		extractor:    extractorService,
		scorer:       scorerService,
		generator:    generatorService,
		rotation:     rotation,
		dedup:        dedupService,
		fetcher:      fetcher,
		sender:       sender,
		snapshots:    snapshots,
		publisher:    publisher,
	}
}

// ProcessDomains runs the batch on a bounded worker pool and returns one
// outcome per domain, in input order. It never aborts the whole batch.
func (s *pipelineService) ProcessDomains(ctx context.Context, domains []string, send bool) []dto.DomainOutcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PipelineService.ProcessDomains")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.domains", len(domains), "request.send", send)

	outcomes := make([]dto.DomainOutcome, len(domains))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.MaxWorkers)
	for i, domain := range domains {
		i, domain := i, domain
		group.Go(func() error {
			outcomes[i] = s.ProcessDomain(groupCtx, domain, send)
			return nil
		})
	}
	// workers never return errors, outcomes carry the failures
	_ = group.Wait()

	return outcomes
}

func (s *pipelineService) ProcessDomain(ctx context.Context, rawDomain string, send bool) dto.DomainOutcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PipelineService.ProcessDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	domain := utils.NormalizeDomain(rawDomain)
	tracing.TagDomain(span, domain)
	outcome := dto.DomainOutcome{Domain: domain}

	if domain == "" {
		outcome.Error = "empty domain"
		return outcome
	}

	// serialize concurrent work on the same domain
	unlock := s.dedup.Lock(domain)
	defer unlock()

	shouldProcess, err := s.dedup.ShouldProcess(ctx, domain, s.cfg.RescanAfter)
	if err != nil {
		tracing.TraceErr(span, err)
		outcome.Error = err.Error()
		return outcome
	}
	if !shouldProcess {
		outcome.Skipped = true
		outcome.SkipReason = "recently scanned"
		return outcome
	}

	body, headers, fetchErr := s.fetcher.Fetch(ctx, domain)
	if fetchErr != nil {
		// detection still runs on empty content, the attempt is recorded
		s.log.Warnf("fetch failed for %s: %v", domain, fetchErr)
	}

	detected := s.detector.Detect(body, headers)
	emails := s.extractor.Extract(body)
	scored := s.scorer.Score(detected)

	scan := &models.TechScan{
		Domain:             domain,
		Technologies:       toJSONArray(detected),
		ScoredTechnologies: toJSONArray(scored),
		Emails:             stringsToJSONArray(emails),
		TechNames:          techNames(detected),
	}
	if fetchErr != nil {
		scan.Error = fetchErr.Error()
	}
	if len(scored) > 0 {
		scan.TopTechnology = scored[0].Name
		scan.Category = scored[0].Category
		outcome.TopTechnology = scored[0].Name
	}

	generated, genSkipReason, genErr := s.generateOutreach(ctx, domain, scored, emails)
	if genErr != nil {
		tracing.TraceErr(span, genErr)
		scan.Error = genErr.Error()
	}
	if generated != nil {
		scan.GeneratedEmail = generated.AsJSONMap()
	}

	if err := s.repositories.TechScanRepository.Create(ctx, scan); err != nil {
		tracing.TraceErr(span, err)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.ScanID = scan.ID

	if err := s.dedup.Record(ctx, domain, scan.Category); err != nil {
		tracing.TraceErr(span, err)
		outcome.Error = err.Error()
		return outcome
	}

	s.archiveSnapshot(ctx, scan, body)

	if genErr != nil {
		outcome.Error = genErr.Error()
		return outcome
	}
	if generated == nil {
		outcome.Skipped = true
		outcome.SkipReason = genSkipReason
		return outcome
	}

	if !send {
		return outcome
	}

	if err := s.dispatch(ctx, scan, emails[0], generated); err != nil {
		tracing.TraceErr(span, err)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Emailed = true
	return outcome
}

// generateOutreach runs the emailed gate, persona/variant selection and
// template rendering. A nil email with a reason means outreach was skipped;
// an error means rendering or selection failed.
func (s *pipelineService) generateOutreach(ctx context.Context, domain string, scored []models.ScoredTechnology, emails []string) (*models.GeneratedEmail, string, error) {
	if len(scored) == 0 {
		return nil, "no technology signal", nil
	}
	if len(emails) == 0 {
		return nil, "no contact emails", nil
	}

	alreadyEmailed, err := s.repositories.TechScanRepository.WasEmailed(ctx, domain)
	if err != nil {
		return nil, "", err
	}
	if alreadyEmailed {
		return nil, "already emailed", nil
	}

	persona, err := s.rotation.SelectPersona()
	if err != nil {
		if errors.Is(err, techscan_errors.ErrNoPersonaAvailable) {
			return nil, "no persona available", nil
		}
		return nil, "", err
	}
	variant, err := s.rotation.SelectVariant(scored[0].Category)
	if err != nil {
		if errors.Is(err, techscan_errors.ErrNoVariantAvailable) {
			return nil, "no variant for category " + scored[0].Category.String(), nil
		}
		return nil, "", err
	}

	generated, err := s.generator.Render(domain, scored[0], scored[1:], persona, variant)
	if err != nil {
		return nil, "", err
	}
	return &generated, "", nil
}

// dispatch queues the send when a publisher is wired, otherwise delivers
// inline and records the outcome.
func (s *pipelineService) dispatch(ctx context.Context, scan *models.TechScan, to string, generated *models.GeneratedEmail) error {
	if s.publisher != nil {
		return s.publisher.PublishSendOutreachEvent(ctx, dto.SendOutreachEmail{
			ScanID: scan.ID,
			Domain: scan.Domain,
			To:     to,
			Email:  *generated,
		})
	}

	if _, err := s.sender.Send(ctx, to, generated); err != nil {
		return err
	}
	if err := s.repositories.TechScanRepository.MarkEmailed(ctx, scan.ID, generated.AsJSONMap()); err != nil {
		return err
	}
	return s.repositories.EmailStatRepository.IncrementSend(ctx, generated.VariantID, generated.PersonaID, generated.MainTech)
}

func (s *pipelineService) archiveSnapshot(ctx context.Context, scan *models.TechScan, body string) {
	if s.snapshots == nil || body == "" {
		return
	}

	key := storage.SnapshotKey(scan.Domain, scan.ID)
	if err := s.snapshots.Upload(ctx, key, []byte(body), "text/html"); err != nil {
		s.log.Warnf("snapshot upload failed for %s: %v", scan.Domain, err)
		return
	}
	if err := s.repositories.TechScanRepository.SetSnapshotKey(ctx, scan.ID, key); err != nil {
		s.log.Warnf("snapshot key update failed for %s: %v", scan.Domain, err)
	}
}

func toJSONArray(value interface{}) models.JSONArray {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	var out models.JSONArray
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func stringsToJSONArray(values []string) models.JSONArray {
	out := make(models.JSONArray, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func techNames(detected []models.DetectedTechnology) []string {
	names := make([]string, 0, len(detected))
	for _, tech := range detected {
		names = append(names, tech.Name)
	}
	return names
}
