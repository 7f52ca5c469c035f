package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/leadscout/techscan/config"
	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/models"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/services/calendly"
	"github.com/leadscout/techscan/services/catalog"
	"github.com/leadscout/techscan/services/dedup"
	"github.com/leadscout/techscan/services/detector"
	"github.com/leadscout/techscan/services/events"
	"github.com/leadscout/techscan/services/extractor"
	"github.com/leadscout/techscan/services/fetcher"
	"github.com/leadscout/techscan/services/health"
	"github.com/leadscout/techscan/services/outreach"
	"github.com/leadscout/techscan/services/pipeline"
	"github.com/leadscout/techscan/services/scorer"
	"github.com/leadscout/techscan/services/smtp"
	"github.com/leadscout/techscan/services/storage"
)

type Services struct {
	Catalog       *catalog.Catalog
	Rotation      *outreach.RotationState
	EventsService *events.EventsService

	PipelineService    interfaces.PipelineService
	SenderService      interfaces.SenderService
	CalendlyService    interfaces.CalendlyService
	InboxHealthService interfaces.InboxHealthService
	StorageService     interfaces.StorageService
}

// InitServices wires the full service graph from configuration. Optional
// collaborators (rabbitmq, object storage, calendly) stay nil when not
// configured; the pipeline degrades to inline behavior.
func InitServices(ctx context.Context, cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	cat, err := loadCatalog(cfg.ScannerConfig)
	if err != nil {
		return nil, err
	}

	multipliers, err := cfg.ScannerConfig.Multipliers()
	if err != nil {
		return nil, err
	}

	personas, variants, err := loadRoster(cfg.OutreachConfig)
	if err != nil {
		return nil, err
	}
	rotation := outreach.NewRotationState(personas, variants, cfg.OutreachConfig.RotationWindow)
	if err := seedRotation(ctx, rotation, repos); err != nil {
		return nil, err
	}

	inboxes, err := smtp.ParseInboxes(cfg.SmtpConfig.Accounts)
	if err != nil {
		return nil, err
	}
	sender := smtp.NewSmtpSender(log, inboxes, cfg.SmtpConfig.SendEnabled)

	services := &Services{
		Catalog:            cat,
		Rotation:           rotation,
		SenderService:      sender,
		InboxHealthService: health.NewInboxHealthService(log, inboxes),
	}

	if cfg.SnapshotConfig.Enabled {
		services.StorageService, err = initSnapshotStorage(cfg.SnapshotConfig)
		if err != nil {
			return nil, err
		}
	}

	if cfg.AppConfig.RabbitMQURL != "" {
		services.EventsService, err = events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, &events.PublisherConfig{
			MessageTTL:          events.DefaultMessageTTL,
			MaxRetries:          events.DefaultMaxRetries,
			PublishTimeout:      events.DefaultPublishTimeout,
			ReconnectBackoff:    events.DefaultReconnectBackoff,
			MaxReconnectBackoff: events.DefaultMaxReconnectBackoff,
		})
		if err != nil {
			return nil, err
		}
	}

	if cfg.CalendlyConfig.APIToken != "" {
		services.CalendlyService = calendly.NewCalendlyService(
			log,
			calendly.NewClient(cfg.CalendlyConfig.APIToken),
			repos,
			cfg.CalendlyConfig.Lookback(),
		)
	}

	var publisher *events.RabbitMQPublisher
	if services.EventsService != nil {
		publisher = services.EventsService.Publisher
	}

	services.PipelineService = pipeline.NewPipelineService(
		log,
		pipeline.Config{
			MaxWorkers:  cfg.ScannerConfig.MaxWorkers,
			RescanAfter: cfg.ScannerConfig.RescanAfter(),
		},
		repos,
		detector.NewDetectorService(cat),
		extractor.NewExtractorService(),
		scorer.NewScorerService(cat, multipliers),
		outreach.NewGeneratorService(cat, cfg.OutreachConfig.MaxSupportingTechs),
		rotation,
		dedup.NewDedupService(repos.DomainSeenRepository),
		fetcher.NewHttpFetcher(cfg.ScannerConfig.FetchTimeout()),
		sender,
		services.StorageService,
		publisher,
	)

	return services, nil
}

func (s *Services) Close() error {
	if s.EventsService != nil {
		return s.EventsService.Close()
	}
	return nil
}

func loadCatalog(cfg *config.ScannerConfig) (*catalog.Catalog, error) {
	if cfg.CatalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFromFile(cfg.CatalogFile)
}

func loadRoster(cfg *config.OutreachConfig) ([]models.Persona, []models.MessageVariant, error) {
	personas := outreach.DefaultPersonas()
	if cfg.Personas != "" {
		parsed, err := outreach.ParsePersonas(cfg.Personas)
		if err != nil {
			return nil, nil, err
		}
		personas = parsed
	}

	variants := outreach.DefaultVariants()
	if cfg.Variants != "" {
		parsed, err := outreach.ParseVariants(cfg.Variants)
		if err != nil {
			return nil, nil, err
		}
		variants = parsed
	}

	return personas, variants, nil
}

// seedRotation loads historical send counts so fairness survives restarts.
func seedRotation(ctx context.Context, rotation *outreach.RotationState, repos *repository.Repositories) error {
	stats, err := repos.EmailStatRepository.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot seed rotation state")
	}
	counts := make(map[string]int)
	for _, stat := range stats {
		counts[stat.VariantID] += stat.SendCount
	}
	rotation.SeedUsage(counts)
	return nil
}

func initSnapshotStorage(cfg *config.SnapshotConfig) (interfaces.StorageService, error) {
	switch cfg.Provider {
	case "r2":
		if cfg.R2AccountID == "" {
			return nil, errors.New("snapshots enabled but CLOUDFLARE_R2_ACCOUNT_ID is empty")
		}
		return storage.NewR2StorageService(cfg.R2AccountID, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket), nil
	case "s3":
		return storage.NewS3StorageService(cfg.AWSRegion, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.Bucket), nil
	default:
		return nil, errors.Errorf("unknown snapshot storage provider: %s", cfg.Provider)
	}
}
