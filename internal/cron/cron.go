package cron

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/leadscout/techscan/config"
	"github.com/leadscout/techscan/interfaces"
	cron_config "github.com/leadscout/techscan/internal/cron/config"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/tracing"
)

const (
	// GroupScanner serializes the scan batch with anything else touching
	// the outreach tables
	GroupScanner = "scanner"

	// LeaseDuration is how long a lease lasts before needing renewal
	LeaseDuration = 15 * time.Second
	// RenewDeadline is how long a leader has to renew its lease
	RenewDeadline = 10 * time.Second
	// RetryPeriod is how long to wait between leadership attempts
	RetryPeriod = 2 * time.Second
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupScanner: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg      *config.Config
	log      logger.Logger
	cron     *cronv3.Cron
	k8s      kubernetes.Interface
	stopCh   chan struct{}
	jobIDs   map[string]cronv3.EntryID
	pipeline interfaces.PipelineService
	calendly interfaces.CalendlyService
	health   interfaces.InboxHealthService
}

func NewCronManager(
	cfg *config.Config,
	log logger.Logger,
	k8s kubernetes.Interface,
	pipeline interfaces.PipelineService,
	calendly interfaces.CalendlyService,
	health interfaces.InboxHealthService,
) *CronManager {
	return &CronManager{
		cfg:      cfg,
		log:      log,
		k8s:      k8s,
		stopCh:   make(chan struct{}),
		jobIDs:   make(map[string]cronv3.EntryID),
		pipeline: pipeline,
		calendly: calendly,
		health:   health,
	}
}

// Start initializes and starts the cron manager with leader election
// If k8s is nil, it will start in local mode without leader election
func (cm *CronManager) Start(podName, namespace string) error {
	if cm.k8s == nil || os.Getenv("LOCAL_DEV") == "true" {
		cm.log.Info("Starting cron manager in local mode")
		cm.StartCron()
		return nil
	}

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Name:      "techscan-cron-leader",
			Namespace: namespace,
		},
		Client: cm.k8s.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: podName,
		},
	}

	errCh := make(chan error, 1)

	go func() {
		le, err := leaderelection.NewLeaderElector(leaderelection.LeaderElectionConfig{
			Lock:            lock,
			ReleaseOnCancel: true,
			LeaseDuration:   LeaseDuration,
			RenewDeadline:   RenewDeadline,
			RetryPeriod:     RetryPeriod,
			Callbacks: leaderelection.LeaderCallbacks{
				OnStartedLeading: func(ctx context.Context) {
					cm.StartCron()
				},
				OnStoppedLeading: func() {
					cm.log.Info("Leader lost - stopping crons")
					cm.Stop()
				},
				OnNewLeader: func(identity string) {
					cm.log.Infof("New leader elected: %s", identity)
				},
			},
		})
		if err != nil {
			errCh <- err
			return
		}

		ctx := context.Background()
		le.Run(ctx)
	}()

	// Wait briefly to see if leader election fails immediately
	select {
	case err := <-errCh:
		cm.log.Warnf("Leader election failed, falling back to local mode: %v", err)
		cm.StartCron()
	case <-time.After(5 * time.Second):
	}

	return nil
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleScanBatch != "" && cm.pipeline != nil {
		id, err := c.AddFunc(cronConfig.CronScheduleScanBatch, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupScanner].Lock()
			defer jobLocks.locks[GroupScanner].Unlock()
			cm.runScanBatch()
		})
		if err != nil {
			cm.log.Fatalf("Could not add scan batch cron job: %v", err)
		}
		cm.jobIDs["scan_batch"] = id
		cm.log.Infof("Registered scan batch job with schedule: %s", cronConfig.CronScheduleScanBatch)
	}

	if cronConfig.CronScheduleCalendlySync != "" && cm.calendly != nil {
		id, err := c.AddFunc(cronConfig.CronScheduleCalendlySync, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.runCalendlySync()
		})
		if err != nil {
			cm.log.Fatalf("Could not add calendly sync cron job: %v", err)
		}
		cm.jobIDs["calendly_sync"] = id
		cm.log.Infof("Registered calendly sync job with schedule: %s", cronConfig.CronScheduleCalendlySync)
	}

	if cronConfig.CronScheduleInboxHealth != "" && cm.health != nil {
		id, err := c.AddFunc(cronConfig.CronScheduleInboxHealth, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.runInboxHealthCheck()
		})
		if err != nil {
			cm.log.Fatalf("Could not add inbox health cron job: %v", err)
		}
		cm.jobIDs["inbox_health"] = id
		cm.log.Infof("Registered inbox health job with schedule: %s", cronConfig.CronScheduleInboxHealth)
	}
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

func (cm *CronManager) runScanBatch() {
	cm.log.Info("Running scheduled scan batch")

	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runScanBatch")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	domainsFile := cm.cfg.ScannerConfig.DomainsFile
	if domainsFile == "" {
		cm.log.Info("No domains file configured, skipping scan batch")
		return
	}

	domains, err := ReadDomainsFile(domainsFile)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to read domains file %s: %v", domainsFile, err)
		return
	}
	if len(domains) == 0 {
		cm.log.Infof("Domains file %s is empty, nothing to scan", domainsFile)
		return
	}

	outcomes := cm.pipeline.ProcessDomains(ctx, domains, true)

	emailed, skipped, failed := 0, 0, 0
	for _, outcome := range outcomes {
		switch {
		case outcome.Error != "":
			failed++
		case outcome.Skipped:
			skipped++
		case outcome.Emailed:
			emailed++
		}
	}
	span.LogKV("result.emailed", emailed, "result.skipped", skipped, "result.failed", failed)
	cm.log.Infof("Scan batch finished: %d domains, %d emailed, %d skipped, %d failed",
		len(outcomes), emailed, skipped, failed)
}

func (cm *CronManager) runCalendlySync() {
	cm.log.Info("Running calendly booking sync")

	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runCalendlySync")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	stats, err := cm.calendly.Sync(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to sync calendly bookings: %v", err)
		return
	}
	cm.log.Infof("Calendly sync finished: %d events, %d bookings, %d leads matched",
		stats.EventsProcessed, stats.BookingsFound, stats.LeadsMatched)
}

func (cm *CronManager) runInboxHealthCheck() {
	cm.log.Info("Running inbox health check")

	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runInboxHealthCheck")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	if err := cm.health.CheckInboxHealth(ctx); err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Failed to check inbox health: %v", err)
	}
}

// ReadDomainsFile loads one domain per line, skipping blanks and # comments.
func ReadDomainsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var domains []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	return domains, scanner.Err()
}
