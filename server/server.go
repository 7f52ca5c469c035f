package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"gorm.io/gorm"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/leadscout/techscan/api"
	"github.com/leadscout/techscan/config"
	"github.com/leadscout/techscan/internal/cron"
	"github.com/leadscout/techscan/internal/listeners"
	"github.com/leadscout/techscan/internal/logger"
	"github.com/leadscout/techscan/internal/repository"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/services"
	"github.com/leadscout/techscan/services/events"
)

type Server struct {
	config       *config.Config
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	repositories *repository.Repositories
	cronManager  *cron.CronManager
	subscriber   *events.RabbitMQSubscriber
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config, db *gorm.DB) (*Server, error) {
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	repos := repository.InitRepositories(db)

	svcs, err := services.InitServices(context.Background(), cfg, appLogger, repos)
	if err != nil {
		return nil, err
	}

	var subscriber *events.RabbitMQSubscriber
	if cfg.AppConfig.RabbitMQURL != "" {
		subscriber, err = events.NewRabbitMQSubscriber(cfg.AppConfig.RabbitMQURL, appLogger, nil)
		if err != nil {
			return nil, err
		}
		subscriber.RegisterListener(listeners.NewSendOutreachListener(appLogger, repos, svcs.SenderService))
	}

	cronManager := cron.NewCronManager(
		cfg,
		appLogger,
		kubernetesClient(appLogger),
		svcs.PipelineService,
		svcs.CalendlyService,
		svcs.InboxHealthService,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	return &Server{
		config:       cfg,
		router:       router,
		services:     svcs,
		repositories: repos,
		cronManager:  cronManager,
		subscriber:   subscriber,
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

// kubernetesClient returns an in-cluster client when one is available. A nil
// client puts the cron manager in local mode.
func kubernetesClient(log logger.Logger) kubernetes.Interface {
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		log.Infof("No in-cluster kubernetes config, cron runs in local mode: %v", err)
		return nil
	}
	client, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		log.Warnf("Failed to build kubernetes client, cron runs in local mode: %v", err)
		return nil
	}
	return client
}

func (s *Server) Initialize(ctx context.Context) error {
	if s.subscriber != nil {
		log.Println("Starting outreach queue consumer...")
		if err := s.subscriber.ListenQueue(events.QueueSendOutreach); err != nil {
			return err
		}
	}

	api.RegisterRoutes(ctx, s.router, s.services, s.repositories, s.config.AppConfig.APIKey)

	return nil
}

func (s *Server) recoverWithJaeger(name string) {
	if r := recover(); r != nil {
		span := opentracing.GlobalTracer().StartSpan(
			fmt.Sprintf("panic.%s", name),
		)
		defer span.Finish()

		ext.Error.Set(span, true)

		span.LogKV(
			"event", "panic",
			"process", name,
			"error", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)

		log.Printf("❌ Panic in %s: %v\n%s", name, r, debug.Stack())
	}
}

func (s *Server) wrapGoroutine(name string, fn func()) {
	defer s.recoverWithJaeger(name)
	fn()
}

func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	log.Println("Starting cron manager...")
	podName := os.Getenv("POD_NAME")
	namespace := os.Getenv("POD_NAMESPACE")
	if namespace == "" {
		namespace = "default"
	}
	if err := s.cronManager.Start(podName, namespace); err != nil {
		return err
	}
	log.Println("✅ Cron manager started successfully")

	go s.wrapGoroutine("http_server", func() {
		log.Println("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ HTTP server error: %v", err)
		}
	})
	log.Println("✅ HTTP server started successfully")
	log.Println("TechScan is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	defer s.recoverWithJaeger("shutdown")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ HTTP server shutdown error: %v", err)
	} else {
		log.Println("✅ HTTP server shut down successfully")
	}

	log.Println("Stopping cron manager...")
	stopDone := make(chan struct{})
	go s.wrapGoroutine("cron_shutdown", func() {
		defer close(stopDone)
		s.cronManager.Stop()
	})

	select {
	case <-stopDone:
		log.Println("Cron manager stopped gracefully")
	case <-time.After(10 * time.Second):
		log.Println("⚠️ Cron manager stop timed out, forcing exit")
	}

	if s.subscriber != nil {
		if err := s.subscriber.Close(); err != nil {
			log.Printf("❌ Queue consumer shutdown error: %v", err)
		}
	}
	if err := s.services.Close(); err != nil {
		log.Printf("❌ Services shutdown error: %v", err)
	}

	return nil
}
