package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"example.com/roster/internal/api"
	"example.com/roster/internal/catalog"
	"example.com/roster/internal/config"
	"example.com/roster/internal/domain"
	"example.com/roster/internal/observability"
	"example.com/roster/internal/outbox"
	httptransport "example.com/roster/internal/transport/http"
	"example.com/roster/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	logger, err := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("invalid logging configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := catalog.Load(cfg.SeedPath)
	if err != nil {
		logger.WithError(err).WithField("path", cfg.SeedPath).Fatal("failed to load seed catalog")
	}
	roster := cat.Roster(domain.WithCapacityLimit(cfg.EnforceCapacity))

	serviceOpts := []domain.Option{domain.WithLogger(logger)}

	var events *eventPipeline
	if cfg.EventsEnabled() {
		events = startEventPipeline(ctx, cfg, logger)
		serviceOpts = append(serviceOpts, domain.WithPublisher(events.queue))
	} else {
		logger.Info("KAFKA_BROKERS not set, roster events disabled")
	}

	service := domain.NewService(roster, serviceOpts...)
	if err := service.RecordParticipants(ctx); err != nil {
		logger.WithError(err).Warn("failed to record initial participant counts")
	}

	files, err := web.Files(cfg.StaticDir)
	if err != nil {
		logger.WithError(err).Fatal("failed to open static files")
	}

	router := mux.NewRouter()
	router.Use(httptransport.Metrics())
	api.NewHandler(service, logger).RegisterRoutes(router)
	router.PathPrefix(web.Prefix).Handler(web.Handler(files)).Methods(http.MethodGet, http.MethodHead)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := httptransport.NewServer(
		httptransport.DefaultServerConfig(cfg.HTTPAddress),
		httptransport.Chain(router,
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.CORSAllowedOrigin),
		),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithField("address", cfg.HTTPAddress).Info("roster service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	<-shutdownCh
	logger.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}

	// Stop the event pipeline after the server so in-flight requests can still publish.
	cancel()
	if events != nil {
		events.stop(logger)
	}
}

type eventPipeline struct {
	queue      *outbox.Queue
	dispatcher *outbox.Dispatcher
	producer   *outbox.KafkaProducer
}

func startEventPipeline(ctx context.Context, cfg config.Config, logger *logrus.Logger) *eventPipeline {
	dead := outbox.NewDeadLetters(cfg.OutboxMaxPending, cfg.DLQBaseDelay)
	queue := outbox.NewQueue(cfg.EventsTopic, cfg.OutboxMaxPending, dead)
	producer := outbox.NewKafkaProducer(outbox.ProducerConfig{Brokers: cfg.KafkaBrokers})

	var registry outbox.SchemaRegistrar = outbox.StaticRegistry{}
	if cfg.SchemaRegistryURL != "" {
		registry = outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	}

	dispatcher := outbox.NewDispatcher(queue, producer, registry, dead, outbox.DispatcherConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
	}, logger.WithField("component", "outbox"))
	go dispatcher.Start(ctx)

	manager := outbox.NewDLQManager(dead, queue, cfg.DLQMaxRetries, logger.WithField("component", "dlq"))
	go manager.Start(ctx, cfg.DLQPollInterval, cfg.OutboxBatchSize)

	logger.WithFields(logrus.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.EventsTopic,
	}).Info("roster events enabled")

	return &eventPipeline{queue: queue, dispatcher: dispatcher, producer: producer}
}

func (p *eventPipeline) stop(logger logrus.FieldLogger) {
	p.dispatcher.Wait()
	if err := p.producer.Close(); err != nil {
		logger.WithError(err).Warn("kafka producer close failed")
	}
}
