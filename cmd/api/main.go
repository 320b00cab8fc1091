package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/queue-service/internal/api/http"
	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/events"
	"github.com/spec-kit/queue-service/internal/notifier"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/persistence"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/repository/memory"
	"github.com/spec-kit/queue-service/internal/service"
	"github.com/spec-kit/queue-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketStore   repository.TicketStore
		sequenceStore repository.SequenceStore
		serviceStore  repository.ServiceStore
	)
	if pool := pg.PoolHandle(); pool != nil {
		ticketStore = repository.NewTicketRepository(pool)
		sequenceStore = repository.NewSequenceRepository(pool)
		serviceStore = repository.NewServiceRepository(pool)
	} else {
		mem := memory.NewStore()
		ticketStore = mem
		sequenceStore = mem
		serviceStore = mem.Services()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	registerMetricsHandlers(dispatcher, metrics)

	allocator := service.NewSequenceAllocator(sequenceStore, cfg.Queue.AllocMaxRetries)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketStore:  ticketStore,
		ServiceStore: serviceStore,
		Allocator:    allocator,
		Dispatcher:   dispatcher,
	})
	registryService := service.NewRegistryService(serviceStore)

	var publishers []notifier.Publisher
	if cfg.Redis.Publish {
		publishers = append(publishers, notifier.NewRedisNotifier(redis.Client, logger))
	}
	if cfg.AMQP.Publish {
		amqpNotifier, err := notifier.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Queue, logger)
		if err != nil {
			logger.Warn("unable to reach rabbitmq; updates will not be queued", zap.Error(err))
		} else {
			defer amqpNotifier.Close() //nolint:errcheck
			publishers = append(publishers, amqpNotifier)
		}
	}
	notificationService := service.NewNotificationService(dispatcher, publishers, logger)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	checks := map[string]handlers.ReadinessCheck{
		"redis": redis.Ping,
	}
	if pool := pg.PoolHandle(); pool != nil {
		checks["postgres"] = pool.Ping
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(checks),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Operator: handlers.NewOperatorHandler(ticketService),
		Services: handlers.NewServicesHandler(registryService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// registerMetricsHandlers counts ticket operations per service off the
// event stream.
func registerMetricsHandlers(dispatcher events.Dispatcher, metrics *observability.Metrics) {
	dispatcher.Subscribe(events.EventTicketIssued, func(ctx context.Context, event events.Event) error {
		metrics.RecordTicketOp("issued", event.ServiceID)
		return nil
	})
	dispatcher.Subscribe(events.EventTicketStatusChanged, func(ctx context.Context, event events.Event) error {
		metrics.RecordTicketOp(strings.ToLower(string(event.Status)), event.ServiceID)
		return nil
	})
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
