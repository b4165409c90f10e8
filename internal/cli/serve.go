package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-DetailingBooking/internal/api"
	cancelAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/get_available_slots"
	getScheduleHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/get_schedule"
	healthHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/health"
	listAppointmentsHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/list_appointments"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-DetailingBooking/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-DetailingBooking/internal/api/middleware"
	"github.com/m04kA/SMC-DetailingBooking/internal/config"
	"github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/migrations"
	appointmentsService "github.com/m04kA/SMC-DetailingBooking/internal/service/appointments"
	scheduleService "github.com/m04kA/SMC-DetailingBooking/internal/service/schedule"
	createAppointmentUC "github.com/m04kA/SMC-DetailingBooking/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-DetailingBooking/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
	"github.com/m04kA/SMC-DetailingBooking/pkg/metrics"
	"github.com/m04kA/SMC-DetailingBooking/pkg/tracing"
)

const rateLimitPrefix = "detailing:rl:appointments"

func newServeCmd(configPath *string) *cobra.Command {
	var migrateOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfigAndLogger(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()

			return serve(cmd.Context(), cfg, log, migrateOnStart)
		},
	}

	cmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "применить миграции перед запуском")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger, migrateOnStart bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Info("Starting SMC-DetailingBooking...")
	log.Info("Configuration loaded (storage=%s, capacity=%d, time_zone=%s)",
		cfg.Storage.Driver, cfg.Schedule.Capacity, cfg.Schedule.TimeZone)

	// Метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Трейсинг
	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("Tracing shutdown error: %v", err)
		}
	}()

	schedule, err := newSchedule(cfg.Schedule)
	if err != nil {
		return fmt.Errorf("build schedule: %w", err)
	}

	// Хранилище
	store, err := openStorage(ctx, cfg, metricsCollector, log)
	if err != nil {
		return err
	}
	defer store.close()

	if migrateOnStart && cfg.Storage.Driver == config.StorageDriverPostgres {
		if err := runMigrations(ctx, cfg, log); err != nil {
			return err
		}
	}

	publisher := newPublisher(cfg.Events, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("Event publisher close error: %v", err)
		}
	}()

	rdb := newRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	storeTimeout := cfg.Storage.StoreTimeoutDuration()

	// Сервисы и use cases
	appointmentsSvc := appointmentsService.NewService(
		store.appointments,
		store.slots,
		store.txManager,
		publisher,
		storeTimeout,
		log,
	)
	scheduleSvc := scheduleService.NewService(schedule, log)

	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		store.appointments,
		store.slots,
		store.txManager,
		publisher,
		metricsCollector,
		schedule,
		storeTimeout,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.slots,
		schedule,
		storeTimeout,
		log,
	)

	// Обработчики
	health := healthHandler.NewHandler(log).WithCheck("storage", store.ping)
	if rdb != nil {
		health.WithCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	handlers := api.Handlers{
		GetAvailableSlots:       getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log),
		CreateAppointment:       createAppointmentHandler.NewHandler(createAppointmentUseCase, log),
		ListAppointments:        listAppointmentsHandler.NewHandler(appointmentsSvc, log),
		GetAppointment:          getAppointmentHandler.NewHandler(appointmentsSvc, log),
		UpdateAppointmentStatus: updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log),
		CancelAppointment:       cancelAppointmentHandler.NewHandler(appointmentsSvc, log),
		DeleteAppointment:       deleteAppointmentHandler.NewHandler(appointmentsSvc, log),
		GetSchedule:             getScheduleHandler.NewHandler(scheduleSvc, log),
		Health:                  health,
	}

	opts := api.Options{
		Metrics:         metricsCollector,
		MetricsPath:     cfg.Metrics.Path,
		ServiceName:     cfg.Metrics.ServiceName,
		AdminTokenHash:  cfg.Admin.TokenHash,
		LimiterFailOpen: cfg.RateLimit.FailOpen,
		TrustProxy:      cfg.RateLimit.TrustProxy,
	}
	if cfg.RateLimit.Enabled {
		window := time.Duration(cfg.RateLimit.Window) * time.Second
		if rdb != nil {
			opts.Limiter = middleware.NewRedisLimiter(rdb, cfg.RateLimit.Requests, window, rateLimitPrefix)
		} else {
			opts.Limiter = middleware.NewLocalLimiter(cfg.RateLimit.Requests, window)
		}
	}

	var handler http.Handler = api.NewRouter(handlers, opts, log)
	if cfg.Tracing.Enabled {
		handler = otelhttp.NewHandler(handler, cfg.Metrics.ServiceName)
		log.Info("HTTP tracing enabled (endpoint=%s)", cfg.Tracing.OTLPEndpoint)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on port %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Info("Received signal %v, shutting down...", sig)
	case err, ok := <-serverErr:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Context cancelled, shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

func runMigrations(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Up(ctx, db, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
