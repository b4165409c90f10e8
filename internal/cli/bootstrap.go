package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-DetailingBooking/internal/config"
	"github.com/m04kA/SMC-DetailingBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/memory"
	slotRepo "github.com/m04kA/SMC-DetailingBooking/internal/infra/storage/slot"
	"github.com/m04kA/SMC-DetailingBooking/internal/integrations/notifier"
	"github.com/m04kA/SMC-DetailingBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-DetailingBooking/pkg/logger"
	"github.com/m04kA/SMC-DetailingBooking/pkg/metrics"
	"github.com/m04kA/SMC-DetailingBooking/pkg/txmanager"
	"github.com/m04kA/SMC-DetailingBooking/pkg/types"
)

type appointmentStore interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.AppointmentStatus) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) (*domain.Appointment, error)
}

type slotStore interface {
	Reserve(ctx context.Context, key domain.SlotKey, capacity int) (int, error)
	Release(ctx context.Context, key domain.SlotKey) error
	GetBookedCounts(ctx context.Context, date time.Time) (map[types.TimeString]int, error)
}

type transactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.AppointmentEvent) error
	Close() error
}

// storage репозитории и менеджер транзакций выбранного драйвера
type storage struct {
	appointments appointmentStore
	slots        slotStore
	txManager    transactionManager
	ping         func(ctx context.Context) error
	close        func()
}

// openDatabase открывает пул соединений PostgreSQL и проверяет его
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)
	return db, nil
}

// openStorage собирает хранилище по storage.driver.
// Для postgres все запросы идут через dbmetrics обёртку, при выключенных метриках она прозрачна.
func openStorage(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &storage{
			appointments: store,
			slots:        store,
			txManager:    store,
			ping:         store.Ping,
			close:        func() {},
		}, nil
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	stopStatsCh := make(chan struct{})
	wrapped := dbmetrics.WrapWithDefault(db, m, cfg.Metrics.ServiceName, stopStatsCh)
	if m != nil {
		log.Info("Database metrics collection started")
	}

	return &storage{
		appointments: appointmentRepo.NewRepository(wrapped),
		slots:        slotRepo.NewRepository(wrapped),
		txManager:    txmanager.NewTransactionManager(wrapped),
		ping:         wrapped.PingContext,
		close: func() {
			close(stopStatsCh)
			_ = db.Close()
		},
	}, nil
}

// newSchedule строит расписание из секции schedule
func newSchedule(cfg config.ScheduleConfig) (*domain.Schedule, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.TimeZone, err)
	}

	return domain.NewSchedule(
		cfg.SlotTimes,
		cfg.Capacity,
		loc,
		cfg.AdvanceBookingDays,
		cfg.MinBookingNoticeMinutes,
		cfg.ClosedDates,
	)
}

// newPublisher Kafka publisher или no-op, если события выключены
func newPublisher(cfg config.EventsConfig, log *logger.Logger) eventPublisher {
	if !cfg.Enabled {
		log.Info("Appointment events disabled")
		return notifier.NoopPublisher{}
	}

	log.Info("Appointment events enabled (brokers=%s, topic=%s)", cfg.Brokers, cfg.Topic)
	return notifier.NewKafkaPublisher(cfg.Brokers, cfg.Topic, log)
}

// newRedis клиент Redis для общего rate limit, nil если выключен
func newRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis ping failed (addr=%s): %v", cfg.Addr, err)
	} else {
		log.Info("Connected to Redis (addr=%s)", cfg.Addr)
	}

	return rdb
}

func loadConfigAndLogger(configPath string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, log, nil
}
