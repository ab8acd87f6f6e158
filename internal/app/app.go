package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/aidar/project-tracker/internal/config"
	"github.com/aidar/project-tracker/internal/logging"
	"github.com/aidar/project-tracker/internal/notify"
	"github.com/aidar/project-tracker/internal/repository"
	"github.com/aidar/project-tracker/internal/repository/memory"
	"github.com/aidar/project-tracker/internal/repository/postgres"
	"github.com/aidar/project-tracker/internal/service"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config   *config.Config
	db       *pgxpool.Pool
	redis    *redis.Client
	server   *http.Server
	logger   *slog.Logger
	reminder *notify.Reminder

	stopReminder context.CancelFunc
	reminderWG   sync.WaitGroup
}

// Repositories объединяет репозитории одного хранилища
type Repositories struct {
	Users    repository.UserRepository
	Projects repository.ProjectRepository
	Tasks    repository.TaskRepository
	Stats    repository.StatsRepository
}

// PostgresRepositories создает репозитории поверх пула PostgreSQL
func PostgresRepositories(db *pgxpool.Pool) Repositories {
	return Repositories{
		Users:    postgres.NewUserRepository(db),
		Projects: postgres.NewProjectRepository(db),
		Tasks:    postgres.NewTaskRepository(db),
		Stats:    postgres.NewStatsRepository(db),
	}
}

// MemoryRepositories создает репозитории в памяти процесса
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Users:    store.Users(),
		Projects: store.Projects(),
		Tasks:    store.Tasks(),
		Stats:    store.Stats(),
	}
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер (JSON формат, секреты маскируются)
	logger := logging.New(cfg.Log.Level, os.Stdout)
	slog.SetDefault(logger)

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	var repos Repositories
	switch a.config.Storage.Driver {
	case config.StorageDriverMemory:
		repos = MemoryRepositories(memory.NewStore())
		a.logger.Warn("Using in-memory storage, data is lost on restart")
	default:
		// Подключаемся к базе данных
		if err := a.connectDB(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		repos = PostgresRepositories(a.db)
	}

	if a.config.Redis.Enabled() {
		if err := a.connectRedis(ctx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	var revocations service.RevocationStore = service.NewMemoryRevocationStore()
	if a.redis != nil {
		revocations = service.NewRedisRevocationStore(a.redis)
	}

	services := NewServices(repos, revocations, a.config.JWT.Secret, a.config.JWT.GetExpiration())

	// Настраиваем HTTP сервер и роутинг
	a.setupServer(services)

	if a.config.Reminder.Enabled {
		a.setupReminder(repos.Tasks)
	}

	a.logger.Info("Application initialized successfully")
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// connectRedis подключается к Redis (отзыв токенов, дедупликация и очередь напоминаний)
func (a *App) connectRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     a.config.Redis.Addr,
		Password: a.config.Redis.Password,
		DB:       a.config.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	a.redis = client
	a.logger.Info("Connected to redis", "addr", a.config.Redis.Addr)
	return nil
}

// setupServer создает HTTP сервер
func (a *App) setupServer(services *Services) {
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      NewRouter(services, a.logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// setupReminder собирает рассылку напоминаний согласно настройкам
func (a *App) setupReminder(tasks notify.TaskSource) {
	cfg := a.config

	var sender notify.Sender
	switch cfg.Reminder.Sender {
	case config.SenderSMTP:
		sender = notify.NewBreakerSender(
			notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.Reminder.From),
			notify.BreakerSettings{MaxFailures: cfg.Breaker.MaxFailures, OpenTimeout: cfg.Breaker.OpenTimeout},
			a.logger,
		)
	case config.SenderOutbox:
		sender = notify.NewOutboxSender(a.redis, cfg.Reminder.OutboxKey)
	default:
		sender = notify.NewLogSender(a.logger)
	}

	var deduper notify.Deduper
	if a.redis != nil {
		deduper = notify.NewRedisDeduper(a.redis, cfg.Reminder.DedupTTL)
	}

	a.reminder = notify.NewReminder(tasks, sender, deduper, a.logger)
	a.logger.Info("Reminders configured", "sender", cfg.Reminder.Sender, "interval", cfg.Reminder.Interval)
}

// Run запускает рассылку напоминаний и HTTP сервер
func (a *App) Run() error {
	if a.reminder != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopReminder = cancel
		a.reminderWG.Add(1)
		go func() {
			defer a.reminderWG.Done()
			a.reminder.Run(ctx, a.config.Reminder.Interval)
		}()
	}

	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Останавливаем напоминания до закрытия хранилищ
	if a.stopReminder != nil {
		a.stopReminder()
		a.reminderWG.Wait()
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("Failed to close redis client", "error", err)
		}
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
