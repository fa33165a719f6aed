package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/handler"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/pdf"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/repository"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/service"

	"github.com/FACorreiaa/pesa-insights/pkg/config"
	"github.com/FACorreiaa/pesa-insights/pkg/cron"
	"github.com/FACorreiaa/pesa-insights/pkg/db"
	"github.com/FACorreiaa/pesa-insights/pkg/interceptors"
	"github.com/FACorreiaa/pesa-insights/pkg/metrics"
	"github.com/FACorreiaa/pesa-insights/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	StatementRepo repository.StatementRepository

	// Services
	FileStorage      storage.Storage
	Parser           *parser.Parser
	StatementService *service.StatementService
	Scheduler        *cron.Scheduler

	// Handlers
	StatementHandler *handler.StatementHandler
	Router           http.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	// Initialize database
	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(ctx, db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	d.StatementRepo = repository.NewPostgresStatementRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	fileStorage, err := storage.NewLocalStorage(d.Config.Storage.Root)
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	// Hint capability is resolved once here and injected
	d.Parser = parser.New(pdf.NewLoader(), d.Logger).
		WithHintDecoder(pdf.NewHintDecoder(d.Config.Statement.QRHintsEnabled, d.Logger))

	d.StatementService = service.NewStatementService(d.StatementRepo, d.FileStorage, d.Parser, d.Logger).
		WithObserver(d.Metrics)

	d.Scheduler = cron.NewScheduler(
		d.StatementService,
		d.Config.Statement.PurgeCron,
		d.Config.Statement.Retention(),
		d.Logger,
	)

	d.Logger.Info("services initialized",
		slog.Bool("qr_hints", d.Parser.HintsEnabled()),
		slog.Int("retention_days", d.Config.Statement.RetentionDays),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.StatementHandler = handler.NewStatementHandler(d.StatementService, d.Config.Statement.MaxUploadBytes(), d.Logger)

	d.Router = handler.NewRouter(handler.RouterConfig{
		Handler:        d.StatementHandler,
		UploadLimiter:  interceptors.NewRateLimiter(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst),
		AdminToken:     d.Config.Admin.Token,
		AllowedOrigins: splitOrigins(d.Config.Server.AllowedOrigins),
		Logger:         d.Logger,
	})

	d.Logger.Info("handlers initialized")
	return nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
