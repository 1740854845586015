// Package app содержит фабрику компонентов приложения.
package app

import (
	"context"
	"fmt"
	"os"
	"skillshub/internal/config"
	"skillshub/internal/external/skills"
	"skillshub/internal/infrastructure/health"
	"skillshub/internal/infrastructure/metrics"
	"skillshub/internal/model"
	"skillshub/internal/service"
	"skillshub/internal/storage"
	"skillshub/internal/storage/filestore"

	"go.uber.org/zap"
)

// Storage выбранный бэкенд хранения
type Storage struct {
	Backend     string
	Config      service.ConfigStore
	CustomTools service.CustomToolStore
	// Results есть только у postgres
	Results model.UpdateCheckRepository
	Ping    health.ComponentCheck
	Closer  service.Closer
}

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(config *config.Config, logger *zap.Logger) *ComponentFactory {
	if logger == nil {
		panic("Logger cannot be nil")
	}
	if config == nil {
		logger.Fatal("Config cannot be nil")
	}

	return &ComponentFactory{
		config: config,
		logger: logger,
	}
}

// CreateAppDataDirectory создает директорию данных приложения
func (f *ComponentFactory) CreateAppDataDirectory() error {
	dataDir := f.config.AppDataDir
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		f.logger.Error("Failed to create app data directory", zap.String("dir", dataDir), zap.Error(err))
		return fmt.Errorf("failed to create app data directory: %w", err)
	}
	f.logger.Info("App data directory ready", zap.String("dir", dataDir))
	return nil
}

// CreateStorage создает хранилище выбранного типа
func (f *ComponentFactory) CreateStorage(ctx context.Context) (*Storage, error) {
	switch f.config.StorageBackend {
	case config.StoragePostgres:
		return f.createPostgresStorage(ctx)
	case config.StorageFile:
		return f.createFileStorage()
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", f.config.StorageBackend)
	}
}

func (f *ComponentFactory) createFileStorage() (*Storage, error) {
	store, err := filestore.New(f.config.AppDataDir, f.logger.Named("filestore"))
	if err != nil {
		return nil, fmt.Errorf("failed to create file storage: %w", err)
	}

	f.logger.Info("File storage created successfully", zap.String("dir", f.config.AppDataDir))
	return &Storage{
		Backend:     config.StorageFile,
		Config:      store,
		CustomTools: store,
		Ping:        store.Ping,
	}, nil
}

func (f *ComponentFactory) createPostgresStorage(ctx context.Context) (*Storage, error) {
	if f.config.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := storage.NewPostgres(f.config.DatabaseURL, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	f.logger.Info("Database connection created successfully")
	return &Storage{
		Backend:     config.StoragePostgres,
		Config:      db.GetConfigRepository(),
		CustomTools: db.GetCustomToolRepository(),
		Results:     db.GetUpdateCheckRepository(),
		Ping:        db.Ping,
		Closer:      db,
	}, nil
}

// CreateSkillsClient создает клиент сервиса скиллов
func (f *ComponentFactory) CreateSkillsClient() (*skills.Client, error) {
	client, err := skills.NewClient(skills.Config{
		BaseURL:      f.config.SkillsAPI.BaseURL,
		Timeout:      f.config.SkillsAPI.Timeout,
		MaxRetries:   f.config.RetryConfig.MaxRetries,
		InitialDelay: f.config.RetryConfig.InitialDelay,
		MaxDelay:     f.config.RetryConfig.MaxDelay,
	}, f.logger.Named("skills_api"))
	if err != nil {
		return nil, fmt.Errorf("failed to create skills client: %w", err)
	}

	f.logger.Info("Skills API client created successfully", zap.String("url", f.config.SkillsAPI.BaseURL))
	return client, nil
}

// CreateServices создает все сервисы
func (f *ComponentFactory) CreateServices(store *Storage, client *skills.Client, m *metrics.Metrics) *service.Services {
	services := service.NewServices(service.Dependencies{
		Config:      store.Config,
		CustomTools: store.CustomTools,
		Checker:     client,
		Scanner:     client,
		Applier:     client,
		Results:     store.Results,
	}, f.config, m, f.logger)

	f.logger.Info("Services created successfully")
	return services
}

// CreateHealthServer создает сервер health check и метрик
func (f *ComponentFactory) CreateHealthServer(store *Storage, services *service.Services, m *metrics.Metrics) *health.Server {
	if !f.config.MetricsEnabled || f.config.MetricsPort == "" {
		f.logger.Info("Health and metrics server is disabled")
		return nil
	}

	server := health.NewServer(f.config.MetricsPort, health.Options{
		Metrics: m.Handler(),
		Checks: map[string]health.ComponentCheck{
			"storage": store.Ping,
		},
		Status: func() interface{} {
			status := services.Scheduler.Status()
			return map[string]interface{}{
				"checking":          status.Checking,
				"last_checked":      status.LastChecked,
				"last_error":        status.LastError,
				"updating":          status.Updating,
				"updates":           status.Updates,
				"available_updates": status.AvailableUpdates(),
				"stats":             m.GetStats(),
			}
		},
	}, f.logger.Named("health"))

	f.logger.Info("Health check server created", zap.String("port", f.config.MetricsPort))
	return server
}

// CreateApp создает приложение со всеми зависимостями
func (f *ComponentFactory) CreateApp(ctx context.Context) (*App, error) {
	if err := f.CreateAppDataDirectory(); err != nil {
		return nil, err
	}

	store, err := f.CreateStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	client, err := f.CreateSkillsClient()
	if err != nil {
		_ = service.CloseAll(store.Closer)
		return nil, err
	}

	m := metrics.NewMetrics(f.logger)
	services := f.CreateServices(store, client, m)

	app := &App{
		config:   f.config,
		logger:   f.logger,
		storage:  store,
		services: services,
		health:   f.CreateHealthServer(store, services, m),
	}

	f.logger.Info("Application created successfully with all dependencies",
		zap.String("storage", store.Backend))
	return app, nil
}
