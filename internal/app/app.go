// Package app содержит основную логику приложения.
package app

import (
	"context"
	"fmt"
	"skillshub/internal/config"
	"skillshub/internal/infrastructure/health"
	"skillshub/internal/service"
	"sync"
	"time"

	"go.uber.org/zap"
)

// App связывает хранилище, сервисы и HTTP сервер состояния
type App struct {
	config   *config.Config
	logger   *zap.Logger
	storage  *Storage
	services *service.Services
	health   *health.Server
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New создает приложение через фабрику
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	return NewComponentFactory(cfg, logger).CreateApp(ctx)
}

// Services возвращает сервисы приложения
func (a *App) Services() *service.Services {
	return a.services
}

// Run запускает фоновую работу и блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting application")

	if a.health != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.health.Start(); err != nil {
				a.logger.Error("Health check server failed", zap.Error(err))
			}
		}()
	}

	a.services.Start(ctx)
	if err := a.services.Drafts.LoadError(); err != nil {
		a.logger.Warn("Running with default settings, storage is unavailable", zap.Error(err))
	}

	a.logger.Info("Application started successfully")

	<-ctx.Done()
	a.logger.Info("Application context cancelled")
	return a.Stop()
}

// Stop останавливает приложение
func (a *App) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		err = a.stop()
	})
	return err
}

func (a *App) stop() error {
	a.logger.Info("Stopping application gracefully")

	a.services.Teardown()

	timeout := a.config.GracefulShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.health != nil {
		if err := a.health.Stop(shutdownCtx); err != nil {
			a.logger.Error("Failed to stop health check server", zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.wg.Wait()
	}()

	select {
	case <-done:
		a.logger.Info("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		a.logger.Warn("Graceful shutdown timeout exceeded, forcing stop")
	}

	if err := service.CloseAll(a.storage.Closer); err != nil {
		return fmt.Errorf("failed to stop application: %w", err)
	}

	a.logger.Info("Application stopped successfully")
	return nil
}
