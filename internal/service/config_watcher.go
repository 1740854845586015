// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"skillshub/internal/model"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultConfigPollInterval период опроса сохраненной конфигурации
const DefaultConfigPollInterval = 30 * time.Second

// ConfigWatcher отслеживает изменения настроек проверки обновлений и перенастраивает планировщик
type ConfigWatcher struct {
	source    PolicySource
	scheduler *UpdateScheduler
	interval  time.Duration
	logger    *zap.Logger
	stopChan  chan struct{}
	stopOnce  sync.Once

	mu              sync.Mutex
	applied         bool
	checkOnStartup  bool
	intervalMinutes int
}

// NewConfigWatcher создает новый наблюдатель конфигурации
func NewConfigWatcher(source PolicySource, scheduler *UpdateScheduler, interval time.Duration, logger *zap.Logger) *ConfigWatcher {
	if interval <= 0 {
		interval = DefaultConfigPollInterval
	}
	return &ConfigWatcher{
		source:    source,
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает опрос конфигурации и блокируется до остановки
func (w *ConfigWatcher) Start(ctx context.Context) {
	w.logger.Info("Starting config watcher", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Config watcher stopped due to context cancellation")
			return
		case <-w.stopChan:
			w.logger.Info("Config watcher stopped")
			return
		case <-ticker.C:
			w.checkForConfigChanges(ctx)
		}
	}
}

// Stop останавливает наблюдение
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

// checkForConfigChanges перечитывает конфигурацию и применяет изменения
func (w *ConfigWatcher) checkForConfigChanges(ctx context.Context) {
	config, err := w.source.GetConfig(ctx)
	if err != nil {
		w.logger.Error("Failed to get config for watching", zap.Error(err))
		return
	}

	if !w.Apply(config) {
		w.logger.Debug("Config watcher checked for changes")
	}
}

// Apply перенастраивает планировщик, если изменились настройки проверки.
// Возвращает true, если планировщик был перенастроен.
func (w *ConfigWatcher) Apply(config *model.AppConfig) bool {
	if config == nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applied &&
		w.checkOnStartup == config.CheckUpdatesOnStartup &&
		w.intervalMinutes == config.AutoCheckUpdateInterval {
		return false
	}
	w.applied = true
	w.checkOnStartup = config.CheckUpdatesOnStartup
	w.intervalMinutes = config.AutoCheckUpdateInterval

	w.logger.Info("Applying update check settings",
		zap.Bool("check_on_startup", config.CheckUpdatesOnStartup),
		zap.Int("interval_minutes", config.AutoCheckUpdateInterval))

	w.scheduler.Reconfigure(config.CheckUpdatesOnStartup, config.AutoCheckUpdateInterval)
	return true
}
