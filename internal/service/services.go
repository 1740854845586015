// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"fmt"
	"skillshub/internal/config"
	"skillshub/internal/infrastructure/metrics"
	"skillshub/internal/model"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// Dependencies внешние коллабораторы сервисов
type Dependencies struct {
	Config      ConfigStore
	CustomTools CustomToolStore
	Checker     UpdateChecker
	Scanner     Scanner
	Applier     Applier
	// Results необязательное хранилище результатов проверки
	Results model.UpdateCheckRepository
}

// Services содержит все сервисы приложения
type Services struct {
	Drafts        *ConfigDraftStore
	Tools         *CustomToolReconciler
	Scheduler     *UpdateScheduler
	Orchestrator  *UpdateOrchestrator
	ConfigWatcher *ConfigWatcher
	Metrics       metrics.Interface

	results model.UpdateCheckRepository
	logger  *zap.Logger
}

// NewServices создает все сервисы
func NewServices(deps Dependencies, cfg *config.Config, m metrics.Interface, logger *zap.Logger) *Services {
	opts := SchedulerOptions{
		StartupDelay: cfg.StartupCheckDelay,
		CheckTimeout: cfg.CheckTimeout,
	}
	if deps.Results != nil {
		opts.ResultSink = deps.Results
	}

	scheduler := NewUpdateScheduler(deps.Checker, opts, m, logger.Named("scheduler"))
	orchestrator := NewUpdateOrchestrator(
		deps.Config,
		deps.Scanner,
		deps.Applier,
		scheduler,
		m,
		OrchestratorOptions{FailClosedOnScanError: cfg.ScanFailClosed},
		logger.Named("orchestrator"),
	)
	drafts := NewConfigDraftStore(deps.Config, logger.Named("config"))
	watcher := NewConfigWatcher(deps.Config, scheduler, cfg.ConfigPollInterval, logger.Named("config_watcher"))

	// Сохраненные изменения интервала применяются сразу, без ожидания опроса
	drafts.OnCommitted(func(committed *model.AppConfig) {
		watcher.Apply(committed)
	})

	return &Services{
		Drafts:        drafts,
		Tools:         NewCustomToolReconciler(deps.CustomTools, logger.Named("custom_tools")),
		Scheduler:     scheduler,
		Orchestrator:  orchestrator,
		ConfigWatcher: watcher,
		Metrics:       m,
		results:       deps.Results,
		logger:        logger,
	}
}

// Start загружает состояние, настраивает планировщик и запускает наблюдатель конфигурации
func (s *Services) Start(ctx context.Context) {
	s.Drafts.Load(ctx)

	if err := s.Tools.Load(ctx); err != nil {
		s.logger.Error("Failed to load custom tools", zap.Error(err))
	}

	if s.results != nil {
		results, err := s.results.GetAll(ctx)
		if err != nil {
			s.logger.Warn("Failed to load stored update check results", zap.Error(err))
		} else {
			s.Scheduler.Seed(results)
		}
	}

	s.ConfigWatcher.Apply(s.Drafts.Committed())
	go s.ConfigWatcher.Start(ctx)

	s.logger.Info("Services started")
}

// IsDirty сообщает о несохраненных изменениях конфигурации или инструментов
func (s *Services) IsDirty() bool {
	return s.Drafts.IsDirty() || s.Tools.IsDirty()
}

// Validate проверяет черновик вместе с инструментами
func (s *Services) Validate() []string {
	return ValidateDraft(s.Drafts.Draft(), s.Tools.Tools())
}

// SaveSettings проверяет и сохраняет конфигурацию, затем измененные инструменты
func (s *Services) SaveSettings(ctx context.Context) error {
	if msgs := s.Validate(); len(msgs) > 0 {
		return &CommitValidationError{Messages: msgs}
	}

	if err := s.Drafts.Commit(ctx); err != nil {
		return err
	}

	if err := s.Tools.CommitChanged(ctx); err != nil {
		return err
	}
	return nil
}

// Teardown останавливает фоновую работу
func (s *Services) Teardown() {
	s.ConfigWatcher.Stop()
	s.Scheduler.Teardown()
	s.logger.Info("Services stopped")
}

// Closer освобождаемый ресурс
type Closer interface {
	Close() error
}

// CloseAll закрывает ресурсы и возвращает сводную ошибку
func CloseAll(closers ...Closer) error {
	var result *multierror.Error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to close resources: %w", err)
	}
	return nil
}
