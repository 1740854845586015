// Package service содержит бизнес-логику приложения.
package service

import (
	"context"
	"errors"
	"fmt"
	"skillshub/internal/model"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrDraftNotLoaded возвращается при сохранении до загрузки конфигурации
var ErrDraftNotLoaded = errors.New("config draft is not loaded")

// CommitValidationError содержит все нарушения, из-за которых сохранение отклонено
type CommitValidationError struct {
	Messages []string
}

func (e *CommitValidationError) Error() string {
	return "config validation failed: " + strings.Join(e.Messages, "; ")
}

// Unwrap возвращает нарушения как model.ValidationErrors
func (e *CommitValidationError) Unwrap() error {
	return ValidationErrors(e.Messages)
}

// ConfigDraftStore хранит черновик конфигурации и снимок последнего сохранения
type ConfigDraftStore struct {
	store  ConfigStore
	logger *zap.Logger

	mu          sync.RWMutex
	draft       Draft
	snapshot    string
	committed   *model.AppConfig
	lastSync    *string
	initialized bool
	loadErr     error
	onCommitted []func(*model.AppConfig)

	// commitMu сериализует сохранения
	commitMu sync.Mutex
}

// NewConfigDraftStore создает новое хранилище черновика
func NewConfigDraftStore(store ConfigStore, logger *zap.Logger) *ConfigDraftStore {
	defaults := model.DefaultAppConfig()
	return &ConfigDraftStore{
		store:     store,
		logger:    logger,
		draft:     DraftFromConfig(defaults),
		committed: defaults,
	}
}

// Load загружает конфигурацию и фиксирует исходный снимок.
// Если хранилище недоступно, текущий черновик считается сохраненным.
func (s *ConfigDraftStore) Load(ctx context.Context) {
	config, err := s.store.GetConfig(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true

	if err != nil {
		s.loadErr = err
		s.snapshot = SerializeSnapshot(s.draft.ToConfig())
		s.logger.Warn("Failed to load config, using in-memory defaults", zap.Error(err))
		return
	}

	if config == nil {
		config = model.DefaultAppConfig()
	}

	s.loadErr = nil
	s.draft = DraftFromConfig(config)
	s.committed = config.Clone()
	s.lastSync = copyString(config.CloudSync.LastSync)
	s.snapshot = SerializeSnapshot(s.draft.ToConfig())

	s.logger.Info("Config loaded",
		zap.String("default_sync_strategy", s.draft.DefaultSyncStrategy),
		zap.Int("auto_check_update_interval", s.draft.AutoCheckUpdateInterval))
}

// LoadError возвращает ошибку последней загрузки
func (s *ConfigDraftStore) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Initialized сообщает, что исходный снимок уже зафиксирован
func (s *ConfigDraftStore) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Draft возвращает копию черновика
func (s *ConfigDraftStore) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Clone()
}

// Update изменяет черновик
func (s *ConfigDraftStore) Update(fn func(d *Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
}

// IsDirty сообщает, отличается ли черновик от последнего сохранения
func (s *ConfigDraftStore) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return false
	}
	return SerializeSnapshot(s.draft.ToConfig()) != s.snapshot
}

// Validate проверяет черновик без пользовательских инструментов
func (s *ConfigDraftStore) Validate() []string {
	return ValidateDraft(s.Draft(), nil)
}

// Commit проверяет и сохраняет черновик. Снимок обновляется только после успешного сохранения.
func (s *ConfigDraftStore) Commit(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.RLock()
	initialized := s.initialized
	draft := s.draft.Clone()
	lastSync := copyString(s.lastSync)
	s.mu.RUnlock()

	if !initialized {
		return ErrDraftNotLoaded
	}

	if msgs := ValidateDraft(draft, nil); len(msgs) > 0 {
		return &CommitValidationError{Messages: msgs}
	}

	config := draft.ToConfig()
	config.CloudSync.LastSync = lastSync

	if err := s.store.SaveConfig(ctx, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	s.mu.Lock()
	s.snapshot = SerializeSnapshot(config)
	s.committed = config.Clone()
	hooks := append([]func(*model.AppConfig){}, s.onCommitted...)
	s.mu.Unlock()

	s.logger.Info("Config committed")

	for _, hook := range hooks {
		hook(config.Clone())
	}
	return nil
}

// Discard возвращает черновик к последнему сохраненному состоянию
func (s *ConfigDraftStore) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = DraftFromConfig(s.committed)
}

// Committed возвращает последнюю сохраненную конфигурацию
func (s *ConfigDraftStore) Committed() *model.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed.Clone()
}

// LastSync возвращает время последней облачной синхронизации
func (s *ConfigDraftStore) LastSync() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyString(s.lastSync)
}

// RefreshLastSync перечитывает last_sync после фоновой синхронизации, не трогая черновик и снимок.
// Вызывается оболочкой настроек по завершении облачной синхронизации.
func (s *ConfigDraftStore) RefreshLastSync(ctx context.Context) error {
	config, err := s.store.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh last sync: %w", err)
	}
	if config == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSync = copyString(config.CloudSync.LastSync)
	s.committed.CloudSync.LastSync = copyString(config.CloudSync.LastSync)
	return nil
}

// OnCommitted регистрирует обработчик успешного сохранения
func (s *ConfigDraftStore) OnCommitted(fn func(*model.AppConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCommitted = append(s.onCommitted, fn)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
