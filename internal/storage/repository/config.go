// Package repository содержит репозитории для работы с базой данных.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"skillshub/internal/model"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Конфигурация хранится одной строкой
const appConfigRowID = 1

// ConfigRepository реализует интерфейс для работы с конфигурацией
type ConfigRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewConfigRepository создает новый репозиторий конфигурации
func NewConfigRepository(db *bun.DB, logger *zap.Logger) *ConfigRepository {
	return &ConfigRepository{
		db:     db,
		logger: logger,
	}
}

// GetConfig возвращает конфигурацию; отсутствие строки дает конфигурацию по умолчанию
func (r *ConfigRepository) GetConfig(ctx context.Context) (*model.AppConfig, error) {
	record := new(model.AppConfigRecord)

	err := r.db.NewSelect().
		Model(record).
		Where("id = ?", appConfigRowID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug("App config row not found, using defaults")
			return model.DefaultAppConfig(), nil
		}
		return nil, fmt.Errorf("failed to scan app config: %w", err)
	}

	if record.Config == nil {
		return model.DefaultAppConfig(), nil
	}

	record.Config.Normalize()
	return record.Config, nil
}

// SaveConfig сохраняет конфигурацию целиком
func (r *ConfigRepository) SaveConfig(ctx context.Context, config *model.AppConfig) error {
	if _, err := r.upsertQuery(config, time.Now()).Exec(ctx); err != nil {
		return fmt.Errorf("failed to save app config: %w", err)
	}

	return nil
}

// upsertQuery вставляет или заменяет единственную строку конфигурации
func (r *ConfigRepository) upsertQuery(config *model.AppConfig, now time.Time) *bun.InsertQuery {
	record := &model.AppConfigRecord{
		ID:        appConfigRowID,
		Config:    config,
		UpdatedAt: now,
	}

	return r.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("config = EXCLUDED.config").
		Set("updated_at = EXCLUDED.updated_at")
}
