// Package repository содержит репозитории для работы с базой данных.
package repository

import (
	"context"
	"fmt"
	"skillshub/internal/model"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Убеждаемся, что репозитории реализуют интерфейсы модели
var (
	_ model.ConfigRepository      = (*ConfigRepository)(nil)
	_ model.CustomToolRepository  = (*CustomToolRepository)(nil)
	_ model.UpdateCheckRepository = (*UpdateCheckRepository)(nil)
)

// CustomToolRepository реализует интерфейс для работы с пользовательскими инструментами
type CustomToolRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewCustomToolRepository создает новый репозиторий пользовательских инструментов
func NewCustomToolRepository(db *bun.DB, logger *zap.Logger) *CustomToolRepository {
	return &CustomToolRepository{
		db:     db,
		logger: logger,
	}
}

// ListCustomTools возвращает все инструменты в порядке добавления
func (r *CustomToolRepository) ListCustomTools(ctx context.Context) ([]model.CustomTool, error) {
	var tools []model.CustomTool

	err := r.db.NewSelect().
		Model(&tools).
		Order("created_at ASC", "id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to query custom tools: %w", err)
	}

	return tools, nil
}

// AddCustomTool добавляет инструмент и назначает ему идентификатор
func (r *CustomToolRepository) AddCustomTool(ctx context.Context, name string, globalPath, projectPath *string) (*model.CustomTool, error) {
	if err := model.ValidateRequired("name", name); err != nil {
		return nil, err
	}

	now := time.Now()
	tool := &model.CustomTool{
		ID:          model.CustomToolIDPrefix + uuid.NewString(),
		Name:        name,
		GlobalPath:  globalPath,
		ProjectPath: projectPath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.db.NewInsert().Model(tool).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to insert custom tool: %w", err)
	}

	r.logger.Info("Custom tool added", zap.String("id", tool.ID), zap.String("name", name))
	return tool, nil
}

// UpdateCustomTool обновляет инструмент по идентификатору
func (r *CustomToolRepository) UpdateCustomTool(ctx context.Context, id, name string, globalPath, projectPath *string) error {
	res, err := r.updateQuery(id, name, globalPath, projectPath, time.Now()).Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update custom tool %s: %w", id, err)
	}

	return requireAffected(res, id)
}

func (r *CustomToolRepository) updateQuery(id, name string, globalPath, projectPath *string, now time.Time) *bun.UpdateQuery {
	return r.db.NewUpdate().
		Model((*model.CustomTool)(nil)).
		Set("name = ?", name).
		Set("global_path = ?", globalPath).
		Set("project_path = ?", projectPath).
		Set("updated_at = ?", now).
		Where("id = ?", id)
}

// RemoveCustomTool удаляет инструмент по идентификатору
func (r *CustomToolRepository) RemoveCustomTool(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*model.CustomTool)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete custom tool %s: %w", id, err)
	}

	if err := requireAffected(res, id); err != nil {
		return err
	}

	r.logger.Info("Custom tool removed", zap.String("id", id))
	return nil
}

// requireAffected возвращает ErrNotFound, если запрос не затронул ни одной строки
func requireAffected(res interface{ RowsAffected() (int64, error) }, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("custom tool with id '%s': %w", id, model.ErrNotFound)
	}
	return nil
}
