package service

import (
	"context"
	"skillshub/internal/model"
	"time"
)

// ConfigStore определяет хранилище конфигурации приложения
type ConfigStore interface {
	GetConfig(ctx context.Context) (*model.AppConfig, error)
	SaveConfig(ctx context.Context, config *model.AppConfig) error
}

// PolicySource возвращает сохраненную политику безопасности
type PolicySource interface {
	GetConfig(ctx context.Context) (*model.AppConfig, error)
}

// CustomToolStore определяет хранилище пользовательских инструментов
type CustomToolStore interface {
	ListCustomTools(ctx context.Context) ([]model.CustomTool, error)
	AddCustomTool(ctx context.Context, name string, globalPath, projectPath *string) (*model.CustomTool, error)
	UpdateCustomTool(ctx context.Context, id, name string, globalPath, projectPath *string) error
	RemoveCustomTool(ctx context.Context, id string) error
}

// UpdateChecker проверяет обновления всех установленных скиллов
type UpdateChecker interface {
	CheckAllUnitUpdates(ctx context.Context) ([]model.UpdateCheckResult, error)
}

// Scanner проверяет скилл на риски безопасности
type Scanner interface {
	ScanUnit(ctx context.Context, skillID string) (*model.ScanReport, error)
}

// Applier применяет обновление скилла
type Applier interface {
	ApplyUnitUpdate(ctx context.Context, skillID string) (string, error)
}

// ResultSink сохраняет результаты последней проверки обновлений
type ResultSink interface {
	ReplaceAll(ctx context.Context, results []model.UpdateCheckResult, checkedAt time.Time) error
}

// Убеждаемся, что хранилища модели подходят сервисам
var (
	_ ConfigStore     = (model.ConfigRepository)(nil)
	_ CustomToolStore = (model.CustomToolRepository)(nil)
	_ ResultSink      = (model.UpdateCheckRepository)(nil)
)
