// Package model содержит модели данных.
//
// Группа: ENTITIES - Основные сущности
// Содержит: AppConfig, CloudSyncConfig, SyncStrategy, CloudProvider, ConfigRepository
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// SyncStrategy представляет стратегию синхронизации скиллов в инструменты
type SyncStrategy string

const (
	SyncStrategyAuto SyncStrategy = "auto"
	SyncStrategyLink SyncStrategy = "link"
	SyncStrategyCopy SyncStrategy = "copy"
)

// IsValid проверяет валидность стратегии
func (s SyncStrategy) IsValid() bool {
	switch s {
	case SyncStrategyAuto, SyncStrategyLink, SyncStrategyCopy:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление стратегии
func (s SyncStrategy) String() string {
	return string(s)
}

// CloudProvider представляет поставщика облачного хранилища
type CloudProvider string

const (
	CloudProviderICloud      CloudProvider = "ICloud"
	CloudProviderGoogleDrive CloudProvider = "GoogleDrive"
	CloudProviderOneDrive    CloudProvider = "OneDrive"
	CloudProviderCustom      CloudProvider = "Custom"
)

// IsValid проверяет валидность поставщика
func (p CloudProvider) IsValid() bool {
	switch p {
	case CloudProviderICloud, CloudProviderGoogleDrive, CloudProviderOneDrive, CloudProviderCustom:
		return true
	default:
		return false
	}
}

// DefaultCloudFolder папка синхронизации по умолчанию
const DefaultCloudFolder = "~/Documents"

// CloudSyncConfig представляет настройки облачной синхронизации
type CloudSyncConfig struct {
	Enabled    bool           `json:"enabled"`
	Provider   *CloudProvider `json:"provider"`
	SyncFolder *string        `json:"sync_folder"`
	AutoSync   bool           `json:"auto_sync"`
	// LastSync обновляется фоновой синхронизацией (ISO 8601)
	LastSync *string `json:"last_sync"`
}

// AppConfig представляет сохраняемую конфигурацию приложения
type AppConfig struct {
	DefaultSyncStrategy     SyncStrategy            `json:"default_sync_strategy"`
	ToolSyncStrategies      map[string]SyncStrategy `json:"tool_sync_strategies"`
	AutoSyncOnInstall       bool                    `json:"auto_sync_on_install"`
	CheckUpdatesOnStartup   bool                    `json:"check_updates_on_startup"`
	AutoCheckUpdateInterval int                     `json:"auto_check_update_interval"`
	ScanBeforeInstall       bool                    `json:"scan_before_install"`
	ScanBeforeUpdate        bool                    `json:"scan_before_update"`
	BlockHighRisk           bool                    `json:"block_high_risk"`
	RequireConfirmMedium    bool                    `json:"require_confirm_medium"`
	AutoApproveLow          bool                    `json:"auto_approve_low"`
	TrustedSources          []string                `json:"trusted_sources"`
	CloudSync               CloudSyncConfig         `json:"cloud_sync"`
}

// DefaultAppConfig возвращает конфигурацию по умолчанию
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		DefaultSyncStrategy:     SyncStrategyAuto,
		ToolSyncStrategies:      map[string]SyncStrategy{},
		AutoSyncOnInstall:       true,
		CheckUpdatesOnStartup:   true,
		AutoCheckUpdateInterval: 0,
		ScanBeforeInstall:       true,
		ScanBeforeUpdate:        true,
		BlockHighRisk:           true,
		RequireConfirmMedium:    true,
		AutoApproveLow:          true,
		TrustedSources:          []string{},
	}
}

// Clone возвращает глубокую копию конфигурации
func (c *AppConfig) Clone() *AppConfig {
	if c == nil {
		return nil
	}

	out := *c

	out.ToolSyncStrategies = make(map[string]SyncStrategy, len(c.ToolSyncStrategies))
	for tool, strategy := range c.ToolSyncStrategies {
		out.ToolSyncStrategies[tool] = strategy
	}

	out.TrustedSources = append([]string{}, c.TrustedSources...)

	if c.CloudSync.Provider != nil {
		provider := *c.CloudSync.Provider
		out.CloudSync.Provider = &provider
	}
	if c.CloudSync.SyncFolder != nil {
		folder := *c.CloudSync.SyncFolder
		out.CloudSync.SyncFolder = &folder
	}
	if c.CloudSync.LastSync != nil {
		lastSync := *c.CloudSync.LastSync
		out.CloudSync.LastSync = &lastSync
	}

	return &out
}

// Normalize удаляет пустые переопределения стратегий и дубликаты доверенных источников
func (c *AppConfig) Normalize() {
	if c.ToolSyncStrategies == nil {
		c.ToolSyncStrategies = map[string]SyncStrategy{}
	}
	for tool, strategy := range c.ToolSyncStrategies {
		if strategy == "" {
			delete(c.ToolSyncStrategies, tool)
		}
	}

	seen := make(map[string]struct{}, len(c.TrustedSources))
	sources := make([]string, 0, len(c.TrustedSources))
	for _, source := range c.TrustedSources {
		if _, ok := seen[source]; ok {
			continue
		}
		seen[source] = struct{}{}
		sources = append(sources, source)
	}
	c.TrustedSources = sources
}

// AppConfigRecord строка таблицы app_config, конфигурация хранится целиком в jsonb
type AppConfigRecord struct {
	bun.BaseModel `bun:"table:skillshub.app_config"`

	ID        int        `bun:"id,pk"`
	Config    *AppConfig `bun:"config,type:jsonb,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// ConfigRepository определяет интерфейс для работы с конфигурацией
type ConfigRepository interface {
	GetConfig(ctx context.Context) (*AppConfig, error)
	SaveConfig(ctx context.Context, config *AppConfig) error
}
