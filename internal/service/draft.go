package service

import (
	"skillshub/internal/model"
	"strings"
)

// Draft редактируемая копия конфигурации.
// Пустая стратегия инструмента означает наследование стратегии по умолчанию,
// пустой поставщик и пустая папка означают их отсутствие.
type Draft struct {
	DefaultSyncStrategy     string
	ToolSyncStrategies      map[string]string
	AutoSyncOnInstall       bool
	CheckUpdatesOnStartup   bool
	AutoCheckUpdateInterval int

	ScanBeforeInstall    bool
	ScanBeforeUpdate     bool
	BlockHighRisk        bool
	RequireConfirmMedium bool
	AutoApproveLow       bool
	TrustedSources       []string

	CloudSyncEnabled bool
	CloudProvider    string
	SyncFolder       string
	CloudAutoSync    bool
}

// DraftFromConfig создает черновик из сохраненной конфигурации
func DraftFromConfig(config *model.AppConfig) Draft {
	if config == nil {
		config = model.DefaultAppConfig()
	}

	strategies := make(map[string]string, len(config.ToolSyncStrategies))
	for tool, strategy := range config.ToolSyncStrategies {
		strategies[tool] = string(strategy)
	}

	d := Draft{
		DefaultSyncStrategy:     string(config.DefaultSyncStrategy),
		ToolSyncStrategies:      strategies,
		AutoSyncOnInstall:       config.AutoSyncOnInstall,
		CheckUpdatesOnStartup:   config.CheckUpdatesOnStartup,
		AutoCheckUpdateInterval: config.AutoCheckUpdateInterval,
		ScanBeforeInstall:       config.ScanBeforeInstall,
		ScanBeforeUpdate:        config.ScanBeforeUpdate,
		BlockHighRisk:           config.BlockHighRisk,
		RequireConfirmMedium:    config.RequireConfirmMedium,
		AutoApproveLow:          config.AutoApproveLow,
		TrustedSources:          append([]string{}, config.TrustedSources...),
		CloudSyncEnabled:        config.CloudSync.Enabled,
		CloudAutoSync:           config.CloudSync.AutoSync,
	}
	if config.CloudSync.Provider != nil {
		d.CloudProvider = string(*config.CloudSync.Provider)
	}
	if config.CloudSync.SyncFolder != nil {
		d.SyncFolder = *config.CloudSync.SyncFolder
	}
	return d
}

// ToConfig собирает конфигурацию из черновика без пустых переопределений стратегий.
// LastSync не заполняется: его сохраняет хранилище черновика.
func (d Draft) ToConfig() *model.AppConfig {
	strategies := make(map[string]model.SyncStrategy, len(d.ToolSyncStrategies))
	for tool, strategy := range d.ToolSyncStrategies {
		if strategy == "" {
			continue
		}
		strategies[tool] = model.SyncStrategy(strategy)
	}

	config := &model.AppConfig{
		DefaultSyncStrategy:     model.SyncStrategy(d.DefaultSyncStrategy),
		ToolSyncStrategies:      strategies,
		AutoSyncOnInstall:       d.AutoSyncOnInstall,
		CheckUpdatesOnStartup:   d.CheckUpdatesOnStartup,
		AutoCheckUpdateInterval: d.AutoCheckUpdateInterval,
		ScanBeforeInstall:       d.ScanBeforeInstall,
		ScanBeforeUpdate:        d.ScanBeforeUpdate,
		BlockHighRisk:           d.BlockHighRisk,
		RequireConfirmMedium:    d.RequireConfirmMedium,
		AutoApproveLow:          d.AutoApproveLow,
		TrustedSources:          append([]string{}, d.TrustedSources...),
		CloudSync: model.CloudSyncConfig{
			Enabled:    d.CloudSyncEnabled,
			SyncFolder: model.OptionalPath(d.SyncFolder),
			AutoSync:   d.CloudAutoSync,
		},
	}
	if d.CloudProvider != "" {
		provider := model.CloudProvider(d.CloudProvider)
		config.CloudSync.Provider = &provider
	}
	config.Normalize()
	return config
}

// Clone возвращает независимую копию черновика
func (d Draft) Clone() Draft {
	out := d
	out.ToolSyncStrategies = make(map[string]string, len(d.ToolSyncStrategies))
	for tool, strategy := range d.ToolSyncStrategies {
		out.ToolSyncStrategies[tool] = strategy
	}
	out.TrustedSources = append([]string{}, d.TrustedSources...)
	return out
}

// SetToolStrategy задает стратегию инструмента; пустое значение возвращает наследование
func (d *Draft) SetToolStrategy(toolID, strategy string) {
	if d.ToolSyncStrategies == nil {
		d.ToolSyncStrategies = map[string]string{}
	}
	d.ToolSyncStrategies[toolID] = strategy
}

// SetCloudProvider задает поставщика; для Custom без папки подставляется папка по умолчанию
func (d *Draft) SetCloudProvider(provider string) {
	d.CloudProvider = provider
	if model.CloudProvider(provider) == model.CloudProviderCustom && strings.TrimSpace(d.SyncFolder) == "" {
		d.SyncFolder = model.DefaultCloudFolder
	}
}

// AddTrustedSource добавляет доверенный источник, если его еще нет.
// Вызывается оболочкой настроек через ConfigDraftStore.Update.
func (d *Draft) AddTrustedSource(source string) {
	source = strings.TrimSpace(source)
	if source == "" {
		return
	}
	for _, existing := range d.TrustedSources {
		if existing == source {
			return
		}
	}
	d.TrustedSources = append(d.TrustedSources, source)
}

// RemoveTrustedSource удаляет доверенный источник.
// Вызывается оболочкой настроек через ConfigDraftStore.Update.
func (d *Draft) RemoveTrustedSource(source string) {
	sources := d.TrustedSources[:0:0]
	for _, existing := range d.TrustedSources {
		if existing != source {
			sources = append(sources, existing)
		}
	}
	d.TrustedSources = sources
}
