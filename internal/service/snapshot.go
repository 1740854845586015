package service

import (
	"encoding/json"
	"fmt"
	"skillshub/internal/model"
)

// SerializeSnapshot возвращает сравнимое представление конфигурации.
// Поле cloud_sync.last_sync всегда обнуляется, исходная конфигурация не изменяется.
func SerializeSnapshot(config *model.AppConfig) string {
	if config == nil {
		return ""
	}

	normalized := config.Clone()
	normalized.CloudSync.LastSync = nil
	normalized.Normalize()

	// encoding/json сортирует ключи map, порядок полей задан типом
	data, err := json.Marshal(normalized)
	if err != nil {
		return ""
	}
	return string(data)
}

// DeserializeSnapshot восстанавливает конфигурацию из снимка
func DeserializeSnapshot(snapshot string) (*model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if err := json.Unmarshal([]byte(snapshot), config); err != nil {
		return nil, fmt.Errorf("failed to decode config snapshot: %w", err)
	}
	config.Normalize()
	return config, nil
}
