// Package model содержит модели данных приложения.
package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// UpdateCheckResult представляет результат проверки обновлений одного скилла
type UpdateCheckResult struct {
	SkillID        string  `json:"skill_id"`
	CurrentVersion string  `json:"current_version"`
	CurrentHash    string  `json:"current_hash"`
	LatestVersion  string  `json:"latest_version"`
	LatestHash     string  `json:"latest_hash"`
	HasUpdate      bool    `json:"has_update"`
	SourceRegistry *string `json:"source_registry"`
}

// FilterAvailable возвращает только результаты с доступным обновлением
func FilterAvailable(results []UpdateCheckResult) []UpdateCheckResult {
	available := make([]UpdateCheckResult, 0, len(results))
	for _, r := range results {
		if r.HasUpdate {
			available = append(available, r)
		}
	}
	return available
}

// UpdateCheckRecord строка таблицы update_checks с последним известным статусом скилла
type UpdateCheckRecord struct {
	bun.BaseModel `bun:"table:skillshub.update_checks"`

	SkillID        string    `bun:"skill_id,pk"`
	CurrentVersion string    `bun:"current_version,notnull"`
	CurrentHash    string    `bun:"current_hash,notnull"`
	LatestVersion  string    `bun:"latest_version,notnull"`
	LatestHash     string    `bun:"latest_hash,notnull"`
	HasUpdate      bool      `bun:"has_update,notnull"`
	SourceRegistry *string   `bun:"source_registry"`
	CheckedAt      time.Time `bun:"checked_at,notnull,default:current_timestamp"`
}

// NewUpdateCheckRecord создает запись из результата проверки
func NewUpdateCheckRecord(r UpdateCheckResult, checkedAt time.Time) *UpdateCheckRecord {
	return &UpdateCheckRecord{
		SkillID:        r.SkillID,
		CurrentVersion: r.CurrentVersion,
		CurrentHash:    r.CurrentHash,
		LatestVersion:  r.LatestVersion,
		LatestHash:     r.LatestHash,
		HasUpdate:      r.HasUpdate,
		SourceRegistry: r.SourceRegistry,
		CheckedAt:      checkedAt,
	}
}

// Result возвращает результат проверки из записи
func (r *UpdateCheckRecord) Result() UpdateCheckResult {
	return UpdateCheckResult{
		SkillID:        r.SkillID,
		CurrentVersion: r.CurrentVersion,
		CurrentHash:    r.CurrentHash,
		LatestVersion:  r.LatestVersion,
		LatestHash:     r.LatestHash,
		HasUpdate:      r.HasUpdate,
		SourceRegistry: r.SourceRegistry,
	}
}

// UpdateCheckRepository хранит результаты последней проверки обновлений
type UpdateCheckRepository interface {
	ReplaceAll(ctx context.Context, results []UpdateCheckResult, checkedAt time.Time) error
	GetAll(ctx context.Context) ([]UpdateCheckResult, error)
}
