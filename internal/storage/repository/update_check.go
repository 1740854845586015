// Package repository содержит репозитории для работы с базой данных.
package repository

import (
	"context"
	"fmt"
	"skillshub/internal/model"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UpdateCheckRepository хранит результаты последней проверки обновлений
type UpdateCheckRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUpdateCheckRepository создает новый репозиторий результатов проверки
func NewUpdateCheckRepository(db *bun.DB, logger *zap.Logger) *UpdateCheckRepository {
	return &UpdateCheckRepository{
		db:     db,
		logger: logger,
	}
}

// ReplaceAll заменяет все результаты одним транзакционным пакетом
func (r *UpdateCheckRepository) ReplaceAll(ctx context.Context, results []model.UpdateCheckResult, checkedAt time.Time) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*model.UpdateCheckRecord)(nil)).
			Where("TRUE").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear update checks: %w", err)
		}

		if len(results) == 0 {
			return nil
		}

		records := make([]*model.UpdateCheckRecord, 0, len(results))
		for _, result := range results {
			records = append(records, model.NewUpdateCheckRecord(result, checkedAt))
		}

		if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert update checks: %w", err)
		}

		r.logger.Debug("Update check results stored", zap.Int("count", len(records)))
		return nil
	})
}

// GetAll возвращает сохраненные результаты проверки
func (r *UpdateCheckRepository) GetAll(ctx context.Context) ([]model.UpdateCheckResult, error) {
	var records []model.UpdateCheckRecord

	err := r.db.NewSelect().
		Model(&records).
		Order("skill_id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to query update checks: %w", err)
	}

	results := make([]model.UpdateCheckResult, 0, len(records))
	for i := range records {
		results = append(results, records[i].Result())
	}
	return results, nil
}
