package service

import (
	"context"
	"errors"
	"fmt"
	"skillshub/internal/infrastructure/metrics"
	"skillshub/internal/model"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrUpdateInProgress обновление этого скилла уже выполняется
	ErrUpdateInProgress = errors.New("update already in progress")
	// ErrUpdateBlocked обновление заблокировано политикой безопасности
	ErrUpdateBlocked = errors.New("update blocked")
)

// BlockedError обновление остановлено из-за уровня риска
type BlockedError struct {
	SkillID string
	Risk    model.RiskLevel
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("update blocked: skill %q detected as %s risk", e.SkillID, e.Risk)
}

// Is позволяет сравнивать с ErrUpdateBlocked через errors.Is
func (e *BlockedError) Is(target error) bool {
	return target == ErrUpdateBlocked
}

// IsBlocked отличает блокировку политикой от сбоев инфраструктуры
func IsBlocked(err error) bool {
	return errors.Is(err, ErrUpdateBlocked)
}

// OrchestratorOptions настройки оркестратора
type OrchestratorOptions struct {
	// FailClosedOnScanError блокирует обновление при недоступном сканере
	FailClosedOnScanError bool
}

// UpdateOrchestrator выполняет обновление скилла: проверка, решение, применение, обновление статуса
type UpdateOrchestrator struct {
	policy    PolicySource
	scanner   Scanner
	applier   Applier
	scheduler *UpdateScheduler
	metrics   metrics.Interface
	opts      OrchestratorOptions
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	order    []string
}

// NewUpdateOrchestrator создает новый оркестратор обновлений
func NewUpdateOrchestrator(
	policy PolicySource,
	scanner Scanner,
	applier Applier,
	scheduler *UpdateScheduler,
	m metrics.Interface,
	opts OrchestratorOptions,
	logger *zap.Logger,
) *UpdateOrchestrator {
	return &UpdateOrchestrator{
		policy:    policy,
		scanner:   scanner,
		applier:   applier,
		scheduler: scheduler,
		metrics:   m,
		opts:      opts,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// UpdateUnit обновляет скилл и возвращает результат применения
func (o *UpdateOrchestrator) UpdateUnit(ctx context.Context, skillID string) (string, error) {
	skillID = strings.TrimSpace(skillID)
	if skillID == "" {
		return "", model.ValidationError{Field: "skill_id", Message: "is required"}
	}

	if !o.acquire(skillID) {
		o.metrics.RecordUpdate(metrics.OutcomeRejected)
		return "", fmt.Errorf("skill %s: %w", skillID, ErrUpdateInProgress)
	}
	defer o.release(skillID)

	logger := o.logger.With(zap.String("skill_id", skillID))

	policy, err := o.policy.GetConfig(ctx)
	if err != nil {
		o.metrics.RecordUpdate(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to read security policy: %w", err)
	}
	if policy == nil {
		policy = model.DefaultAppConfig()
	}

	if policy.ScanBeforeUpdate {
		report, err := o.scanner.ScanUnit(ctx, skillID)
		if err == nil && (report == nil || report.OverallRisk == model.RiskUnknown) {
			err = fmt.Errorf("%w: overall risk is not set", model.ErrInvalidScanReport)
		}

		switch {
		case errors.Is(err, model.ErrInvalidScanReport):
			o.metrics.RecordUpdate(metrics.OutcomeBlocked)
			if report != nil && report.OverallRisk.AtLeast(model.RiskHigh) {
				logger.Warn("Update blocked by security policy, scan report is incomplete",
					zap.Stringer("risk", report.OverallRisk),
					zap.Error(err))
				return "", &BlockedError{SkillID: skillID, Risk: report.OverallRisk}
			}
			logger.Warn("Update blocked, scan report is invalid", zap.Error(err))
			return "", fmt.Errorf("%w: skill %q returned an invalid scan report: %w", ErrUpdateBlocked, skillID, err)
		case err != nil:
			o.metrics.RecordScanFailure()
			if o.opts.FailClosedOnScanError {
				o.metrics.RecordUpdate(metrics.OutcomeFailed)
				return "", fmt.Errorf("failed to scan skill %s: %w", skillID, err)
			}
			logger.Warn("Security scan failed, proceeding with update", zap.Error(err))
		case report != nil && policy.BlockHighRisk && report.OverallRisk.AtLeast(model.RiskHigh):
			o.metrics.RecordUpdate(metrics.OutcomeBlocked)
			logger.Warn("Update blocked by security policy",
				zap.Stringer("risk", report.OverallRisk),
				zap.Int("findings", len(report.Findings)))
			return "", &BlockedError{SkillID: skillID, Risk: report.OverallRisk}
		case report != nil:
			logger.Debug("Security scan passed", zap.Stringer("risk", report.OverallRisk))
		}
	}

	result, err := o.applier.ApplyUnitUpdate(ctx, skillID)
	if err != nil {
		o.metrics.RecordUpdate(metrics.OutcomeFailed)
		return "", fmt.Errorf("failed to update skill %s: %w", skillID, err)
	}

	o.metrics.RecordUpdate(metrics.OutcomeApplied)
	logger.Info("Skill updated", zap.String("result", result))

	if o.scheduler != nil {
		o.scheduler.RunCheck(ctx)
	}

	return result, nil
}

// Updating возвращает последний запущенный и еще выполняющийся скилл
func (o *UpdateOrchestrator) Updating() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentLocked()
}

// acquire занимает скилл; false, если он уже обновляется
func (o *UpdateOrchestrator) acquire(skillID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.inFlight[skillID]; busy {
		return false
	}
	o.inFlight[skillID] = struct{}{}
	o.order = append(o.order, skillID)
	o.publishLocked()
	return true
}

// release освобождает скилл при любом исходе
func (o *UpdateOrchestrator) release(skillID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.inFlight, skillID)
	for i, id := range o.order {
		if id == skillID {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	o.publishLocked()
}

func (o *UpdateOrchestrator) currentLocked() string {
	if len(o.order) == 0 {
		return ""
	}
	return o.order[len(o.order)-1]
}

func (o *UpdateOrchestrator) publishLocked() {
	o.metrics.SetUpdatesInFlight(len(o.inFlight))
	if o.scheduler != nil {
		o.scheduler.setUpdating(o.currentLocked())
	}
}
