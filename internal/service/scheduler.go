// Package service содержит планировщик проверки обновлений.
package service

import (
	"context"
	"math"
	"skillshub/internal/infrastructure/metrics"
	"skillshub/internal/model"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultStartupDelay задержка проверки после запуска
	DefaultStartupDelay = 2 * time.Second
	// DefaultIntervalUnit единица интервала автоматической проверки
	DefaultIntervalUnit = time.Minute
	// DefaultCheckTimeout ограничение на одну плановую проверку
	DefaultCheckTimeout = 5 * time.Minute
	// MaxCheckIntervalMinutes наибольший интервал в минутах, представимый в time.Duration
	MaxCheckIntervalMinutes = int(math.MaxInt64 / int64(DefaultIntervalUnit))
)

// SchedulerOptions настройки планировщика
type SchedulerOptions struct {
	StartupDelay time.Duration
	IntervalUnit time.Duration
	CheckTimeout time.Duration
	// ResultSink необязательное хранилище результатов проверки
	ResultSink ResultSink
}

func (o SchedulerOptions) withDefaults() SchedulerOptions {
	if o.StartupDelay <= 0 {
		o.StartupDelay = DefaultStartupDelay
	}
	if o.IntervalUnit <= 0 {
		o.IntervalUnit = DefaultIntervalUnit
	}
	if o.CheckTimeout <= 0 {
		o.CheckTimeout = DefaultCheckTimeout
	}
	return o
}

// CheckStatus снимок состояния планировщика
type CheckStatus struct {
	Updates     []model.UpdateCheckResult
	Checking    bool
	LastChecked time.Time
	LastError   string
	Updating    string
}

// AvailableUpdates возвращает только скиллы с доступным обновлением
func (s CheckStatus) AvailableUpdates() []model.UpdateCheckResult {
	return model.FilterAvailable(s.Updates)
}

// UpdateScheduler запускает проверку обновлений после старта и по интервалу
type UpdateScheduler struct {
	checker UpdateChecker
	opts    SchedulerOptions
	metrics metrics.Interface
	logger  *zap.Logger

	mu           sync.Mutex
	closed       bool
	generation   uint64
	startupTimer *time.Timer
	cron         *cron.Cron

	checking    bool
	updates     []model.UpdateCheckResult
	lastChecked time.Time
	lastError   string
	updating    string
}

// NewUpdateScheduler создает новый планировщик проверок
func NewUpdateScheduler(checker UpdateChecker, opts SchedulerOptions, m metrics.Interface, logger *zap.Logger) *UpdateScheduler {
	return &UpdateScheduler{
		checker: checker,
		opts:    opts.withDefaults(),
		metrics: m,
		logger:  logger,
		updates: []model.UpdateCheckResult{},
	}
}

// Reconfigure отменяет оба таймера и заводит их заново по новой конфигурации
func (s *UpdateScheduler) Reconfigure(startupEnabled bool, intervalMinutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("Update scheduler is torn down, ignoring reconfigure")
		return
	}

	s.cancelLocked()
	s.generation++
	generation := s.generation

	if startupEnabled {
		s.startupTimer = time.AfterFunc(s.opts.StartupDelay, func() {
			s.fire(generation, "startup", 0)
		})
	}

	if intervalMinutes > 0 && int64(intervalMinutes) > math.MaxInt64/int64(s.opts.IntervalUnit) {
		s.logger.Warn("Update check interval is too large, interval checks disabled",
			zap.Int("interval_minutes", intervalMinutes))
		intervalMinutes = 0
	}

	var next time.Time
	if intervalMinutes > 0 {
		period := time.Duration(intervalMinutes) * s.opts.IntervalUnit
		logger := newCronLogger(s.logger)

		// Новый cron на каждое поколение конфигурации
		s.cron = cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		)
		s.cron.Schedule(fixedPeriod(period), cron.FuncJob(func() {
			s.fire(generation, "interval", period)
		}))
		s.cron.Start()
		next = time.Now().Add(period)
	}
	s.metrics.SetNextCheck(next)

	s.logger.Info("Update scheduler configured",
		zap.Bool("check_on_startup", startupEnabled),
		zap.Int("interval_minutes", intervalMinutes),
		zap.Uint64("generation", generation))
}

// fire запускает проверку, если поколение актуально и планировщик не остановлен
func (s *UpdateScheduler) fire(generation uint64, trigger string, period time.Duration) {
	s.mu.Lock()
	stale := s.closed || generation != s.generation
	s.mu.Unlock()

	if stale {
		s.logger.Debug("Skipping stale scheduled check",
			zap.String("trigger", trigger),
			zap.Uint64("generation", generation))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.CheckTimeout)
	defer cancel()

	if period > 0 {
		s.metrics.SetNextCheck(time.Now().Add(period))
	}

	s.logger.Debug("Running scheduled update check", zap.String("trigger", trigger))
	s.RunCheck(ctx)
}

// RunCheck выполняет проверку обновлений. Возвращает false, если проверка уже идет.
func (s *UpdateScheduler) RunCheck(ctx context.Context) bool {
	s.mu.Lock()
	if s.closed || s.checking {
		s.mu.Unlock()
		return false
	}
	s.checking = true
	s.lastError = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.checking = false
		s.mu.Unlock()
	}()

	started := time.Now()
	results, err := s.checker.CheckAllUnitUpdates(ctx)
	s.metrics.RecordCheck(time.Since(started), err)

	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.mu.Unlock()

		s.logger.Warn("Update check failed", zap.Error(err))
		return true
	}

	results = append([]model.UpdateCheckResult{}, results...)
	checkedAt := time.Now()

	s.mu.Lock()
	s.updates = results
	s.lastChecked = checkedAt
	s.mu.Unlock()

	available := len(model.FilterAvailable(results))
	s.metrics.SetAvailableUpdates(available)

	if s.opts.ResultSink != nil {
		if err := s.opts.ResultSink.ReplaceAll(ctx, results, checkedAt); err != nil {
			s.logger.Warn("Failed to store update check results", zap.Error(err))
		}
	}

	s.logger.Info("Update check completed",
		zap.Int("skills", len(results)),
		zap.Int("available", available))
	return true
}

// Seed заполняет список сохраненными результатами, если проверок еще не было
func (s *UpdateScheduler) Seed(results []model.UpdateCheckResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lastChecked.IsZero() || s.checking {
		return
	}
	s.updates = append([]model.UpdateCheckResult{}, results...)
}

// Status возвращает снимок состояния
func (s *UpdateScheduler) Status() CheckStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return CheckStatus{
		Updates:     append([]model.UpdateCheckResult{}, s.updates...),
		Checking:    s.checking,
		LastChecked: s.lastChecked,
		LastError:   s.lastError,
		Updating:    s.updating,
	}
}

// Updates возвращает результаты последней проверки
func (s *UpdateScheduler) Updates() []model.UpdateCheckResult {
	return s.Status().Updates
}

// AvailableUpdates возвращает скиллы с доступным обновлением
func (s *UpdateScheduler) AvailableUpdates() []model.UpdateCheckResult {
	return s.Status().AvailableUpdates()
}

// Teardown останавливает планировщик; уже поставленные в очередь срабатывания игнорируются
func (s *UpdateScheduler) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	s.cancelLocked()
	s.metrics.SetNextCheck(time.Time{})

	s.logger.Info("Update scheduler stopped")
}

func (s *UpdateScheduler) setUpdating(skillID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updating = skillID
}

// cancelLocked отменяет оба таймера; вызывается под s.mu
func (s *UpdateScheduler) cancelLocked() {
	if s.startupTimer != nil {
		s.startupTimer.Stop()
		s.startupTimer = nil
	}
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// fixedPeriod расписание с постоянным периодом без округления до секунд
type fixedPeriod time.Duration

// Next реализует cron.Schedule
func (p fixedPeriod) Next(t time.Time) time.Time {
	return t.Add(time.Duration(p))
}

// cronLogger направляет сообщения cron в zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func newCronLogger(logger *zap.Logger) cronLogger {
	return cronLogger{sugar: logger.Named("cron").Sugar()}
}

// Info реализует cron.Logger
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Error реализует cron.Logger
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

var _ cron.Logger = cronLogger{}
