package service

import (
	"context"
	"errors"
	"fmt"
	"skillshub/internal/infrastructure/metrics"
	"skillshub/internal/model"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var errUnavailable = errors.New("service unavailable")

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(zap.NewNop())
}

// fakeConfigStore хранилище конфигурации в памяти
type fakeConfigStore struct {
	mu      sync.Mutex
	config  *model.AppConfig
	getErr  error
	saveErr error
	saves   int
}

func newFakeConfigStore(config *model.AppConfig) *fakeConfigStore {
	if config == nil {
		config = model.DefaultAppConfig()
	}
	return &fakeConfigStore{config: config}
}

func (f *fakeConfigStore) GetConfig(ctx context.Context) (*model.AppConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.config.Clone(), nil
}

func (f *fakeConfigStore) SaveConfig(ctx context.Context, config *model.AppConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.config = config.Clone()
	return nil
}

func (f *fakeConfigStore) set(fn func(c *model.AppConfig)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.config)
}

func (f *fakeConfigStore) saved() (*model.AppConfig, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config.Clone(), f.saves
}

// fakeToolStore хранилище инструментов в памяти
type fakeToolStore struct {
	mu        sync.Mutex
	tools     []model.CustomTool
	nextID    int
	failIDs   map[string]bool
	updates   []string
	listErr   error
	updateArg map[string][2]*string
}

func newFakeToolStore(tools ...model.CustomTool) *fakeToolStore {
	return &fakeToolStore{
		tools:     tools,
		failIDs:   map[string]bool{},
		updateArg: map[string][2]*string{},
	}
}

func (f *fakeToolStore) ListCustomTools(ctx context.Context) ([]model.CustomTool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.CustomTool{}, f.tools...), nil
}

func (f *fakeToolStore) AddCustomTool(ctx context.Context, name string, globalPath, projectPath *string) (*model.CustomTool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tool := model.CustomTool{
		ID:          fmt.Sprintf("%s%d", model.CustomToolIDPrefix, f.nextID),
		Name:        name,
		GlobalPath:  globalPath,
		ProjectPath: projectPath,
	}
	f.tools = append(f.tools, tool)
	return &tool, nil
}

func (f *fakeToolStore) UpdateCustomTool(ctx context.Context, id, name string, globalPath, projectPath *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.failIDs[id] {
		return errUnavailable
	}
	f.updateArg[id] = [2]*string{globalPath, projectPath}
	for i := range f.tools {
		if f.tools[i].ID == id {
			f.tools[i].Name = name
			f.tools[i].GlobalPath = globalPath
			f.tools[i].ProjectPath = projectPath
			return nil
		}
	}
	return model.ErrNotFound
}

func (f *fakeToolStore) RemoveCustomTool(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tools {
		if f.tools[i].ID == id {
			f.tools = append(f.tools[:i], f.tools[i+1:]...)
			return nil
		}
	}
	return model.ErrNotFound
}

func (f *fakeToolStore) setFailing(id string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failIDs[id] = fail
}

// fakeChecker проверка обновлений со счетчиком вызовов
type fakeChecker struct {
	calls   int32
	mu      sync.Mutex
	results []model.UpdateCheckResult
	err     error
	// gate, если задан, блокирует проверку до закрытия
	gate chan struct{}
}

func (f *fakeChecker) CheckAllUnitUpdates(ctx context.Context) ([]model.UpdateCheckResult, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.UpdateCheckResult{}, f.results...), nil
}

func (f *fakeChecker) count() int {
	return int(atomic.LoadInt32(&f.calls))
}

func (f *fakeChecker) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// fakeScanner сканер с заданным отчетом или ошибкой
type fakeScanner struct {
	calls  int32
	report *model.ScanReport
	err    error
	// partial возвращает отчет вместе с ошибкой, как клиент при невалидном отчете
	partial bool
}

func (f *fakeScanner) ScanUnit(ctx context.Context, skillID string) (*model.ScanReport, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil && !f.partial {
		return nil, f.err
	}
	report := *f.report
	report.SkillID = skillID
	return &report, f.err
}

// fakeApplier применение обновления; gate позволяет удерживать вызов
type fakeApplier struct {
	calls   int32
	err     error
	gate    chan struct{}
	started chan string
}

func (f *fakeApplier) ApplyUnitUpdate(ctx context.Context, skillID string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- skillID
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-time.After(5 * time.Second):
			return "", errors.New("gate timeout")
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return "updated " + skillID, nil
}

func (f *fakeApplier) count() int {
	return int(atomic.LoadInt32(&f.calls))
}

// fakeSink сохраняет результаты проверки в памяти
type fakeSink struct {
	mu      sync.Mutex
	results []model.UpdateCheckResult
	calls   int
}

func (f *fakeSink) ReplaceAll(ctx context.Context, results []model.UpdateCheckResult, checkedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.results = append([]model.UpdateCheckResult{}, results...)
	return nil
}

func (f *fakeSink) GetAll(ctx context.Context) ([]model.UpdateCheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.UpdateCheckResult{}, f.results...), nil
}

func strPtr(s string) *string {
	return &s
}
