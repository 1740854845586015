package service

import (
	"context"
	"errors"
	"skillshub/internal/config"
	"skillshub/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type servicesFixture struct {
	configs *fakeConfigStore
	tools   *fakeToolStore
	checker *fakeChecker
	sink    *fakeSink
	s       *Services
}

func newServicesFixture(t *testing.T, stored *model.AppConfig) *servicesFixture {
	t.Helper()
	f := &servicesFixture{
		configs: newFakeConfigStore(stored),
		tools:   seededToolStore(),
		checker: &fakeChecker{results: sampleResults()},
		sink:    &fakeSink{results: sampleResults()[:1]},
	}

	cfg := &config.Config{
		StartupCheckDelay:  20 * time.Millisecond,
		CheckTimeout:       time.Second,
		ConfigPollInterval: time.Hour,
	}

	f.s = NewServices(Dependencies{
		Config:      f.configs,
		CustomTools: f.tools,
		Checker:     f.checker,
		Scanner:     &fakeScanner{report: &model.ScanReport{OverallRisk: model.RiskLow}},
		Applier:     &fakeApplier{},
		Results:     f.sink,
	}, cfg, newTestMetrics(), zap.NewNop())
	t.Cleanup(f.s.Teardown)
	return f
}

func TestServices_StartRunsStartupCheck(t *testing.T) {
	f := newServicesFixture(t, model.DefaultAppConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.s.Start(ctx)

	// Сохраненные результаты доступны до первой проверки
	assert.Len(t, f.s.Scheduler.Updates(), 1)
	assert.False(t, f.s.IsDirty())
	assert.Len(t, f.s.Tools.Tools(), 2)

	require.Eventually(t, func() bool { return f.checker.count() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(f.s.Scheduler.Updates()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestServices_SaveSettings(t *testing.T) {
	stored := model.DefaultAppConfig()
	stored.CheckUpdatesOnStartup = false
	f := newServicesFixture(t, stored)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.s.Start(ctx)

	f.s.Drafts.Update(func(d *Draft) { d.AutoCheckUpdateInterval = 1 })
	f.s.Tools.Edit("custom-a", func(tool *model.CustomToolDraft) { tool.Name = "alpha2" })
	require.True(t, f.s.IsDirty())

	require.NoError(t, f.s.SaveSettings(ctx))
	assert.False(t, f.s.IsDirty())

	saved, _ := f.configs.saved()
	assert.Equal(t, 1, saved.AutoCheckUpdateInterval)
	assert.Equal(t, []string{"custom-a"}, f.tools.updates)

	// Новый интервал применяется сразу после сохранения
	f.s.ConfigWatcher.mu.Lock()
	applied := f.s.ConfigWatcher.intervalMinutes
	f.s.ConfigWatcher.mu.Unlock()
	assert.Equal(t, 1, applied)

	next := f.s.Metrics.GetStats()["checks"].(map[string]interface{})["next_check"]
	assert.NotEqual(t, "never", next)
}

func TestServices_SaveSettingsValidatesTools(t *testing.T) {
	f := newServicesFixture(t, model.DefaultAppConfig())
	f.s.Start(context.Background())

	f.s.Drafts.Update(func(d *Draft) { d.AutoSyncOnInstall = false })
	f.s.Tools.Edit("custom-b", func(tool *model.CustomToolDraft) { tool.ProjectPath = "/abs/path" })

	err := f.s.SaveSettings(context.Background())
	var verr *CommitValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"project path must be relative: beta"}, verr.Messages)

	_, saves := f.configs.saved()
	assert.Equal(t, 0, saves)
	assert.Empty(t, f.tools.updates)
	assert.True(t, f.s.IsDirty())
}

type fakeCloser struct {
	err    error
	closed bool
}

func (c *fakeCloser) Close() error {
	c.closed = true
	return c.err
}

func TestCloseAll(t *testing.T) {
	ok := &fakeCloser{}
	failing := &fakeCloser{err: errUnavailable}

	err := CloseAll(ok, nil, failing)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnavailable)
	assert.True(t, ok.closed)
	assert.True(t, failing.closed)

	assert.NoError(t, CloseAll(&fakeCloser{}))
}
