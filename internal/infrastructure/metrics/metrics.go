// Package metrics реализует метрики проверок и обновлений скиллов.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "skillshub"

var _ Interface = (*Metrics)(nil)

// Metrics хранит счетчики в памяти и дублирует их в собственный реестр Prometheus
type Metrics struct {
	mu sync.RWMutex

	// Проверки обновлений
	totalChecks      int64
	failedChecks     int64
	lastCheck        time.Time
	lastCheckTime    time.Duration
	lastCheckError   string
	availableUpdates int
	nextCheck        time.Time

	// Обновления
	updates         map[string]int64
	scanFailures    int64
	updatesInFlight int

	uptime time.Time

	registry       *prometheus.Registry
	checksTotal    *prometheus.CounterVec
	checkDuration  prometheus.Histogram
	availableGauge prometheus.Gauge
	updatesTotal   *prometheus.CounterVec
	scanFailTotal  prometheus.Counter
	inFlightGauge  prometheus.Gauge
	nextCheckGauge prometheus.Gauge

	logger *zap.Logger
}

// NewMetrics создает новую систему метрик
func NewMetrics(logger *zap.Logger) *Metrics {
	m := &Metrics{
		updates:  make(map[string]int64),
		uptime:   time.Now(),
		registry: prometheus.NewRegistry(),
		checksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_checks_total",
			Help:      "Update checks by status",
		}, []string{"status"}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_check_duration_seconds",
			Help:      "Duration of update checks",
			Buckets:   prometheus.DefBuckets,
		}),
		availableGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "updates_available",
			Help:      "Skills with an available update after the last check",
		}),
		updatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skill_updates_total",
			Help:      "Skill updates by outcome",
		}, []string{"outcome"}),
		scanFailTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_failures_total",
			Help:      "Scanner infrastructure failures before update",
		}),
		inFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "updates_in_flight",
			Help:      "Skill updates currently running",
		}),
		nextCheckGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "next_update_check_timestamp_seconds",
			Help:      "Unix time of the next scheduled update check, 0 when none",
		}),
		logger: logger,
	}

	m.registry.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.availableGauge,
		m.updatesTotal,
		m.scanFailTotal,
		m.inFlightGauge,
		m.nextCheckGauge,
	)

	return m
}

// Handler возвращает HTTP обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает реестр Prometheus
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordCheck записывает завершенную проверку обновлений
func (m *Metrics) RecordCheck(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalChecks++
	m.lastCheck = time.Now()
	m.lastCheckTime = duration
	m.checkDuration.Observe(duration.Seconds())

	if err != nil {
		m.failedChecks++
		m.lastCheckError = err.Error()
		m.checksTotal.WithLabelValues("failed").Inc()
		return
	}

	m.lastCheckError = ""
	m.checksTotal.WithLabelValues("ok").Inc()
}

// SetAvailableUpdates устанавливает число доступных обновлений
func (m *Metrics) SetAvailableUpdates(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.availableUpdates = count
	m.availableGauge.Set(float64(count))
}

// SetNextCheck устанавливает время следующей плановой проверки
func (m *Metrics) SetNextCheck(next time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextCheck = next
	if next.IsZero() {
		m.nextCheckGauge.Set(0)
		return
	}
	m.nextCheckGauge.Set(float64(next.Unix()))
}

// RecordUpdate записывает исход обновления скилла
func (m *Metrics) RecordUpdate(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updates[outcome]++
	m.updatesTotal.WithLabelValues(outcome).Inc()
}

// RecordScanFailure записывает сбой сканера
func (m *Metrics) RecordScanFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanFailures++
	m.scanFailTotal.Inc()
}

// SetUpdatesInFlight устанавливает число выполняющихся обновлений
func (m *Metrics) SetUpdatesInFlight(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updatesInFlight = count
	m.inFlightGauge.Set(float64(count))
}

// GetStats возвращает все метрики в виде map
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	updates := make(map[string]int64, len(m.updates))
	for outcome, count := range m.updates {
		updates[outcome] = count
	}

	return map[string]interface{}{
		"checks": map[string]interface{}{
			"total":             m.totalChecks,
			"failed":            m.failedChecks,
			"failure_rate":      m.calculateFailureRate(),
			"last_check":        m.formatTime(m.lastCheck),
			"last_duration":     m.formatDuration(m.lastCheckTime),
			"last_error":        m.lastCheckError,
			"available_updates": m.availableUpdates,
			"next_check":        m.formatTime(m.nextCheck),
		},
		"updates": map[string]interface{}{
			"by_outcome":    updates,
			"scan_failures": m.scanFailures,
			"in_flight":     m.updatesInFlight,
		},
		"system": map[string]interface{}{
			"uptime": m.formatDuration(time.Since(m.uptime)),
		},
	}
}

// calculateFailureRate вычисляет процент неудачных проверок
func (m *Metrics) calculateFailureRate() float64 {
	if m.totalChecks > 0 {
		return float64(m.failedChecks) / float64(m.totalChecks) * 100
	}
	return 0
}

// formatTime форматирует время в RFC3339 или возвращает "never"
func (m *Metrics) formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}

// formatDuration форматирует duration с двумя знаками после запятой
func (m *Metrics) formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
