// Package health реализует HTTP сервер состояния процесса: health, ready, metrics и статус проверок.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
)

const checkTimeout = 5 * time.Second

// Server представляет HTTP сервер для health check
type Server struct {
	server    *http.Server
	logger    *zap.Logger
	addr      string
	startTime time.Time
	checks    map[string]ComponentCheck
	status    func() interface{}
}

var _ ServerInterface = (*Server)(nil)

// Status представляет статус здоровья системы
type Status struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components,omitempty"`
}

// Options зависимости сервера
type Options struct {
	// Metrics обработчик /metrics, может быть nil
	Metrics http.Handler
	// Checks проверки компонентов для /ready
	Checks map[string]ComponentCheck
	// Status возвращает состояние планировщика для /status
	Status func() interface{}
}

// NewServer создает новый health check сервер
func NewServer(port string, opts Options, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	hs := &Server{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:    logger,
		addr:      ":" + port,
		startTime: time.Now(),
		checks:    opts.Checks,
		status:    opts.Status,
	}

	// Регистрируем маршруты
	mux.HandleFunc("/health", hs.healthHandler)
	mux.HandleFunc("/ready", hs.readyHandler)
	if opts.Status != nil {
		mux.HandleFunc("/status", hs.statusHandler)
	}
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics)
	}

	return hs
}

// Handler возвращает обработчик маршрутов
func (hs *Server) Handler() http.Handler {
	return hs.server.Handler
}

// Start запускает health check сервер
func (hs *Server) Start() error {
	hs.logger.Info("Starting health check server", zap.String("addr", hs.addr))
	if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}

// Stop останавливает health check сервер
func (hs *Server) Stop(ctx context.Context) error {
	hs.logger.Info("Stopping health check server")
	return hs.server.Shutdown(ctx)
}

// formatDuration форматирует время в читаемый формат (например: 8s)
func formatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%ds", seconds)
}

// healthHandler обрабатывает запросы /health
func (hs *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	hs.writeJSON(w, http.StatusOK, Status{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    formatDuration(time.Since(hs.startTime)),
		Version:   "1.0.0",
	})
}

// readyHandler обрабатывает запросы /ready
func (hs *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	components := hs.checkComponents(r.Context())

	overallStatus := "ready"
	for _, status := range components {
		if status != "healthy" {
			overallStatus = "unhealthy"
			break
		}
	}

	code := http.StatusOK
	if overallStatus != "ready" {
		code = http.StatusServiceUnavailable
		hs.logger.Warn("Readiness check failed", zap.Any("components", components))
	}

	hs.writeJSON(w, code, Status{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Uptime:     formatDuration(time.Since(hs.startTime)),
		Version:    "1.0.0",
		Components: components,
	})
}

// statusHandler обрабатывает запросы /status
func (hs *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	hs.writeJSON(w, http.StatusOK, hs.status())
}

// checkComponents проверяет состояние всех компонентов
func (hs *Server) checkComponents(ctx context.Context) map[string]string {
	components := make(map[string]string, len(hs.checks))

	names := make([]string, 0, len(hs.checks))
	for name := range hs.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := hs.checks[name](checkCtx)
		cancel()

		if err != nil {
			components[name] = "unhealthy"
			hs.logger.Error("Component check failed", zap.String("component", name), zap.Error(err))
			continue
		}
		components[name] = "healthy"
	}

	return components
}

func (hs *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		hs.logger.Error("Failed to encode response", zap.Error(err))
	}
}
