// Package skills содержит HTTP клиент сервиса скиллов: проверка обновлений, сканирование и применение обновлений.
package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"skillshub/internal/model"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Config представляет конфигурацию клиента
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Client реализует коллабораторов проверки, сканирования и применения обновлений
type Client struct {
	baseURL *url.URL
	client  *http.Client
	config  Config
	logger  *zap.Logger
}

// NewClient создает новый клиент сервиса скиллов
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid skills api url %q: %w", config.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid skills api url %q: scheme and host are required", config.BaseURL)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
		config:  config,
		logger:  logger,
	}, nil
}

// CheckAllUnitUpdates возвращает статус обновлений всех установленных скиллов
func (c *Client) CheckAllUnitUpdates(ctx context.Context) ([]model.UpdateCheckResult, error) {
	var results []model.UpdateCheckResult
	err := c.withRetry(ctx, "check updates", func() error {
		return c.do(ctx, http.MethodGet, "/api/skills/updates", &results)
	})
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.UpdateCheckResult{}
	}
	return results, nil
}

// ScanUnit запускает проверку безопасности скилла.
// При невалидном отчете возвращает частично разобранный отчет и ошибку model.ErrInvalidScanReport.
func (c *Client) ScanUnit(ctx context.Context, skillID string) (*model.ScanReport, error) {
	var body []byte
	err := c.withRetry(ctx, "scan skill", func() error {
		var err error
		body, err = c.request(ctx, http.MethodPost, "/api/skills/"+url.PathEscape(skillID)+"/scan")
		return err
	})
	if err != nil {
		return nil, err
	}

	report := new(model.ScanReport)
	if err := json.Unmarshal(body, report); err != nil {
		if !errors.Is(err, model.ErrInvalidScanReport) {
			err = fmt.Errorf("%w: %v", model.ErrInvalidScanReport, err)
		}
		return report, fmt.Errorf("failed to decode scan report for %s: %w", skillID, err)
	}
	return report, nil
}

// applyResponse ответ на применение обновления
type applyResponse struct {
	Result string `json:"result"`
}

// ApplyUnitUpdate применяет обновление скилла; запрос не повторяется
func (c *Client) ApplyUnitUpdate(ctx context.Context, skillID string) (string, error) {
	var resp applyResponse
	if err := c.do(ctx, http.MethodPost, "/api/skills/"+url.PathEscape(skillID)+"/update", &resp); err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
		return "", fmt.Errorf("failed to apply update for %s: %w", skillID, err)
	}
	return resp.Result, nil
}

// withRetry повторяет операцию с экспоненциальным backoff; ошибки 4xx не повторяются
func (c *Client) withRetry(ctx context.Context, operation string, fn func() error) error {
	policy := backoff.NewExponentialBackOff()
	if c.config.InitialDelay > 0 {
		policy.InitialInterval = c.config.InitialDelay
	}
	if c.config.MaxDelay > 0 {
		policy.MaxInterval = c.config.MaxDelay
	}
	policy.MaxElapsedTime = 0

	retries := c.config.MaxRetries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx)

	err := backoff.RetryNotify(fn, b, func(err error, delay time.Duration) {
		c.logger.Debug("Skills API request failed, retrying",
			zap.String("operation", operation),
			zap.Duration("delay", delay),
			zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	return nil
}

// apiError ошибка, возвращенная сервисом
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// do выполняет запрос и декодирует JSON ответ в out
func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	body, err := c.request(ctx, method, path)
	if err != nil {
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// request выполняет запрос и возвращает тело успешного ответа
func (c *Client) request(ctx context.Context, method, path string) ([]byte, error) {
	endpoint := c.baseURL.String() + path

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
		if resp.StatusCode < 500 {
			return nil, backoff.Permanent(apiErr)
		}
		return nil, apiErr
	}

	return body, nil
}

// errorMessage извлекает текст ошибки из тела ответа
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
