package skills

import (
	"context"
	"net/http"
	"net/http/httptest"
	"skillshub/internal/model"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:      server.URL,
		Timeout:      time.Second,
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"}, zap.NewNop())
	assert.Error(t, err)
}

func TestClient_CheckAllUnitUpdates(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/skills/updates", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"skill_id":"skill-a","current_version":"1.0.0","current_hash":"aaa","latest_version":"1.1.0","latest_hash":"bbb","has_update":true,"source_registry":"official"},
			{"skill_id":"skill-b","current_version":"2.0.0","current_hash":"ccc","latest_version":"2.0.0","latest_hash":"ccc","has_update":false,"source_registry":null}
		]`))
	}))

	results, err := client.CheckAllUnitUpdates(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].HasUpdate)
	require.NotNil(t, results[0].SourceRegistry)
	assert.Equal(t, "official", *results[0].SourceRegistry)
	assert.Nil(t, results[1].SourceRegistry)
	assert.Len(t, model.FilterAvailable(results), 1)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	results, err := client.CheckAllUnitUpdates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"skill not installed"}`))
	}))

	_, err := client.ScanUnit(context.Background(), "skill-x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill not installed")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ScanUnit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/skills/skill-a/scan", r.URL.Path)
		_, _ = w.Write([]byte(`{"skill_id":"skill-a","overall_risk":"high","findings":[{"rule_id":"R1","risk_level":"high"}]}`))
	}))

	report, err := client.ScanUnit(context.Background(), "skill-a")
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, report.OverallRisk)
	assert.True(t, report.Passed)
	require.Len(t, report.Findings, 1)
}

func TestClient_ApplyUnitUpdateIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.ApplyUnitUpdate(context.Background(), "skill-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill-a")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ApplyUnitUpdate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/skills/skill-a/update", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":"updated skill-a to 1.1.0"}`))
	}))

	result, err := client.ApplyUnitUpdate(context.Background(), "skill-a")
	require.NoError(t, err)
	assert.Equal(t, "updated skill-a to 1.1.0", result)
}

func TestClient_ScanUnitInvalidReports(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRisk model.RiskLevel
	}{
		{
			name:     "missing overall risk",
			body:     `{"skill_id":"skill-a","findings":[{"rule_id":"R1","risk_level":"block"}]}`,
			wantRisk: model.RiskUnknown,
		},
		{
			name:     "declared high with unknown finding level",
			body:     `{"skill_id":"skill-a","overall_risk":"high","findings":[{"rule_id":"R1","risk_level":"critical"}]}`,
			wantRisk: model.RiskHigh,
		},
		{
			name:     "unknown overall risk",
			body:     `{"skill_id":"skill-a","overall_risk":"critical"}`,
			wantRisk: model.RiskUnknown,
		},
		{
			name:     "not json",
			body:     `<html>bad gateway</html>`,
			wantRisk: model.RiskUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				_, _ = w.Write([]byte(tt.body))
			}))

			report, err := client.ScanUnit(context.Background(), "skill-a")
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidScanReport)
			require.NotNil(t, report)
			assert.Equal(t, tt.wantRisk, report.OverallRisk)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}
