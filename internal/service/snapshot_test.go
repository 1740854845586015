package service

import (
	"skillshub/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() *model.AppConfig {
	provider := model.CloudProviderGoogleDrive
	config := model.DefaultAppConfig()
	config.DefaultSyncStrategy = model.SyncStrategyLink
	config.ToolSyncStrategies = map[string]model.SyncStrategy{
		"cursor": model.SyncStrategyCopy,
		"claude": model.SyncStrategyLink,
		"codex":  model.SyncStrategyAuto,
	}
	config.AutoCheckUpdateInterval = 30
	config.TrustedSources = []string{"github.com/acme", "clawhub"}
	config.CloudSync = model.CloudSyncConfig{
		Enabled:    true,
		Provider:   &provider,
		SyncFolder: strPtr("~/Drive/skills"),
		AutoSync:   true,
		LastSync:   strPtr("2026-01-01T10:00:00Z"),
	}
	return config
}

func TestSerializeSnapshot_IgnoresLastSync(t *testing.T) {
	a := sampleConfig()
	b := sampleConfig()
	b.CloudSync.LastSync = strPtr("2026-06-01T08:30:00Z")

	assert.Equal(t, SerializeSnapshot(a), SerializeSnapshot(b))

	b.CloudSync.LastSync = nil
	assert.Equal(t, SerializeSnapshot(a), SerializeSnapshot(b))

	// Исходная конфигурация не изменяется
	require.NotNil(t, a.CloudSync.LastSync)
	assert.Equal(t, "2026-01-01T10:00:00Z", *a.CloudSync.LastSync)
}

func TestSerializeSnapshot_InsertionOrderIndependent(t *testing.T) {
	a := sampleConfig()

	b := sampleConfig()
	b.ToolSyncStrategies = map[string]model.SyncStrategy{}
	b.ToolSyncStrategies["codex"] = model.SyncStrategyAuto
	b.ToolSyncStrategies["claude"] = model.SyncStrategyLink
	b.ToolSyncStrategies["cursor"] = model.SyncStrategyCopy

	assert.Equal(t, SerializeSnapshot(a), SerializeSnapshot(b))
}

func TestSerializeSnapshot_DetectsChanges(t *testing.T) {
	base := SerializeSnapshot(sampleConfig())

	changed := sampleConfig()
	changed.BlockHighRisk = false
	assert.NotEqual(t, base, SerializeSnapshot(changed))

	changed = sampleConfig()
	changed.TrustedSources = []string{"clawhub", "github.com/acme"}
	assert.NotEqual(t, base, SerializeSnapshot(changed), "trusted sources keep order")
}

func TestSerializeSnapshot_RoundTrip(t *testing.T) {
	configs := []*model.AppConfig{
		model.DefaultAppConfig(),
		sampleConfig(),
		{DefaultSyncStrategy: model.SyncStrategyCopy},
	}

	for _, config := range configs {
		serialized := SerializeSnapshot(config)
		restored, err := DeserializeSnapshot(serialized)
		require.NoError(t, err)
		assert.Equal(t, serialized, SerializeSnapshot(restored))
		assert.Nil(t, restored.CloudSync.LastSync)
	}
}

func TestDeserializeSnapshot_Invalid(t *testing.T) {
	_, err := DeserializeSnapshot("{not json")
	assert.Error(t, err)
}

func TestSerializeSnapshot_Nil(t *testing.T) {
	assert.Equal(t, "", SerializeSnapshot(nil))
}
