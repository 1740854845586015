package service

import (
	"errors"
	"skillshub/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDraft() Draft {
	return DraftFromConfig(model.DefaultAppConfig())
}

func TestValidateDraft(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Draft)
		tools  []model.CustomToolDraft
		want   []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(d *Draft) {},
			want:   []string{},
		},
		{
			name:   "bogus default strategy",
			mutate: func(d *Draft) { d.DefaultSyncStrategy = "bogus" },
			want:   []string{MsgInvalidSyncStrategy},
		},
		{
			name: "bogus tool override",
			mutate: func(d *Draft) {
				d.SetToolStrategy("cursor", "symlink")
				d.SetToolStrategy("claude", "")
			},
			want: []string{"invalid sync strategy for cursor"},
		},
		{
			name:   "negative interval",
			mutate: func(d *Draft) { d.AutoCheckUpdateInterval = -5 },
			want:   []string{MsgInvalidCheckInterval},
		},
		{
			name:   "interval overflowing duration",
			mutate: func(d *Draft) { d.AutoCheckUpdateInterval = MaxCheckIntervalMinutes + 1 },
			want:   []string{MsgInvalidCheckInterval},
		},
		{
			name:   "largest representable interval",
			mutate: func(d *Draft) { d.AutoCheckUpdateInterval = MaxCheckIntervalMinutes },
			want:   []string{},
		},
		{
			name: "cloud enabled without provider and folder",
			mutate: func(d *Draft) {
				d.CloudSyncEnabled = true
				d.SyncFolder = "   "
			},
			want: []string{MsgProviderRequired, MsgFolderRequired},
		},
		{
			name: "cloud enabled with unknown provider",
			mutate: func(d *Draft) {
				d.CloudSyncEnabled = true
				d.CloudProvider = "Dropbox"
				d.SyncFolder = "~/Dropbox"
			},
			want: []string{MsgInvalidProvider},
		},
		{
			name: "cloud disabled ignores provider",
			mutate: func(d *Draft) {
				d.CloudProvider = "Dropbox"
			},
			want: []string{},
		},
		{
			name: "folder with control characters while disabled",
			mutate: func(d *Draft) {
				d.SyncFolder = "~/Drive\x00/skills"
			},
			want: []string{MsgInvalidPathCharacters},
		},
		{
			name:   "tool without name",
			mutate: func(d *Draft) {},
			tools: []model.CustomToolDraft{
				{ID: "custom-1", Name: "  ", ProjectPath: "/abs"},
			},
			want: []string{MsgInvalidToolName},
		},
		{
			name:   "tool with control characters",
			mutate: func(d *Draft) {},
			tools: []model.CustomToolDraft{
				{ID: "custom-1", Name: "mytool", GlobalPath: "~/.my\ntool"},
			},
			want: []string{"invalid path characters: mytool"},
		},
		{
			name:   "all violations collected",
			mutate: func(d *Draft) { d.DefaultSyncStrategy = "bogus" },
			tools: []model.CustomToolDraft{
				{ID: "custom-1", Name: "one", ProjectPath: "/abs/path"},
				{ID: "custom-2", Name: "two", ProjectPath: "rel/path"},
				{ID: "custom-3", Name: ""},
			},
			want: []string{MsgInvalidSyncStrategy, "project path must be relative: one", MsgInvalidToolName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			assert.Equal(t, tt.want, ValidateDraft(d, tt.tools))
		})
	}
}

func TestValidateDraft_BogusStrategyAlwaysReported(t *testing.T) {
	mutations := []func(d *Draft){
		func(d *Draft) {},
		func(d *Draft) { d.CloudSyncEnabled = true },
		func(d *Draft) { d.AutoCheckUpdateInterval = -1 },
		func(d *Draft) { d.SyncFolder = "bad\rfolder" },
	}

	for _, mutate := range mutations {
		d := validDraft()
		mutate(&d)
		d.DefaultSyncStrategy = "bogus"
		assert.Contains(t, ValidateDraft(d, nil), MsgInvalidSyncStrategy)
	}
}

func TestValidateDraft_ProjectPaths(t *testing.T) {
	tests := []struct {
		path     string
		absolute bool
	}{
		{"/abs/path", true},
		{"~/skills", true},
		{`C:\tools\skills`, true},
		{"d:/skills", true},
		{"rel/path", false},
		{".cursor/skills", false},
		{"~skills", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tools := []model.CustomToolDraft{{ID: "custom-1", Name: "tool", ProjectPath: tt.path}}
			msgs := ValidateDraft(validDraft(), tools)
			if tt.absolute {
				assert.Contains(t, msgs, "project path must be relative: tool")
			} else {
				assert.Empty(t, msgs)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	assert.NoError(t, ValidationErrors(nil))

	err := ValidationErrors([]string{MsgProviderRequired, MsgFolderRequired})
	var verrs model.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{MsgProviderRequired, MsgFolderRequired}, verrs.Messages())
	assert.Equal(t, "provider required; folder required", err.Error())
}
