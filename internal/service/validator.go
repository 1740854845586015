package service

import (
	"fmt"
	"skillshub/internal/model"
	"sort"
	"strings"
)

// Сообщения валидации черновика
const (
	MsgInvalidSyncStrategy    = "invalid sync strategy"
	MsgProviderRequired       = "provider required"
	MsgInvalidProvider        = "invalid provider"
	MsgFolderRequired         = "folder required"
	MsgInvalidPathCharacters  = "invalid path characters"
	MsgInvalidToolName        = "invalid tool name"
	MsgProjectPathNotRelative = "project path must be relative"
	MsgInvalidCheckInterval   = "invalid check interval"
)

// ValidateDraft проверяет черновик и пользовательские инструменты.
// Все нарушения собираются; пустой результат означает валидный черновик.
func ValidateDraft(d Draft, tools []model.CustomToolDraft) []string {
	errs := []string{}

	if !model.SyncStrategy(d.DefaultSyncStrategy).IsValid() {
		errs = append(errs, MsgInvalidSyncStrategy)
	}

	toolIDs := make([]string, 0, len(d.ToolSyncStrategies))
	for toolID := range d.ToolSyncStrategies {
		toolIDs = append(toolIDs, toolID)
	}
	sort.Strings(toolIDs)
	for _, toolID := range toolIDs {
		strategy := d.ToolSyncStrategies[toolID]
		if strategy != "" && !model.SyncStrategy(strategy).IsValid() {
			errs = append(errs, fmt.Sprintf("%s for %s", MsgInvalidSyncStrategy, toolID))
		}
	}

	if d.AutoCheckUpdateInterval < 0 || d.AutoCheckUpdateInterval > MaxCheckIntervalMinutes {
		errs = append(errs, MsgInvalidCheckInterval)
	}

	if d.CloudSyncEnabled {
		switch {
		case d.CloudProvider == "":
			errs = append(errs, MsgProviderRequired)
		case !model.CloudProvider(d.CloudProvider).IsValid():
			errs = append(errs, MsgInvalidProvider)
		}
		if strings.TrimSpace(d.SyncFolder) == "" {
			errs = append(errs, MsgFolderRequired)
		}
	}

	if d.SyncFolder != "" && model.HasControlChars(d.SyncFolder) {
		errs = append(errs, MsgInvalidPathCharacters)
	}

	for _, tool := range tools {
		if msg := validateTool(tool.Normalized()); msg != "" {
			errs = append(errs, msg)
		}
	}

	return errs
}

// validateTool возвращает первое нарушение для инструмента
func validateTool(tool model.CustomToolDraft) string {
	if tool.Name == "" {
		return MsgInvalidToolName
	}
	if model.HasControlChars(tool.GlobalPath) || model.HasControlChars(tool.ProjectPath) {
		return fmt.Sprintf("%s: %s", MsgInvalidPathCharacters, tool.Name)
	}
	if tool.ProjectPath != "" && model.IsAbsolutePath(tool.ProjectPath) {
		return fmt.Sprintf("%s: %s", MsgProjectPathNotRelative, tool.Name)
	}
	return ""
}

// ValidationErrors оборачивает сообщения в ошибку модели
func ValidationErrors(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	errs := make(model.ValidationErrors, 0, len(messages))
	for _, msg := range messages {
		errs = append(errs, model.ValidationError{Message: msg})
	}
	return errs
}
