package service

import (
	"context"
	"fmt"
	"skillshub/internal/model"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// CustomToolReconciler хранит список пользовательских инструментов и снимок их сохраненного состояния
type CustomToolReconciler struct {
	store  CustomToolStore
	logger *zap.Logger

	mu       sync.RWMutex
	tools    []model.CustomToolDraft
	snapshot map[string]model.CustomToolDraft

	commitMu sync.Mutex
}

// NewCustomToolReconciler создает новый реконсилятор инструментов
func NewCustomToolReconciler(store CustomToolStore, logger *zap.Logger) *CustomToolReconciler {
	return &CustomToolReconciler{
		store:    store,
		logger:   logger,
		snapshot: make(map[string]model.CustomToolDraft),
	}
}

// Load загружает инструменты; загруженный список считается сохраненным
func (r *CustomToolReconciler) Load(ctx context.Context) error {
	records, err := r.store.ListCustomTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to load custom tools: %w", err)
	}

	tools := make([]model.CustomToolDraft, 0, len(records))
	snapshot := make(map[string]model.CustomToolDraft, len(records))
	for _, record := range records {
		draft := record.Draft()
		tools = append(tools, draft)
		snapshot[draft.ID] = draft.Normalized()
	}

	r.mu.Lock()
	r.tools = tools
	r.snapshot = snapshot
	r.mu.Unlock()

	r.logger.Info("Custom tools loaded", zap.Int("count", len(tools)))
	return nil
}

// Tools возвращает копию текущего списка
func (r *CustomToolReconciler) Tools() []model.CustomToolDraft {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.CustomToolDraft{}, r.tools...)
}

// Edit изменяет инструмент в черновике; идентификатор изменить нельзя
func (r *CustomToolReconciler) Edit(id string, fn func(t *model.CustomToolDraft)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tools {
		if r.tools[i].ID == id {
			fn(&r.tools[i])
			r.tools[i].ID = id
			return true
		}
	}
	return false
}

// Changed возвращает нормализованные инструменты, отличающиеся от снимка
func (r *CustomToolReconciler) Changed() []model.CustomToolDraft {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.changedLocked()
}

func (r *CustomToolReconciler) changedLocked() []model.CustomToolDraft {
	changed := []model.CustomToolDraft{}
	for _, tool := range r.tools {
		normalized := tool.Normalized()
		if saved, ok := r.snapshot[tool.ID]; !ok || saved != normalized {
			changed = append(changed, normalized)
		}
	}
	return changed
}

// IsDirty сообщает о наличии несохраненных изменений
func (r *CustomToolReconciler) IsDirty() bool {
	return len(r.Changed()) > 0
}

// Add создает инструмент в хранилище и сразу включает его в снимок
func (r *CustomToolReconciler) Add(ctx context.Context, name, globalPath, projectPath string) (*model.CustomToolDraft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ValidationError{Message: MsgInvalidToolName}
	}

	record, err := r.store.AddCustomTool(ctx, name, model.OptionalPath(globalPath), model.OptionalPath(projectPath))
	if err != nil {
		return nil, fmt.Errorf("failed to add custom tool %s: %w", name, err)
	}

	draft := record.Draft()

	r.mu.Lock()
	r.tools = append(r.tools, draft)
	r.snapshot[draft.ID] = draft.Normalized()
	r.mu.Unlock()

	r.logger.Info("Custom tool added", zap.String("id", draft.ID), zap.String("name", draft.Name))
	return &draft, nil
}

// Remove удаляет инструмент из хранилища, списка и снимка
func (r *CustomToolReconciler) Remove(ctx context.Context, id string) error {
	if err := r.store.RemoveCustomTool(ctx, id); err != nil {
		return fmt.Errorf("failed to remove custom tool %s: %w", id, err)
	}

	r.mu.Lock()
	tools := r.tools[:0:0]
	for _, tool := range r.tools {
		if tool.ID != id {
			tools = append(tools, tool)
		}
	}
	r.tools = tools
	delete(r.snapshot, id)
	r.mu.Unlock()

	r.logger.Info("Custom tool removed", zap.String("id", id))
	return nil
}

// CommitChanged сохраняет все измененные инструменты.
// Снимок обновляется только если сохранились все; иначе возвращается сводная ошибка.
func (r *CustomToolReconciler) CommitChanged(ctx context.Context) error {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	changed := r.Changed()
	if len(changed) == 0 {
		return nil
	}

	var result *multierror.Error
	for _, tool := range changed {
		err := r.store.UpdateCustomTool(ctx, tool.ID, tool.Name,
			model.OptionalPath(tool.GlobalPath), model.OptionalPath(tool.ProjectPath))
		if err != nil {
			r.logger.Error("Failed to update custom tool", zap.String("id", tool.ID), zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("custom tool %s: %w", tool.ID, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to update %d of %d custom tools: %w", len(result.Errors), len(changed), err)
	}

	r.mu.Lock()
	for _, tool := range changed {
		r.snapshot[tool.ID] = tool
	}
	r.mu.Unlock()

	r.logger.Info("Custom tools committed", zap.Int("count", len(changed)))
	return nil
}
