// Package model содержит модели данных приложения.
package model

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// CustomToolIDPrefix префикс идентификаторов пользовательских инструментов
const CustomToolIDPrefix = "custom-"

// CustomTool представляет пользовательский инструмент в хранилище
type CustomTool struct {
	bun.BaseModel `bun:"table:skillshub.custom_tools"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	GlobalPath  *string   `bun:"global_path" json:"global_path"`
	ProjectPath *string   `bun:"project_path" json:"project_path"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"-"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"-"`
}

// Draft возвращает редактируемую копию инструмента
func (t CustomTool) Draft() CustomToolDraft {
	return CustomToolDraft{
		ID:          t.ID,
		Name:        t.Name,
		GlobalPath:  deref(t.GlobalPath),
		ProjectPath: deref(t.ProjectPath),
	}
}

// CustomToolDraft редактируемая копия пользовательского инструмента
type CustomToolDraft struct {
	ID          string
	Name        string
	GlobalPath  string
	ProjectPath string
}

// Normalized возвращает копию с обрезанными пробелами
func (d CustomToolDraft) Normalized() CustomToolDraft {
	return CustomToolDraft{
		ID:          d.ID,
		Name:        strings.TrimSpace(d.Name),
		GlobalPath:  strings.TrimSpace(d.GlobalPath),
		ProjectPath: strings.TrimSpace(d.ProjectPath),
	}
}

// OptionalPath возвращает nil для пустого пути
func OptionalPath(path string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &path
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CustomToolRepository определяет интерфейс для работы с пользовательскими инструментами
type CustomToolRepository interface {
	ListCustomTools(ctx context.Context) ([]CustomTool, error)
	AddCustomTool(ctx context.Context, name string, globalPath, projectPath *string) (*CustomTool, error)
	UpdateCustomTool(ctx context.Context, id, name string, globalPath, projectPath *string) error
	RemoveCustomTool(ctx context.Context, id string) error
}
