// Package filestore реализует хранение конфигурации и пользовательских инструментов в JSON-файлах.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"skillshub/internal/model"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	configFileName      = "config.json"
	customToolsFileName = "custom_tools.json"
)

// Store хранит данные в директории приложения
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// Убеждаемся, что Store реализует интерфейсы репозиториев
var (
	_ model.ConfigRepository     = (*Store)(nil)
	_ model.CustomToolRepository = (*Store)(nil)
)

// New создает файловое хранилище, создавая директорию при необходимости
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}

	return &Store{
		dir:    dir,
		logger: logger,
	}, nil
}

// Ping проверяет, что директория данных доступна
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", s.dir)
	}
	return nil
}

// GetConfig читает конфигурацию; отсутствующий файл дает конфигурацию по умолчанию
func (s *Store) GetConfig(ctx context.Context) (*model.AppConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config := model.DefaultAppConfig()
	if err := readJSONFile(s.path(configFileName), config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("Config file not found, using defaults", zap.String("dir", s.dir))
			return model.DefaultAppConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config.Normalize()
	return config, nil
}

// SaveConfig сохраняет конфигурацию целиком
func (s *Store) SaveConfig(ctx context.Context, config *model.AppConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSONFile(s.path(configFileName), config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	s.logger.Debug("Config saved", zap.String("dir", s.dir))
	return nil
}

// ListCustomTools возвращает все пользовательские инструменты
func (s *Store) ListCustomTools(ctx context.Context) ([]model.CustomTool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadTools()
}

// AddCustomTool добавляет инструмент и назначает ему идентификатор
func (s *Store) AddCustomTool(ctx context.Context, name string, globalPath, projectPath *string) (*model.CustomTool, error) {
	if err := model.ValidateRequired("name", name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tools, err := s.loadTools()
	if err != nil {
		return nil, err
	}

	tool := model.CustomTool{
		ID:          model.CustomToolIDPrefix + uuid.NewString(),
		Name:        name,
		GlobalPath:  globalPath,
		ProjectPath: projectPath,
	}
	tools = append(tools, tool)

	if err := s.saveTools(tools); err != nil {
		return nil, err
	}

	s.logger.Info("Custom tool added", zap.String("id", tool.ID), zap.String("name", name))
	return &tool, nil
}

// UpdateCustomTool обновляет инструмент по идентификатору
func (s *Store) UpdateCustomTool(ctx context.Context, id, name string, globalPath, projectPath *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tools, err := s.loadTools()
	if err != nil {
		return err
	}

	idx := indexOf(tools, id)
	if idx < 0 {
		return fmt.Errorf("custom tool with id '%s': %w", id, model.ErrNotFound)
	}

	tools[idx].Name = name
	tools[idx].GlobalPath = globalPath
	tools[idx].ProjectPath = projectPath

	return s.saveTools(tools)
}

// RemoveCustomTool удаляет инструмент по идентификатору
func (s *Store) RemoveCustomTool(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tools, err := s.loadTools()
	if err != nil {
		return err
	}

	idx := indexOf(tools, id)
	if idx < 0 {
		return fmt.Errorf("custom tool with id '%s': %w", id, model.ErrNotFound)
	}

	tools = append(tools[:idx], tools[idx+1:]...)
	if err := s.saveTools(tools); err != nil {
		return err
	}

	s.logger.Info("Custom tool removed", zap.String("id", id))
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) loadTools() ([]model.CustomTool, error) {
	var tools []model.CustomTool
	if err := readJSONFile(s.path(customToolsFileName), &tools); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.CustomTool{}, nil
		}
		return nil, fmt.Errorf("failed to read custom tools: %w", err)
	}
	return tools, nil
}

func (s *Store) saveTools(tools []model.CustomTool) error {
	if err := writeJSONFile(s.path(customToolsFileName), tools); err != nil {
		return fmt.Errorf("failed to write custom tools: %w", err)
	}
	return nil
}

func indexOf(tools []model.CustomTool, id string) int {
	for i := range tools {
		if tools[i].ID == id {
			return i
		}
	}
	return -1
}

// readJSONFile читает JSON файл
func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return nil
}

// writeJSONFile атомарно записывает JSON файл через временный файл
func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}

	return nil
}
