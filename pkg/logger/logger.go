// Package logger содержит настройку логгера.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config представляет настройки логирования
type Config struct {
	Level      string
	Path       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
}

// New создает новый логгер с выводом в stdout и в файл с ротацией
func New(cfg Config) *zap.Logger {
	level := parseLevel(cfg.Level)

	// Настраиваем кодировщик
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   resolvePath(cfg.Path),
			MaxSize:    orDefault(cfg.MaxSize, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAge, 28),
			Compress:   true,
		}),
		level,
	)

	core := zapcore.NewTee(consoleCore, fileCore)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// parseLevel разбирает уровень логирования, по умолчанию info
func parseLevel(level string) zapcore.Level {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return parsed
}

// resolvePath возвращает путь к файлу логов, создавая директорию при необходимости
func resolvePath(path string) string {
	if path == "" {
		path = filepath.Join("logs", "skillshub.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		// Если директорию создать не удалось, пишем в текущую
		return filepath.Base(path)
	}
	return path
}

func orDefault(value, def int) int {
	if value <= 0 {
		return def
	}
	return value
}
