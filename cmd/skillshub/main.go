// Package main запускает фоновую службу SkillsHub.
package main

import (
	"context"
	"os"
	"os/signal"
	"skillshub/internal/app"
	"skillshub/internal/config"
	"skillshub/pkg/logger"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Config{Level: os.Getenv("LOG_LEVEL")})
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Инициализация логгера
	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	// Создание контекста
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received")
		cancel()
	}()

	// Создание приложения через фабрику
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create application", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		log.Error("Application stopped with error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}
