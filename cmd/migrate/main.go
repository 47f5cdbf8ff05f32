// Точка входа утилиты миграций слоя данных службы поддержки.
// Загружает конфигурацию, применяет миграции PostgreSQL и проверяет
// подключение через пул. HTTP-поверхности здесь нет — слой данных
// встраивается библиотекой, а этой утилитой готовится схема БД.
package main

import (
	"context"
	"log/slog"
	"os"

	"supportdesk/internal/config"
	"supportdesk/internal/database"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Миграции слоя данных запускаются",
		slog.String("version", config.Version),
		slog.String("database", cfg.DBName),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool) — проверка схемы после миграций
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	status, msg := database.NewReadinessChecker(pool).CheckReady()
	if status != "ok" {
		logger.Error("БД не готова после миграций", slog.String("message", msg))
		os.Exit(1)
	}

	logger.Info("Миграции применены, схема готова")
}
