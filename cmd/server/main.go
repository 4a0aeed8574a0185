package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/civic-reports-backend/internal/config"
	"github.com/ignatzorin/civic-reports-backend/internal/db"
	httpHandlers "github.com/ignatzorin/civic-reports-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/civic-reports-backend/internal/http/router"
	"github.com/ignatzorin/civic-reports-backend/internal/logger"
	"github.com/ignatzorin/civic-reports-backend/internal/repository"
	"github.com/ignatzorin/civic-reports-backend/internal/service"
	"github.com/ignatzorin/civic-reports-backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	photoStorage, err := storage.NewPhotoStorage(cfg.UploadsPath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	authorityRepo := repository.NewAuthorityRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, authorityRepo, tokenManager)
	reportService := service.NewReportService(reportRepo)
	statsService := service.NewStatsService(reportRepo)

	// В development наполняем пустую базу демо-данными.
	if cfg.Env == "development" {
		seedService := service.NewSeedService(userRepo, reportRepo)
		if err := seedService.Seed(ctx); err != nil {
			log.Printf("main: не удалось наполнить базу демо-данными: %v", err)
		}
	}

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	reportHandler := httpHandlers.NewReportHandler(reportService, photoStorage)
	statsHandler := httpHandlers.NewStatsHandler(statsService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, reportHandler, statsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
