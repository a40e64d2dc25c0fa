package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/chain"
	"github.com/BuzzLyutic/habit-tracker/internal/collab"
	"github.com/BuzzLyutic/habit-tracker/internal/config"
	"github.com/BuzzLyutic/habit-tracker/internal/handler"
	"github.com/BuzzLyutic/habit-tracker/internal/ipfs"
	"github.com/BuzzLyutic/habit-tracker/internal/mailer"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/internal/session"
	"github.com/BuzzLyutic/habit-tracker/internal/web"
	"github.com/BuzzLyutic/habit-tracker/internal/worker"
	"github.com/BuzzLyutic/habit-tracker/migrations"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()

	// Подключаем логгер
	logger := newLogger(cfg.AppEnv)
	defer logger.Sync()

	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to Database", zap.Error(err)) // дальнейшая работа теряет смысл
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping the Database", zap.Error(err))
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	logger.Info("Successfully connected to the Database!")

	// Сессии: Redis, если задан, иначе в памяти процесса
	var sessions session.Store
	if cfg.RedisURL != "" {
		client, err := session.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		sessions = session.NewRedisStore(client, cfg.SessionTTL)
		logger.Info("Sessions stored in Redis")
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		logger.Warn("REDIS_URL not set, sessions are kept in memory")
	}

	// Внешние сервисы необязательны. Интерфейсы остаются nil, если сервис не настроен.
	var payloads service.PayloadStore
	var ipfsClient *ipfs.Client
	if cfg.IPFSURL != "" {
		ipfsClient = ipfs.New(cfg.IPFSURL, logger)
		payloads = ipfsClient
	}

	var anchor service.ListAnchor
	if cfg.Chain.Enabled() {
		client, err := chain.Dial(ctx, chain.Config{
			URL:        cfg.Chain.URL,
			Contract:   cfg.Chain.Contract,
			PrivateKey: cfg.Chain.PrivateKey,
			ChainID:    cfg.Chain.ChainID,
			Timeout:    cfg.Chain.Timeout,
		}, logger)
		if err != nil {
			logger.Warn("Blockchain anchoring disabled", zap.Error(err))
		} else {
			defer client.Close()
			anchor = client
		}
	}

	userRepo := repo.NewUserRepo(pool)
	listRepo := repo.NewListRepo(pool)
	taskRepo := repo.NewTaskRepo(pool)

	authService := service.NewAuthService(userRepo, mailer.New(cfg.SendGridAPIKey, cfg.MailFrom, logger),
		cfg.SecretKey, cfg.BaseURL, logger)
	taskService := service.NewTaskService(taskRepo, payloads, logger)
	listService := service.NewListService(listRepo, userRepo, taskRepo, taskService, anchor, logger)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}

	router := handler.NewRouter(handler.Deps{
		Auth:         authService,
		Tasks:        taskService,
		Lists:        listService,
		Sessions:     sessions,
		Hub:          collab.NewHub(logger),
		Renderer:     renderer,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: strings.HasPrefix(cfg.BaseURL, "https://"),
		AdminKey:     cfg.AdminKey,
		BaseURL:      cfg.BaseURL,
		Logger:       logger,
	})

	// Воркеры публикуют задачи в IPFS
	var pinWorkers *worker.Pool
	if ipfsClient != nil && cfg.WorkerCount > 0 {
		pinWorkers = worker.NewPool(pool, ipfsClient, logger, cfg.WorkerCount, cfg.PinInterval)
		pinWorkers.Start(ctx)
	}

	srv := http.Server{ // Создаем сервер
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	if pinWorkers != nil {
		pinWorkers.Stop()
	}
	// Дождаться отправленных в блокчейн транзакций
	listService.Wait()
	logger.Info("Server stopped successfully!")
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
