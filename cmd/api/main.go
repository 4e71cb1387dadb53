package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-hr-backend/config"
	_ "go-hr-backend/docs" // Important for Swagger
	v1 "go-hr-backend/internal/delivery/http/v1"
	"go-hr-backend/internal/domain"
	"go-hr-backend/internal/repository/memory"
	"go-hr-backend/internal/repository/postgres"
	"go-hr-backend/internal/usecase"
	"go-hr-backend/pkg/database"
	"go-hr-backend/pkg/logger"
	"go-hr-backend/pkg/queue"
	"go-hr-backend/pkg/redis"
	"go-hr-backend/pkg/security"
	"go-hr-backend/pkg/storage"
	"go-hr-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

const purgeInterval = 10 * time.Minute

// @title           HR Candidate Tracking API
// @version         1.0
// @description     Candidate applications, resume uploads and admin status tracking.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey AdminHeader
// @in header
// @name X-ADMIN
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	audit := security.NewAuditLogger("hr-backend", cfg.GinMode)
	security.SetDefault(audit)
	defer audit.Sync()
	logger.Log.Info("Starting HR backend", "port", cfg.Port, "store", cfg.StoreDriver, "storage", cfg.Storage.Driver)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Setup Stores
	candidateRepo, uploadRepo, closeStore, err := openStores(rootCtx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	checks := map[string]usecase.Checker{}

	files, mediaRoot, err := openFileStore(rootCtx, cfg)
	if err != nil {
		logger.Log.Error("Failed to open file storage", "error", err)
		os.Exit(1)
	}
	if s3Store, ok := files.(*storage.S3Store); ok {
		checks["storage"] = s3Store.Ping
	}

	// 4. Optional collaborators
	if cfg.Redis.URL != "" {
		if err := redis.Initialize(rootCtx, redis.Config{URL: cfg.Redis.URL, Password: cfg.Redis.Password}); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		} else {
			checks["redis"] = redis.HealthCheck
			defer redis.Close()
		}
	} else {
		logger.Log.Warn("REDIS_URL not set, rate limiting uses process memory")
	}

	notifier, closeNotifier := openNotifier(cfg, checks)
	defer closeNotifier()

	// 5. Setup UseCases
	validate := validation.MustNew()
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, uploadRepo, files, validate, usecase.CandidateConfig{
		PageSize:   cfg.PageSize,
		PresignTTL: cfg.PresignTTL(),
	})
	statusUC := usecase.NewStatusUsecase(candidateRepo, notifier, validate)
	uploadUC := usecase.NewUploadUsecase(uploadRepo, files, usecase.UploadConfig{
		MaxBytes: cfg.UploadMaxBytes(),
		TTL:      cfg.UploadTTL(),
	})
	healthUC := usecase.NewHealthUsecase(candidateRepo, checks)

	go purgeLoop(rootCtx, uploadUC)

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CandidateUC: candidateUC,
		StatusUC:    statusUC,
		UploadUC:    uploadUC,
		HealthUC:    healthUC,
		Config:      cfg,
		MediaRoot:   mediaRoot,
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-rootCtx.Done():
	}
	logger.Log.Info("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

func openStores(ctx context.Context, cfg *config.Config) (domain.CandidateRepository, domain.UploadRepository, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.Log.Warn("Using in-memory store; data is lost on restart")
		return memory.NewCandidateRepository(time.Now), memory.NewUploadRepository(), func() {}, nil
	}

	dbPool, err := database.NewPostgresConnection(ctx, cfg.Database.URL, database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, nil, nil, err
		}
	}
	return postgres.NewCandidateRepository(dbPool), postgres.NewUploadRepository(dbPool), dbPool.Close, nil
}

// openFileStore returns the store and, for the local driver, its root directory
func openFileStore(ctx context.Context, cfg *config.Config) (domain.FileStore, string, error) {
	if cfg.Storage.Driver == config.DriverS3 {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Provider:        storage.S3Provider(cfg.S3.Provider),
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, "", err
		}
		return s3Store, "", nil
	}

	local, err := storage.NewLocalStore(cfg.Storage.LocalRoot, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return local, cfg.Storage.LocalRoot, nil
}

// openNotifier publishes to RabbitMQ when configured, otherwise only logs
func openNotifier(cfg *config.Config, checks map[string]usecase.Checker) (domain.Notifier, func()) {
	if cfg.RabbitMQ.DSN == "" {
		logger.Log.Warn("RABBITMQ_DSN not set, status notifications are only logged")
		return queue.LogNotifier{}, func() {}
	}
	conn, err := queue.Dial(cfg.RabbitMQ.DSN, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Log.Warn("RabbitMQ unavailable, status notifications are only logged", "error", err)
		return queue.LogNotifier{}, func() {}
	}
	checks["rabbitmq"] = func(context.Context) error {
		if conn.IsClosed() {
			return errors.New("rabbitmq: connection closed")
		}
		return nil
	}
	publisher := queue.NewPublisher(conn.Channel(), cfg.RabbitMQ.Queue, cfg.RabbitMQ.PublishTimeout)
	return publisher, func() {
		if err := conn.Close(); err != nil {
			logger.Log.Warn("Failed to close RabbitMQ connection", "error", err)
		}
	}
}

// purgeLoop removes expired, unclaimed uploads until ctx is done
func purgeLoop(ctx context.Context, uploadUC domain.UploadUsecase) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := uploadUC.PurgeExpired(ctx)
			if err != nil {
				logger.Log.Warn("Upload purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Log.Info("Purged expired uploads", "count", n)
			}
		}
	}
}
