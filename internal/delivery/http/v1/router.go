package v1

import (
	"path/filepath"

	"go-hr-backend/config"
	"go-hr-backend/internal/delivery/http/middleware"
	"go-hr-backend/internal/domain"
	"go-hr-backend/pkg/storage"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CandidateUC domain.CandidateUsecase
	StatusUC    domain.StatusUsecase
	UploadUC    domain.UploadUsecase
	HealthUC    domain.HealthUsecase
	Config      *config.Config
	// MediaRoot serves temporary uploads from the local store; empty disables it
	MediaRoot string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	r.MaxMultipartMemory = cfg.UploadMaxBytes() + 1<<20

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.GlobalRateLimit(cfg.RateLimit.GlobalThreshold, cfg.RateLimitWindow()).Handler())
	r.Use(middleware.AdminIdentity())

	// Only temporary uploads are public; promoted resumes go through the admin route
	if deps.MediaRoot != "" {
		r.Static("/media/"+storage.TempPrefix, filepath.Join(deps.MediaRoot, storage.TempPrefix))
	}

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	uploadLimit := middleware.UploadRateLimit(cfg.RateLimit.UploadThreshold, cfg.RateLimitWindow()).Handler()
	NewUploadHandler(v1, deps.UploadUC, uploadLimit)
	NewCandidateHandler(v1, deps.CandidateUC, uploadLimit)
	NewAdminHandler(v1, deps.CandidateUC, deps.StatusUC)

	return r
}
