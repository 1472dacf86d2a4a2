package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/planbook-app/planbook-api/api/swagger"
	"github.com/planbook-app/planbook-api/internal/handler"
	"github.com/planbook-app/planbook-api/internal/middleware"
	"github.com/planbook-app/planbook-api/internal/repository"
	"github.com/planbook-app/planbook-api/internal/service"
	"github.com/planbook-app/planbook-api/pkg/cache"
	"github.com/planbook-app/planbook-api/pkg/config"
	"github.com/planbook-app/planbook-api/pkg/database"
	"github.com/planbook-app/planbook-api/pkg/export"
	"github.com/planbook-app/planbook-api/pkg/jobs"
	"github.com/planbook-app/planbook-api/pkg/logger"
	corsmiddleware "github.com/planbook-app/planbook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/planbook-app/planbook-api/pkg/middleware/requestid"
	"github.com/planbook-app/planbook-api/pkg/storage"
)

// @title Planbook API
// @version 1.0.0
// @description Lesson planning and student progress tracking backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	store, err := storage.NewLocalStorage(cfg.Worksheets.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init worksheet storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Worksheets.SignedURLSecret, cfg.Worksheets.SignedURLTTL)

	validate := validator.New()

	// Repositories
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	leRepo := repository.NewLearningExperienceRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	worksheetRepo := repository.NewWorksheetRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Progress.CacheTTL, logr, cfg.Progress.CacheEnabled)
	authSvc := service.NewAuthService(teacherRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	progressSvc := service.NewProgressService(progressRepo, evidenceRepo, leRepo, cacheSvc, logr)
	evidenceSvc := service.NewEvidenceService(evidenceRepo, progressSvc, validate, logr)
	leSvc := service.NewLearningExperienceService(leRepo, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, leRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	exportSvc := service.NewExportService(progressRepo, studentRepo, leRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	worksheetSvc := service.NewWorksheetService(worksheetRepo, lessonRepo, leRepo, export.NewPDFExporter(), store, signer, jobs.QueueConfig{
		Workers:    cfg.Worksheets.WorkerConcurrency,
		MaxRetries: cfg.Worksheets.WorkerRetries,
		Logger:     logr,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worksheetSvc.Start(ctx)
	defer worksheetSvc.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	leHandler := handler.NewLearningExperienceHandler(leSvc)
	lessonHandler := handler.NewLessonHandler(lessonSvc)
	evidenceHandler := handler.NewEvidenceHandler(evidenceSvc)
	progressHandler := handler.NewProgressHandler(progressSvc, exportSvc)
	worksheetHandler := handler.NewWorksheetHandler(worksheetSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Worksheet downloads are authorised by signed token, not JWT.
	api.GET("/worksheets/download", worksheetHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/metrics/snapshot", metricsHandler.Snapshot)

	students := protected.Group("/students")
	students.POST("", studentHandler.Create)
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.PATCH("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Deactivate)
	students.GET("/:id/evidence", evidenceHandler.ListByStudent)

	experiences := protected.Group("/learning-experiences")
	experiences.POST("", leHandler.Create)
	experiences.GET("", leHandler.List)
	experiences.GET("/:id", leHandler.Get)
	experiences.GET("/:id/criteria", leHandler.Criteria)
	experiences.PATCH("/:id", leHandler.Update)
	experiences.DELETE("/:id", leHandler.Deactivate)

	lessons := protected.Group("/lessons")
	lessons.POST("", lessonHandler.Create)
	lessons.GET("", lessonHandler.List)
	lessons.GET("/week/:week", lessonHandler.WeeklyPlan)
	lessons.GET("/:id", lessonHandler.Get)
	lessons.PATCH("/:id", lessonHandler.Update)
	lessons.POST("/:id/status", lessonHandler.Transition)
	lessons.DELETE("/:id", lessonHandler.Delete)
	lessons.POST("/:id/worksheets", worksheetHandler.Generate)
	lessons.GET("/:id/worksheets", worksheetHandler.ListByLesson)

	worksheets := protected.Group("/worksheets")
	worksheets.GET("/:id", worksheetHandler.Get)
	worksheets.GET("/:id/download-url", worksheetHandler.SignedURL)

	evidence := protected.Group("/evidence")
	evidence.POST("", evidenceHandler.Log)
	evidence.GET("", evidenceHandler.ListMine)
	evidence.GET("/:id", evidenceHandler.Get)
	evidence.PATCH("/:id", evidenceHandler.Update)
	evidence.DELETE("/:id", evidenceHandler.Delete)

	progress := protected.Group("/progress")
	progress.GET("/students/:studentId", progressHandler.ListByStudent)
	progress.GET("/students/:studentId/export", progressHandler.ExportStudent)
	progress.GET("/students/:studentId/experiences/:leId", progressHandler.Get)
	progress.POST("/students/:studentId/experiences/:leId/recompute", progressHandler.Recompute)
	progress.GET("/experiences/:leId", progressHandler.ListByLearningExperience)
	progress.GET("/experiences/:leId/export", progressHandler.ExportClass)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
