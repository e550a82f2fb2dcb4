package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/ai"
	"github.com/Dhiren507/skillsync/internal/ai/providers"
	"github.com/Dhiren507/skillsync/internal/config"
	"github.com/Dhiren507/skillsync/internal/domain/models"
	"github.com/Dhiren507/skillsync/internal/domain/services"
	"github.com/Dhiren507/skillsync/internal/infrastructure/cache"
	"github.com/Dhiren507/skillsync/internal/infrastructure/database"
	"github.com/Dhiren507/skillsync/internal/infrastructure/queue"
	"github.com/Dhiren507/skillsync/internal/interfaces/http/handlers"
	"github.com/Dhiren507/skillsync/internal/interfaces/http/middleware"
	"github.com/Dhiren507/skillsync/internal/transcript"
	"github.com/Dhiren507/skillsync/internal/websocket"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()

	prefetchQueue := queue.NewRedisQueue(redisClient.Client)
	streamingQueue := queue.NewStreamingRedisQueue(redisClient.Client, log)

	userRepo := database.NewUserRepository(db)
	playlistRepo := database.NewPlaylistRepository(db)
	videoRepo := database.NewVideoRepository(db)
	contentRepo := database.NewContentRepository(db)

	jwtService := services.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second)
	authService := services.NewAuthService(userRepo, jwtService)
	playlistService := services.NewPlaylistService(playlistRepo, videoRepo, prefetchQueue, log)

	transcriptClient := transcript.NewClient(&cfg.Transcript, log)
	providerFactory := providers.NewFactory(&cfg.AI)
	orchestrator := ai.NewOrchestrator(
		transcriptClient,
		providerFactory,
		services.NewRepositoryContentCache(contentRepo),
		ai.WithProgress(streamingQueue),
		ai.WithLogger(log),
	)
	studyService := services.NewStudyService(orchestrator, userRepo, videoRepo, playlistRepo, contentRepo, redisClient, streamingQueue, log)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("videoid", func(fl validator.FieldLevel) bool {
			return services.IsValidVideoID(fl.Field().String())
		})
	}

	authHandler := handlers.NewAuthHandler(authService)
	playlistHandler := handlers.NewPlaylistHandler(playlistService)
	studyHandler := handlers.NewStudyHandler(studyService, models.AIProvider(cfg.AI.DefaultProvider))
	wsHandler := websocket.NewHandler(streamingQueue, jwtService, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if err := db.Health(); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if err := redisClient.Health(); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		}
		c.JSON(status, gin.H{"service": "skillsync-api", "checks": checks, "time": time.Now()})
	})

	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	streamGroup := router.Group("/stream")
	streamGroup.GET("/video/:id", gin.WrapH(wsHandler))
	streamGroup.GET("/status", gin.WrapH(http.HandlerFunc(wsHandler.Status)))

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.JWTAuthMiddleware(jwtService))

	apiGroup.POST("/playlists", playlistHandler.Import)
	apiGroup.GET("/playlists", playlistHandler.List)
	apiGroup.GET("/playlists/:id", playlistHandler.Get)
	apiGroup.DELETE("/playlists/:id", playlistHandler.Delete)
	apiGroup.PATCH("/videos/:id/progress", playlistHandler.UpdateProgress)
	apiGroup.GET("/videos/:id/content", studyHandler.ListContent)

	generateGroup := apiGroup.Group("")
	generateGroup.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst))
	generateGroup.POST("/videos/:id/summary", studyHandler.GenerateSummary)
	generateGroup.POST("/videos/:id/quiz", studyHandler.GenerateQuiz)
	generateGroup.POST("/videos/:id/notes", studyHandler.GenerateNotes)
	generateGroup.POST("/videos/:id/tutor", studyHandler.AskTutor)
	generateGroup.POST("/tutor", studyHandler.AskTutor)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("API server stopped")
}
