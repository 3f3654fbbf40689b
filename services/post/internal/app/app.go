package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sangh-connect/pkg/cache"
	"sangh-connect/pkg/config"
	"sangh-connect/pkg/database"
	"sangh-connect/pkg/jwt"
	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/middleware"
	"sangh-connect/pkg/queue"
	"sangh-connect/pkg/s3"
	postHTTP "sangh-connect/services/post/internal/controller/http"
	"sangh-connect/services/post/internal/entity"
	"sangh-connect/services/post/internal/repo/persistent"
	"sangh-connect/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	_ "sangh-connect/services/post/docs" // Swagger docs
)

func Run(cfg *config.Config, log *logger.Logger, mongoClient *mongo.Client, mongoDB *mongo.Database, db *gorm.DB, s3Client *s3.Client, queueClient *queue.Client, redisClient *redis.Client) {
	jwtService := jwt.NewService(cfg.JWTSecret)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 10*time.Second)
	if err := persistent.EnsureIndexes(indexCtx, mongoDB); err != nil {
		log.Warn("Post indexes not ensured: %v", err)
	}
	cancelIndex()

	// Initialize repositories
	postRepo := persistent.NewPostRepository(mongoDB)
	sanghRepo := persistent.NewSanghRepository(db)

	// Initialize use cases
	var publisher usecase.EventPublisher
	if queueClient != nil {
		publisher = queueClient
	}
	postUseCase := usecase.NewPostUseCase(
		postRepo,
		sanghRepo,
		s3Client,
		cache.NewStore(redisClient, log),
		publisher,
		usecase.Options{
			PostTTL: time.Duration(cfg.CachePostTTLSeconds) * time.Second,
			ListTTL: time.Duration(cfg.CacheListTTLSeconds) * time.Second,
			Limits: entity.Limits{
				CaptionMaxLength: cfg.CaptionMaxLength,
				CommentMaxLength: cfg.CommentMaxLength,
				ReplyMaxLength:   cfg.ReplyMaxLength,
				MaxMediaPerPost:  cfg.MaxMediaPerPost,
			},
		},
		log,
	)

	// Initialize HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, s3Client, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMinute, time.Minute))

	{
		api.POST("/posts", postHandler.CreatePost)
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:id", postHandler.GetPost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.PATCH("/posts/:id/visibility", postHandler.SetVisibility)
		api.DELETE("/posts/:id/media/:mediaId", postHandler.RemoveMedia)
		api.POST("/posts/:id/like", postHandler.ToggleLike)
		api.POST("/posts/:id/comments", postHandler.AddComment)
		api.GET("/posts/:id/comments", postHandler.ListComments)
		api.POST("/posts/:id/comments/:commentId/replies", postHandler.AddReply)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Post service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down post service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop accepting requests before closing the clients they use
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := database.DisconnectMongo(mongoClient); err != nil {
		log.Error("Error closing MongoDB: %v", err)
	}

	sqlDB, err := db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("Error closing database: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	if queueClient != nil {
		queueClient.Close()
	}

	log.Info("Post service exited")
}
