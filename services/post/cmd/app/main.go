package main

import (
	"sangh-connect/pkg/cache"
	"sangh-connect/pkg/config"
	"sangh-connect/pkg/database"
	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/queue"
	"sangh-connect/pkg/s3"
	postApp "sangh-connect/services/post/internal/app"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// @title           Sangh Post Service API
// @version         1.0
// @description     Posts, likes, comments and replies for Sangh communities.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()

	mongoClient, mongoDB, err := database.NewMongoDB(cfg)
	if err != nil {
		log.Error("Failed to connect to MongoDB: %v", err)
		panic(err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	// Notifications are best effort; the service runs without a broker
	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("Failed to connect to RabbitMQ, notifications disabled: %v", err)
		queueClient = nil
	}

	postApp.Run(cfg, log, mongoClient, mongoDB, db, s3Client, queueClient, redisClient)
}
