package main

import (
	"sangh-connect/pkg/cache"
	"sangh-connect/pkg/config"
	"sangh-connect/pkg/logger"
	"sangh-connect/pkg/queue"
	notificationApp "sangh-connect/services/notification/internal/app"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// @title           Sangh Notification Service API
// @version         1.0
// @description     Engagement notifications for post authors, stored per user and streamed over WebSocket.
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

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		panic(err)
	}

	notificationApp.Run(cfg, log, redisClient, queueClient)
}
