package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/config"
	"github.com/domo-app/domo-server/internal/mq"
	"github.com/domo-app/domo-server/internal/mqhandler"
	"github.com/domo-app/domo-server/internal/repository"
	"github.com/domo-app/domo-server/internal/service"
	"github.com/domo-app/domo-server/pkg/db"
	"github.com/domo-app/domo-server/pkg/logger"
	"github.com/domo-app/domo-server/pkg/redis"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	defer log.Sync()

	cfg := config.Load()

	pool, err := db.NewPool(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()

	subTaskRepo := repository.NewSubTaskRepository(pool, log)
	tagRateRepo := repository.NewUserTagRateRepository(pool, log)

	userTagSvc := service.NewUserTagService(tagRateRepo, subTaskRepo, redisClient, log)
	handler := mqhandler.NewProjectCompletedHandler(userTagSvc, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, mq.RoutingKeyProjectCompleted, log)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(handler.Handle)
	if err := consumer.StartConsuming(); err != nil {
		log.Fatal("Consumer stopped", zap.Error(err))
	}
}
