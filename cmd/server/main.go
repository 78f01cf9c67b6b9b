package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/config"
	"github.com/domo-app/domo-server/internal/ai"
	"github.com/domo-app/domo-server/internal/api"
	"github.com/domo-app/domo-server/internal/mq"
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

	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool, log)
	projectRepo := repository.NewProjectRepository(pool, log)
	subTaskRepo := repository.NewSubTaskRepository(pool, log)
	projectTagRepo := repository.NewProjectTagRepository(pool, log)
	tagRateRepo := repository.NewUserTagRateRepository(pool, log)
	itemRepo := repository.NewItemRepository(pool, log)

	advisor := ai.NewAdvisor(ai.NewClient(cfg.AI), log)

	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret)
	userSvc := service.NewUserService(userRepo, projectTagRepo, itemRepo, log)
	tagSvc := service.NewTagService(projectTagRepo, log)
	userTagSvc := service.NewUserTagService(tagRateRepo, subTaskRepo, redisClient, log)
	subTaskSvc := service.NewSubTaskService(subTaskRepo, projectRepo, log)
	projectSvc := service.NewProjectService(
		projectRepo, subTaskRepo, projectTagRepo, userRepo,
		userTagSvc, advisor, producer, log,
	)

	router := api.NewRouter(api.Handlers{
		Auth:    api.NewAuthHandler(authSvc, log),
		User:    api.NewUserHandler(userSvc, log),
		UserTag: api.NewUserTagHandler(userTagSvc, log),
		Tag:     api.NewTagHandler(tagSvc, log),
		Project: api.NewProjectHandler(projectSvc, log),
		SubTask: api.NewSubTaskHandler(subTaskSvc, log),
	}, cfg.JWT.Secret)

	addr := ":" + cfg.Server.Port
	log.Info("Server starting", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatal("Server stopped", zap.Error(err))
	}
}
