package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/USSTM/facility-portal/internal/audit"
	"github.com/USSTM/facility-portal/internal/config"
	"github.com/USSTM/facility-portal/internal/logging"
	"github.com/USSTM/facility-portal/internal/queue"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	worker := queue.NewWorker(&cfg.Redis, audit.NewRedisLog(redisClient, cfg.Audit.Capacity))

	logging.Info("Starting audit worker", "redis", cfg.Redis.Addr)
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Info("Shutting down worker...")
	worker.Close()
}
