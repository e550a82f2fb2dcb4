package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/config"
	"github.com/Dhiren507/skillsync/internal/infrastructure/cache"
	"github.com/Dhiren507/skillsync/internal/infrastructure/database"
	"github.com/Dhiren507/skillsync/internal/infrastructure/queue"
	"github.com/Dhiren507/skillsync/internal/transcript"
	"github.com/Dhiren507/skillsync/internal/workers/prefetch"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()

	workerCount := 4
	if v := os.Getenv("PREFETCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workerCount = n
		}
	}

	worker := prefetch.NewWorker(
		queue.NewRedisQueue(redisClient.Client),
		queue.NewStreamingRedisQueue(redisClient.Client, log),
		transcript.NewClient(&cfg.Transcript, log),
		database.NewVideoRepository(db),
		workerCount,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	log.WithField("workers", workerCount).Info("transcript prefetch worker starting")
	worker.Run(ctx)
}
