package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"max.ks1230/advisor-bot/internal/clients/cache"
	"max.ks1230/advisor-bot/internal/clients/kafka"
	"max.ks1230/advisor-bot/internal/config"
	"max.ks1230/advisor-bot/internal/logger"
)

func main() {
	logger.Info("Plan sink init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	archive, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached:", zap.Error(err))
	}

	consumer, err := kafka.NewConsumer(conf.Kafka(), archive)
	if err != nil {
		logger.Fatal("failed to init kafka consumer", zap.Error(err))
	}

	logger.Info("Plan sink init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}
}
