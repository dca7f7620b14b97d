package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/config"
	"github.com/dukaflow/dukaflow/internal/consumer"
	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/logging"
	"github.com/dukaflow/dukaflow/internal/messaging"
	"github.com/dukaflow/dukaflow/internal/publisher"
)

func main() {
	cfg := config.Load()
	logger := logging.New()
	defer logger.Sync()

	database, err := db.NewPostgresDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareQueue(publisher.OrderEventsQueue); err != nil {
		logger.Fatal("failed to declare queue", zap.Error(err))
	}
	messages, err := rabbitMQ.Consume(publisher.OrderEventsQueue)
	if err != nil {
		logger.Fatal("failed to consume queue", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	orderRepo := db.NewOrderRepository(database)
	analyticsRepo := db.NewAnalyticsRepository(database)
	orderConsumer := consumer.NewOrderConsumer(orderRepo, analyticsRepo, cfg.LowStockThreshold, logger)

	logger.Info("worker started", zap.String("queue", publisher.OrderEventsQueue))
	orderConsumer.Run(ctx, messages)
}
