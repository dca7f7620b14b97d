package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dukaflow/dukaflow/internal/auth"
	"github.com/dukaflow/dukaflow/internal/cache"
	"github.com/dukaflow/dukaflow/internal/config"
	"github.com/dukaflow/dukaflow/internal/db"
	"github.com/dukaflow/dukaflow/internal/discovery"
	"github.com/dukaflow/dukaflow/internal/handlers"
	"github.com/dukaflow/dukaflow/internal/logging"
	"github.com/dukaflow/dukaflow/internal/messaging"
	"github.com/dukaflow/dukaflow/internal/orders"
	"github.com/dukaflow/dukaflow/internal/publisher"
)

const (
	serviceName = "dukaflow-api"
	serviceID   = "dukaflow-api-1"
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

	if err := database.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		logger.Fatal("failed to connect to RabbitMQ", zap.Error(err))
	}
	defer rabbitMQ.Close()

	orderPublisher, err := publisher.NewOrderPublisher(rabbitMQ)
	if err != nil {
		logger.Fatal("failed to set up order publisher", zap.Error(err))
	}

	// Repositories
	productRepo := db.NewProductRepository(database)
	cachedProducts := db.NewCachedProductRepository(productRepo, redisCache, logger)
	orderRepo := db.NewOrderRepository(database)
	userRepo := db.NewUserRepository(database)
	analyticsRepo := db.NewAnalyticsRepository(database)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			logger.Fatal("failed to hash admin password", zap.Error(err))
		}
		if err := userRepo.EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, hash); err != nil {
			logger.Fatal("failed to seed admin account", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenExpiry)
	orderService := orders.NewService(orderRepo, orderPublisher, cachedProducts, logger)

	router := handlers.NewRouter(handlers.Handlers{
		Auth:      handlers.NewAuthHandler(userRepo, jwtService, logger),
		Products:  handlers.NewProductHandler(productRepo, cachedProducts, logger),
		Orders:    handlers.NewOrderHandler(orderService, logger),
		Analytics: handlers.NewAnalyticsHandler(analyticsRepo, redisCache, cfg.LowStockThreshold, logger),
		Export:    handlers.NewExportHandler(productRepo, logger),
		Backup:    handlers.NewBackupHandler(cachedProducts, logger),
	}, jwtService)

	// Consul registration is optional; CONSUL_ADDR empty skips it.
	var consul *discovery.ConsulClient
	if cfg.ConsulAddr != "" {
		consul, err = discovery.NewConsulClient(cfg.ConsulAddr)
		if err != nil {
			logger.Fatal("failed to connect to Consul", zap.Error(err))
		}
		err = consul.Register(discovery.ServiceConfig{
			Name: serviceName,
			ID:   serviceID,
			Port: cfg.Port,
			Tags: []string{"api", "catalog", "orders"},
		})
		if err != nil {
			logger.Fatal("failed to register service", zap.Error(err))
		}
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down")
		if consul != nil {
			consul.Deregister(serviceID)
		}
		os.Exit(0)
	}()

	logger.Info("server starting", zap.Int("port", cfg.Port))
	if err := router.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
