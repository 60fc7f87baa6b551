package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/shopsphere-api/internal/config"
	"github.com/flicky/shopsphere-api/internal/handler"
	"github.com/flicky/shopsphere-api/internal/middleware"
	"github.com/flicky/shopsphere-api/internal/repository"
	"github.com/flicky/shopsphere-api/internal/service"
	"github.com/flicky/shopsphere-api/internal/worker"
)

const migrateRetries = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(log)
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.DB.AutoMigrate {
		if err := repository.Migrate(ctx, dbPool, migrateRetries); err != nil {
			log.Error("migrate database", "error", err)
			os.Exit(1)
		}
	}
	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	productRepo := repository.NewProductRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool)
	reviewRepo := repository.NewReviewRepository(dbPool)
	wishlistRepo := repository.NewWishlistRepository(dbPool)
	statsRepo := repository.NewStatsRepository(dbPool)

	productSvc := service.NewProductService(productRepo, categoryRepo, redisClient, cfg.Cache.ProductTTL)

	// RabbitMQ
	var (
		amqpConn    *amqp.Connection
		publisher   service.OrderEventPublisher
		orderWorker *worker.OrderWorker
	)
	if cfg.RabbitMQ.Enabled {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		consumeCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer consumeCh.Close()

		if err := worker.SetupRabbitMQ(consumeCh); err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}

		publishCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer publishCh.Close()

		publisher = worker.NewPublisher(publishCh)
		orderWorker = worker.NewOrderWorker(consumeCh, productSvc, worker.NewRedisIdempotency(redisClient), log)
		log.Info("connected to RabbitMQ")
	}

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	categorySvc := service.NewCategoryService(categoryRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, cartSvc, productSvc, publisher, log)
	reviewSvc := service.NewReviewService(reviewRepo, productRepo, orderRepo, productSvc)
	wishlistSvc := service.NewWishlistService(wishlistRepo, productRepo)
	searchSvc := service.NewSearchService(productRepo, redisClient, log)
	adminSvc := service.NewAdminService(statsRepo, userRepo)

	// Router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		router.Use(middleware.RateLimit(limiter))
		go sweepLimiter(ctx, limiter)
	}

	handler.Register(router, handler.Handlers{
		Auth:     handler.NewAuthHandler(authSvc),
		Product:  handler.NewProductHandler(productSvc),
		Category: handler.NewCategoryHandler(categorySvc),
		Cart:     handler.NewCartHandler(cartSvc),
		Order:    handler.NewOrderHandler(orderSvc),
		Review:   handler.NewReviewHandler(reviewSvc),
		Wishlist: handler.NewWishlistHandler(wishlistSvc),
		Search:   handler.NewSearchHandler(searchSvc),
		Admin:    handler.NewAdminHandler(adminSvc),
		Health:   handler.NewHealthHandler(dbPool, redisClient, amqpConn),
	}, cfg.JWT.Secret)

	if orderWorker != nil {
		if err := orderWorker.Start(ctx); err != nil {
			log.Error("start order worker", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if orderWorker != nil {
		orderWorker.Stop()
		time.Sleep(500 * time.Millisecond)
	}
	cancel()
	log.Info("server stopped")
}

func sweepLimiter(ctx context.Context, l *middleware.IPRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
