package app

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Daniel-Kav/order-microservice/configs"
	"github.com/Daniel-Kav/order-microservice/internal/adapter/cache"
	httpadapter "github.com/Daniel-Kav/order-microservice/internal/adapter/http"
	"github.com/Daniel-Kav/order-microservice/internal/adapter/kafka"
	"github.com/Daniel-Kav/order-microservice/internal/adapter/payment"
	"github.com/Daniel-Kav/order-microservice/internal/adapter/repo"
	"github.com/Daniel-Kav/order-microservice/internal/logging"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

// InitWithConfig wires the whole service: MySQL, Redis, Kafka, the Stripe
// gateway, the lifecycle, and the HTTP router. The returned cleanup closes
// every handle it opened.
func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	l := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	err = db.PingContext(ctx)
	cancel()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		_ = db.Close()
		_ = rdb.Close()
		return nil, nil, err
	}

	orderRepo := repo.NewMySQLOrderRepo(db)
	orderCache := cache.NewRedisOrderCache(rdb, cfg.Redis.CacheTTL)
	events := kafka.NewEventProducer(producer, cfg.Kafka.Topic)
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.Currency)

	lifecycle := usecase.NewOrderLifecycle(orderRepo, gateway, orderCache, events)

	stopConsumer, err := startCacheInvalidator(cfg, orderCache, l)
	if err != nil {
		_ = db.Close()
		_ = rdb.Close()
		_ = producer.Close()
		return nil, nil, err
	}

	h := httpadapter.NewOrderHandler(lifecycle)
	gh, err := httpadapter.NewGraphQLHandler(lifecycle)
	if err != nil {
		stopConsumer()
		_ = db.Close()
		_ = rdb.Close()
		_ = producer.Close()
		return nil, nil, err
	}
	router := httpadapter.NewRouter(h, gh)

	cleanup := func() {
		stopConsumer()
		_ = producer.Close()
		_ = rdb.Close()
		_ = db.Close()
	}
	l.Info("orders service wired", "http_addr", cfg.App.HTTPAddr)
	return &App{Router: router}, cleanup, nil
}

// startCacheInvalidator runs the consumer group that drops cache entries
// when another replica mutates an order.
func startCacheInvalidator(cfg configs.Config, orderCache usecase.OrderCache, l *slog.Logger) (func(), error) {
	group, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	handler := kafka.NewOrderEventHandler(orderCache)
	consumer := kafka.NewConsumer(group, []string{cfg.Kafka.Topic}, handler.Handle, l.With("component", "kafka"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			l.Error("kafka consumer stopped", "err", err)
		}
	}()

	return func() {
		cancel()
		_ = group.Close()
	}, nil
}
