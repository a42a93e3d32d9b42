package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/bootstrap"
	"github.com/mvolosh/jetcharter/internal/cache"
	"github.com/mvolosh/jetcharter/internal/kafka"
	"github.com/mvolosh/jetcharter/internal/policy"
	"github.com/mvolosh/jetcharter/internal/repository"
	"github.com/mvolosh/jetcharter/internal/rights"
	"github.com/mvolosh/jetcharter/internal/service/booking"
	"github.com/mvolosh/jetcharter/internal/service/routes"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	rates := policy.NewRateTable(cfg.Policy)
	limits := rights.Limits{Customer: rates.CustomerCancelLimit, Operator: rates.OperatorCancelLimit}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.RoutesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)
	ledger := rights.NewPGLedger(pool, limits)
	usage := rights.NewPGDiscountUsage(pool, rates.PerOperatorDiscountCap, rates.TotalDiscountCap)

	routeService := routes.NewRouteService(routeRepo, redisCache, rates)
	bookingService := booking.NewBookingService(
		bookingRepo,
		routeRepo,
		ledger,
		usage,
		rates,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLockTTL(time.Duration(cfg.Booking.LockTTLSeconds)*time.Second),
	)

	if err := bootstrap.Run(ctx, cfg, bookingService, routeService); err != nil {
		logrus.WithError(err).Fatal("server error")
	}
}
