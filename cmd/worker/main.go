package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/email"
	"github.com/mvolosh/jetcharter/internal/kafka"
	"github.com/mvolosh/jetcharter/internal/policy"
	"github.com/mvolosh/jetcharter/internal/repository"
	"github.com/mvolosh/jetcharter/internal/rights"
	"github.com/mvolosh/jetcharter/internal/service/booking"
	kafkaGo "github.com/segmentio/kafka-go"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	rates := policy.NewRateTable(cfg.Policy)
	limits := rights.Limits{Customer: rates.CustomerCancelLimit, Operator: rates.OperatorCancelLimit}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)
	ledger := rights.NewPGLedger(pool, limits)
	usage := rights.NewPGDiscountUsage(pool, rates.PerOperatorDiscountCap, rates.TotalDiscountCap)

	bookingService := booking.NewBookingService(
		bookingRepo,
		routeRepo,
		ledger,
		usage,
		rates,
		nil,
		producer,
		cfg.Kafka.BookingTopic,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logrus.WithError(err).Warn("decode booking event")
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			logrus.WithError(err).Info("consumer stopped")
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			completed, err := bookingService.CompletePastDepartures(ctx, time.Now())
			if err != nil {
				logrus.WithError(err).Error("completion sweep failed")
				continue
			}
			if len(completed) > 0 {
				logrus.WithField("count", len(completed)).Info("completed past-departure bookings")
			}
		case s := <-sig:
			logrus.WithField("signal", s.String()).Info("shutting down")
			return
		}
	}
}
