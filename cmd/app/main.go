package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mandirtech/edarshan/config"
	"github.com/mandirtech/edarshan/internal/bootstrap"
	"github.com/mandirtech/edarshan/internal/cache"
	"github.com/mandirtech/edarshan/internal/kafka"
	"github.com/mandirtech/edarshan/internal/metrics"
	"github.com/mandirtech/edarshan/internal/repository"
	"github.com/mandirtech/edarshan/internal/service/booking"
	"github.com/mandirtech/edarshan/internal/service/temples"
	"github.com/mandirtech/edarshan/internal/slots"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.TemplesCacheTTL)*time.Second,
		time.Duration(cfg.Booking.DraftTTLMinutes)*time.Minute,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	m := metrics.New("edarshan")

	templeRepo := repository.NewTempleRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	generator := slots.NewGenerator(
		cfg.Booking.SlotStepHours,
		slots.Thresholds{LowMin: cfg.Booking.CrowdLowMin, MediumMin: cfg.Booking.CrowdMediumMin},
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	templeService := temples.NewTempleService(templeRepo, redisCache, m)
	bookingService := booking.NewBookingService(
		bookingRepo,
		templeRepo,
		redisCache,
		producer,
		asynqClient,
		generator,
		cfg.Kafka.BookingTopic,
		cfg.HTTP.PublicURL,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.PaymentProcessSeconds)*time.Second,
		booking.WithMetrics(m),
		booking.WithMaxTickets(cfg.Booking.MaxTickets),
	)

	router := bootstrap.NewRouter(cfg, templeService, bookingService, m)
	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
