package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mandirtech/edarshan/config"
	"github.com/mandirtech/edarshan/internal/cache"
	"github.com/mandirtech/edarshan/internal/kafka"
	"github.com/mandirtech/edarshan/internal/metrics"
	"github.com/mandirtech/edarshan/internal/notify"
	"github.com/mandirtech/edarshan/internal/repository"
	"github.com/mandirtech/edarshan/internal/tasks"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkaGo "github.com/segmentio/kafka-go"
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

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.TemplesCacheTTL)*time.Second,
		time.Duration(cfg.Booking.DraftTTLMinutes)*time.Minute,
	)

	m := metrics.New("edarshan_worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Worker.MetricsAddress, mux); err != nil {
			log.Printf("metrics endpoint stopped: %v", err)
		}
	}()

	bookingRepo := repository.NewBookingRepository(pool)
	handlers := tasks.NewHandlers(
		bookingRepo,
		asynqClient,
		producer,
		redisCache,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.PaymentConfirmSeconds)*time.Second,
		tasks.WithMetrics(m),
	)

	// Notification consumer: booking events out of kafka, devotee messages out.
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.BookingTopic)
	defer consumer.Close()

	sender := notify.NewSender(producer, cfg.Kafka.NotificationsTopic)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return sender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	// Periodic expiry sweep for bookings stuck in AWAITING_PAYMENT.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	sweep, err := tasks.NewExpirySweepTask(cfg.Worker.ExpirationSweepMinutes)
	if err != nil {
		log.Fatalf("build expiry sweep task: %v", err)
	}
	if _, err := scheduler.Register(cfg.Worker.ExpirySweepCron, sweep); err != nil {
		log.Fatalf("register expiry sweep: %v", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("scheduler failed to start: %v", err)
		}
	}()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	mux := asynq.NewServeMux()
	handlers.Register(mux)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("asynq server failed to start: %v", err)
	}
}
