package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rn1737/cargobooking/config"
	"github.com/rn1737/cargobooking/internal/bootstrap"
	"github.com/rn1737/cargobooking/internal/cache"
	"github.com/rn1737/cargobooking/internal/kafka"
	"github.com/rn1737/cargobooking/internal/logger"
	"github.com/rn1737/cargobooking/internal/repository"
	"github.com/rn1737/cargobooking/internal/service/booking"
	"github.com/rn1737/cargobooking/internal/service/catalog"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	defer log.Sync()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var bookingRepo repository.BookingRepository
	if cfg.Database.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		bookingRepo = repository.NewPGBookingRepository(pool)
	} else {
		bookingRepo = repository.NewInMemoryBookingRepository()
	}

	var flightCache catalog.Cache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.FlightsCacheTTL)*time.Second)
		defer redisCache.Close()
		flightCache = redisCache
	}

	var producer booking.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	catalogService := catalog.NewCatalogService(rng, flightCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		producer,
		log,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithRefIDMaxAttempts(cfg.Booking.RefIDMaxAttempts),
	)

	if err := bootstrap.Run(ctx, cfg, catalogService, bookingService); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
