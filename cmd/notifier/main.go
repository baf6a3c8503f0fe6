package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gameswap-api/internal/cache"
	"gameswap-api/internal/config"
	"gameswap-api/internal/notifier"
	"gameswap-api/internal/repository"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting GameSwap notifier...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// The notifier only reads users, but it shares the API's record store.
	var userRepo repository.UserRepository
	switch cfg.Store.Type {
	case "memory":
		userRepo = repository.NewMemoryStore().Users()
		log.Println("In-memory store initialized")
	default: // mongodb
		mongo, err := repository.NewMongo(cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer mongo.Close()
		userRepo = repository.NewMongoUserRepository(mongo)
		log.Println("MongoDB store initialized")
	}

	// Lookup cache in front of user reads. Redis failure is a warning:
	// the consumer falls back to the in-process cache.
	var lookupCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, using memory cache: %v", err)
		} else {
			defer redisCache.Close()
			lookupCache = redisCache
			log.Println("Redis lookup cache initialized")
		}
	}
	if lookupCache == nil {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		lookupCache = memCache
		log.Println("Memory lookup cache initialized")
	}

	// Delivery log based on config
	var deliveries repository.DeliveryLogRepository
	var err error
	switch cfg.DeliveryLog.Type {
	case "mysql":
		deliveries, err = repository.NewMySQLDeliveryLog(cfg.DeliveryLog.MySQLDSN())
	case "postgres", "postgresql":
		deliveries, err = repository.NewPostgresDeliveryLog(cfg.DeliveryLog.PostgresDSN())
	default: // sqlite
		deliveries, err = repository.NewSQLiteDeliveryLog(cfg.DeliveryLog.Path)
	}
	if err != nil {
		log.Fatalf("Failed to initialize delivery log: %v", err)
	}
	defer deliveries.Close()
	log.Printf("Delivery log initialized (%s)", cfg.DeliveryLog.Type)

	// Mail transport
	mailer, err := notifier.NewSMTPMailer(notifier.SMTPMailerConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		log.Fatalf("Failed to initialize SMTP mailer: %v", err)
	}

	// Consumer group subscription
	consumer := notifier.New(notifier.Config{
		Brokers: cfg.Kafka.BrokerList(),
		GroupID: cfg.Kafka.GroupID,
	}, notifier.Deps{
		Users:      userRepo,
		Cache:      lookupCache,
		CacheTTL:   cfg.Cache.TTL,
		Mailer:     mailer,
		Deliveries: deliveries,
	})
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("Consumer error: %v", err)
	}

	log.Println("Notifier stopped")
}
