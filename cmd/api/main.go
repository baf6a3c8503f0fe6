package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gameswap-api/internal/config"
	"gameswap-api/internal/event"
	"gameswap-api/internal/handler"
	"gameswap-api/internal/repository"
	"gameswap-api/internal/router"
	"gameswap-api/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting GameSwap API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize record store based on config
	var (
		userRepo     repository.UserRepository
		gameRepo     repository.GameRepository
		exchangeRepo repository.ExchangeRepository
	)
	switch cfg.Store.Type {
	case "memory":
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		gameRepo = store.Games()
		exchangeRepo = store.Exchanges()
		log.Println("In-memory store initialized")
	default: // mongodb
		mongo, err := repository.NewMongo(cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer mongo.Close()
		userRepo = repository.NewMongoUserRepository(mongo)
		gameRepo = repository.NewMongoGameRepository(mongo)
		exchangeRepo = repository.NewMongoExchangeRepository(mongo)
		log.Println("MongoDB store initialized")
	}

	// Initialize event publisher. Kafka being down must not keep the
	// API from serving, so failures degrade to no event log.
	var publisher event.Publisher
	brokers := cfg.Kafka.BrokerList()
	if err := event.EnsureTopics(brokers); err != nil {
		log.Printf("Warning: Kafka topic setup failed, events disabled: %v", err)
	} else {
		publisher = event.NewAsync(event.NewKafkaPublisher(brokers))
		log.Printf("Kafka publisher initialized (brokers: %v)", brokers)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	// Initialize services
	userService := service.NewUserService(userRepo, gameRepo, exchangeRepo, publisher)
	gameService := service.NewGameService(gameRepo, userRepo)
	exchangeService := service.NewExchangeService(exchangeRepo, gameRepo, userRepo, publisher)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	userHandler := handler.NewUserHandler(userService)
	gameHandler := handler.NewGameHandler(gameService)
	exchangeHandler := handler.NewExchangeHandler(exchangeService)

	// Create router
	r := router.New(router.Config{
		Handler:         healthHandler,
		UserHandler:     userHandler,
		GameHandler:     gameHandler,
		ExchangeHandler: exchangeHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
