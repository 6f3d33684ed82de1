package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"noteful/internal/config"
	"noteful/internal/database"
	"noteful/internal/repositories"
	"noteful/internal/services"
	"noteful/pkg/rabbitmq"

	"github.com/streadway/amqp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- User store ---
	var userRepo repositories.UserRepository
	if cfg.Database.Driver == config.DriverMemory {
		log.Println("Using in-memory user store; data is lost on shutdown")
		userRepo = repositories.NewMemoryUserRepository()
	} else {
		db, err := database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close(db)
		userRepo = repositories.NewGORMUserRepository(db)
	}

	// --- User events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeUserEvents(logUserEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	app := newApp(cfg, userRepo, publisher)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// logUserEvent records user events consumed from the broker.
func logUserEvent(msg amqp.Delivery) error {
	log.Printf("Received %s event (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
	return nil
}
