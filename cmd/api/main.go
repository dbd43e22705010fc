// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/domain/analytics"
	"github.com/furnishop/furniture-backend/internal/domain/cart"
	"github.com/furnishop/furniture-backend/internal/domain/news"
	"github.com/furnishop/furniture-backend/internal/domain/notification"
	"github.com/furnishop/furniture-backend/internal/domain/order"
	"github.com/furnishop/furniture-backend/internal/domain/product"
	"github.com/furnishop/furniture-backend/internal/domain/user"
	"github.com/furnishop/furniture-backend/internal/infrastructure/database/mongo"
	"github.com/furnishop/furniture-backend/internal/infrastructure/database/postgres"
	"github.com/furnishop/furniture-backend/internal/infrastructure/database/redis"
	"github.com/furnishop/furniture-backend/internal/infrastructure/messaging/rabbitmq"
	"github.com/furnishop/furniture-backend/internal/interfaces/http"
	"github.com/furnishop/furniture-backend/internal/interfaces/http/routes"
	"github.com/furnishop/furniture-backend/internal/pkg/email"
	"github.com/furnishop/furniture-backend/internal/pkg/logger"
	"github.com/furnishop/furniture-backend/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	log.Printf("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to the document store
	mongoClient, err := mongo.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()

	store := mongoClient.Store()
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := mongoClient.EnsureIndexes(indexCtx); err != nil {
		log.Printf("Warning: Document index creation failed: %v", err)
	}
	cancelIndexes()

	// Connect to the credential database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	migration := postgres.NewMigration(db.GetDB())
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		log.Printf("Warning: Index creation failed: %v", err)
	}

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	credentials := user.NewCredentialStore(db.GetDB())
	tokens := redisClient.TokenStore()
	users := user.NewService(store, credentials, tokens, appLogger, cfg)

	// Order events are optional
	var publisher order.EventPublisher
	ctx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	if cfg.Broker.URL != "" {
		broker, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.Broker.URL, Queue: cfg.Broker.OrderQueue}, appLogger)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer broker.Close()
		publisher = broker

		if cfg.Broker.RunConsumer {
			handler := rabbitmq.LogOrderPlaced(appLogger)
			mailer := email.NewEmailService(cfg)
			if mailer.Enabled() {
				notifier := notification.NewService(users, credentials, mailer, appLogger, cfg)
				handler = rabbitmq.Chain(handler, notifier.HandleOrderPlaced)
			} else {
				log.Println("⚠️  SMTP_HOST not set, order confirmations will not be emailed")
			}
			if err := broker.ConsumeOrderEvents(ctx, handler); err != nil {
				log.Fatalf("Failed to start order consumer: %v", err)
			}
		}
	} else {
		log.Println("⚠️  AMQP_URL not set, order events will not be published")
	}

	products := product.NewService(store, appLogger)
	carts := cart.NewService(store, products, appLogger, cfg)
	orders := order.NewService(store, carts, publisher, appLogger)

	if cfg.Admin.Email != "" {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := users.EnsureAdmin(seedCtx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatalf("Failed to seed admin account: %v", err)
		}
		cancelSeed()
	}

	services := &routes.Services{
		Users:       users,
		UserAdmin:   user.NewAdminService(store, credentials, appLogger),
		Products:    products,
		Categories:  product.NewCategoryService(store, appLogger),
		Carts:       carts,
		Orders:      orders,
		News:        news.NewService(store, appLogger),
		Analytics:   analytics.NewService(store, orders, appLogger, cfg),
		Access:      analytics.NewAccessTracker(store, appLogger),
		Invoices:    pdf.NewService(cfg),
		Revocations: tokens,
	}

	checks := map[string]http.HealthCheck{
		"mongodb":  store.Ping,
		"postgres": func(ctx context.Context) error { return db.Health() },
		"redis":    redisClient.Health,
	}

	log.Println("✅ All systems operational!")

	// Create and start HTTP server
	server := http.NewServer(cfg, appLogger, services, redisClient.GetClient(), checks)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("👋 Shutting down gracefully...")
	stopConsumer()

	// Give server 30 seconds to shutdown gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	log.Println("✅ Server shutdown completed")
}
