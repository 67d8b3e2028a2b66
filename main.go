package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/api/docs"
	"freelance-marketplace/internal/app"
	"freelance-marketplace/internal/database"
	"freelance-marketplace/internal/gateway"
	"freelance-marketplace/internal/realtime"
	"freelance-marketplace/internal/server"
	"freelance-marketplace/internal/session"
	"freelance-marketplace/internal/storage/memory"
	"freelance-marketplace/internal/storage/postgres"
)

// @title           Freelance Marketplace API
// @version         1.0
// @description     Clients post jobs, freelancers bid, and payment is held in escrow until the work is approved.

// @contact.name   API Support
// @contact.url    http://www.example.com/support
// @contact.email  support@example.com

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var deps app.Deps
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Println("Using in-memory storage; data is lost on restart")
		deps = app.Deps{
			Store:    memory.NewStore(),
			Sessions: session.NewMemoryStore(),
			Broker:   realtime.NewHub(),
		}
	default:
		dbPool, err := database.NewConnectionPool(ctx, cfg.DB)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()

		if cfg.DB.Migrate {
			if err := database.Migrate(ctx, dbPool); err != nil {
				log.Fatalf("Failed to apply schema: %v", err)
			}
		}

		redisClient, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		deps = app.Deps{
			Store:       postgres.NewStore(dbPool),
			Sessions:    session.NewRedisStore(redisClient),
			Broker:      realtime.NewRedisBroker(redisClient),
			DBPool:      dbPool,
			RedisClient: redisClient,
		}
	}

	application := app.New(cfg, deps)

	if err := application.Services.Users.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("Failed to provision admin account: %v", err)
	}

	// --- Payment gateway listener ---
	var listener *gateway.Listener
	if cfg.Gateway.Enabled() {
		listener, err = gateway.NewListener(cfg.Gateway, application.Services.Escrow)
		if err != nil {
			log.Printf("WARN: Failed to initialize gateway listener: %v. Continuing without listener.", err)
		} else {
			listener.Start(ctx)
			log.Println("Gateway listener started")
		}
	} else {
		log.Println("Gateway configuration missing (RPC URL or contract address), skipping listener.")
	}

	if _, err := docs.Load(ctx); err != nil {
		log.Fatalf("Failed to load API documentation: %v", err)
	}

	srv := server.NewServer(application)
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server and listener...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if listener != nil {
		listener.Stop()
	}

	log.Println("Application gracefully stopped.")
}
