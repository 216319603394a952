package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "farmshare-backend/internal/api/grpc"
	"farmshare-backend/internal/api/grpc/interceptor"
	httpapi "farmshare-backend/internal/api/http"
	"farmshare-backend/internal/config"
	"farmshare-backend/internal/gateway"
	"farmshare-backend/internal/logger"
	"farmshare-backend/internal/notify"
	"farmshare-backend/internal/repository"
	"farmshare-backend/internal/repository/postgres"
	"farmshare-backend/internal/security"
	"farmshare-backend/internal/service"

	"github.com/nsqio/go-nsq"
	"google.golang.org/grpc"

	_ "github.com/lib/pq"
)

const (
	healthCheckInterval = 15 * time.Second
	shutdownTimeout     = 20 * time.Second
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FarmShare booking backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	policy, err := cfg.Policy()
	if err != nil {
		log.Fatalf("Invalid booking policy: %v", err)
	}

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	repos := store.Repos()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize Payment Gateway
	var paymentGateway service.PaymentGateway
	switch cfg.Gateway.Mode {
	case "stripe":
		logger.Info("Using Stripe payment gateway", "currency", cfg.Gateway.Currency)
		paymentGateway = gateway.NewStripe(cfg.Gateway.StripeSecretKey, cfg.Gateway.Currency)
	default:
		logger.Warn("Using test-mode payment gateway; every payment proof is accepted")
		paymentGateway = gateway.NewTestMode()
	}

	// Initialize Notifiers
	notifier, producer := buildNotifier(cfg, repos)
	if producer != nil {
		defer producer.Stop()
	}

	// Initialize Services
	escrowSvc := service.NewEscrowService(store, paymentGateway, service.TopUpLimits{
		Min: cfg.Wallet.MinTopUp,
		Max: cfg.Wallet.MaxTopUp,
	})
	bookingSvc := service.NewBookingService(store, escrowSvc, notifier, policy)
	noteSvc := service.NewNotificationService(repos.Notifications)

	// Set up HTTP API
	handler := httpapi.NewHandler(httpapi.Deps{
		Bookings:      bookingSvc,
		Escrow:        escrowSvc,
		Notifications: noteSvc,
		Tractors:      repos.Tractors,
		Availability:  service.NewConflictChecker(repos.Bookings),
		Health:        store,
		FeeRate:       policy.FeeRate,
		ExposeOTPs:    cfg.Booking.ExposeOTPs,
	})
	router := httpapi.NewRouter(handler, httpapi.NewAuthMiddleware(tokenManager))
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up gRPC health server
	reporter := grpcapi.NewHealthReporter(store)
	grpcAuth := interceptor.NewAuthInterceptor(tokenManager)
	grpcServer := grpcapi.NewServer(reporter,
		grpc.ChainUnaryInterceptor(interceptor.LoggingUnary(), grpcAuth.Unary()),
		grpc.ChainStreamInterceptor(interceptor.LoggingStream(), grpcAuth.Stream()),
	)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reporter.Run(ctx, healthCheckInterval)

	go func() {
		logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	bookingSvc.Wait()
	logger.Info("Server stopped. Goodbye!")
}

// buildNotifier assembles the configured status-change channels. The returned
// producer is non-nil when NSQ is enabled and must be stopped on shutdown.
func buildNotifier(cfg *config.Config, repos repository.Repositories) (notify.Notifier, *nsq.Producer) {
	var notifiers notify.Multi
	if cfg.Notifications.Inbox {
		notifiers = append(notifiers, notify.NewInbox(repos.Notifications))
	}
	if cfg.Notifications.LogSMS {
		notifiers = append(notifiers, notify.NewLogSMS(repos.Users))
	}
	if sg := cfg.Notifications.SendGrid; sg.APIKey != "" {
		notifiers = append(notifiers, notify.NewSendGrid(sg.APIKey, sg.FromEmail, sg.FromName, repos.Users))
	}

	var producer *nsq.Producer
	if q := cfg.Notifications.NSQ; q.Address != "" {
		n, p, err := notify.NewNSQ(q.Address, q.Topic)
		if err != nil {
			logger.Error("NSQ notifier disabled", "error", err, "address", q.Address)
		} else {
			notifiers = append(notifiers, n)
			producer = p
		}
	}

	logger.Info("Status-change notifiers configured", "count", len(notifiers))
	return notifiers, producer
}
