// basketd - In-store basket service for associate-assisted checkout.
// Fronts the remote commerce gateway with optimistic basket synchronization.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-basket/internal/basket"
	"pos-basket/internal/checkout"
	"pos-basket/internal/config"
	"pos-basket/internal/gateway"
	"pos-basket/internal/handler"
	"pos-basket/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("store_id", cfg.StoreID),
		slog.String("environment", cfg.Environment),
		slog.String("gateway_url", cfg.Store.GatewayURL),
	)

	// Create gateway client
	gw, err := gateway.New(gateway.Config{
		BaseURL:      cfg.Store.GatewayURL,
		StoreID:      cfg.StoreID,
		ClientID:     cfg.Store.ClientID,
		ClientSecret: cfg.Store.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("creating gateway client: %w", err)
	}

	// Negotiate capabilities; config flags are the fallback for gateways
	// that do not advertise them.
	sessionCfg := sessionConfig(ctx, gw, cfg, logger)

	// Create basket session (fetches or creates the basket)
	session, err := basket.New(ctx, gw, sessionCfg, logger)
	if err != nil {
		return fmt.Errorf("creating basket session: %w", err)
	}

	// Create handler and routes
	h := handler.New(session, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Apply middleware chain: recovery → logging → handler
	// Recovery must be outermost to catch panics from logging middleware
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// sessionConfig merges gateway-advertised capabilities with the configured
// fallbacks. A failed handshake is logged and the fallbacks used, so the
// register still comes up when the gateway's discovery endpoint is down.
func sessionConfig(ctx context.Context, gw gateway.Interface, cfg *config.Config, logger *slog.Logger) basket.Config {
	out := basket.Config{
		Flow: checkout.Flow{
			CollectBillingAddress:     cfg.Store.CollectBillingAddress,
			AllowDifferentStorePickup: cfg.Store.AllowDifferentStorePickup,
		},
		FreeShippingMethodIDs:   cfg.Store.FreeShippingMethodIDs,
		OverrideRequiresManager: cfg.Store.OverrideRequiresManager,
	}

	caps, err := gw.Capabilities(ctx)
	if err != nil {
		logger.Warn("capability handshake failed, using configured flow",
			slog.String("error", err.Error()))
		return out
	}

	logger.Info("capabilities negotiated",
		slog.String("api_version", caps.APIVersion),
		slog.Bool("collect_billing_address", caps.CollectBillingAddress),
		slog.Bool("allow_different_store_pickup", caps.AllowDifferentStorePickup),
	)

	out.Flow.CollectBillingAddress = caps.CollectBillingAddress
	out.Flow.AllowDifferentStorePickup = caps.AllowDifferentStorePickup
	if len(caps.FreeShippingMethodIDs) > 0 {
		out.FreeShippingMethodIDs = caps.FreeShippingMethodIDs
	}
	return out
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
