// cmd/site-server/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"devstudio-site/internal/common/cache"
	"devstudio-site/internal/common/config"
	commonhttp "devstudio-site/internal/common/http"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/common/observability"
	"devstudio-site/internal/contact/idempotency"
	"devstudio-site/internal/contact/relay"
	"devstudio-site/internal/contact/wizard"
	"devstudio-site/internal/delivery/factory"
	"devstudio-site/internal/server"
	"devstudio-site/pkg/content"
)

const defaultServiceName = "devstudio-site"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting site server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("channel", cfg.Contact.Channel),
	)

	serviceName := cfg.Observability.ServiceName
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	obs := observability.New(serviceName, log)
	defer obs.Shutdown()
	if cfg.Observability.TracingEnabled {
		if err := obs.EnableTracing(cfg.Observability.JaegerEndpoint, cfg.Observability.SampleRatio); err != nil {
			zapLog.Warn("Tracing disabled", zap.Error(err))
		}
	}

	site, err := content.Load(cfg.Site.ContentPath)
	if err != nil {
		zapLog.Fatal("content load failed", zap.Error(err))
	}
	if err := site.Validate(); err != nil {
		zapLog.Fatal("content is invalid", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := factory.New(ctx, cfg.Contact, log)
	if err := notifier.Validate(); err != nil {
		// The page still serves; the relay answers 500 until this is fixed.
		zapLog.Warn("Contact channel is not configured", zap.String("channel", notifier.Name()), zap.Error(err))
	}

	relayCfg := relay.LoadConfig(cfg.Contact)
	if err := relayCfg.Validate(); err != nil {
		zapLog.Fatal("invalid relay config", zap.Error(err))
	}

	// --- Idempotency store ---
	var (
		guard *idempotency.Guard
		store server.Pinger
	)
	if relayCfg.Idempotency.Enabled {
		redisClient, err := cache.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		defer redisClient.Close()

		err = retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return redisClient.Ping(pingCtx)
		}, 3, time.Second, zapLog, "Redis ping")
		if err != nil {
			zapLog.Warn("Redis unreachable, duplicate submissions are not rejected until it recovers", zap.Error(err))
		} else {
			zapLog.Info("Redis connected successfully")
		}

		guard = idempotency.NewGuard(redisClient, relayCfg.Idempotency.Prefix, relayCfg.Idempotency.TTL)
		store = redisClient
	}

	svc := relay.NewService(relay.ServiceDependencies{
		Logger:        log,
		Notifier:      notifier,
		Guard:         guard,
		Observability: obs,
	}, relayCfg)

	var submitter wizard.Submitter
	if cfg.Server.RelayURL != "" {
		submitter = wizard.NewHTTPSubmitter(cfg.Server.RelayURL, commonhttp.NewClient(config.GetDuration(cfg.Contact.Relay.Timeout)))
		zapLog.Info("Wizard submits to remote relay", zap.String("url", cfg.Server.RelayURL))
	}

	router, err := server.NewRouter(server.Dependencies{
		Site:        site,
		Relay:       svc,
		RelayConfig: relayCfg,
		Submitter:   submitter,
		Store:       store,
		BaseURL:     cfg.Site.BaseURL,
		Logger:      log,
	})
	if err != nil {
		zapLog.Fatal("router setup failed", zap.Error(err))
	}

	ln, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		zapLog.Fatal("listen failed", zap.String("address", cfg.Server.Address), zap.Error(err))
	}

	httpServer := server.NewHTTPServer(cfg.Server, router)
	if err := server.Serve(ctx, httpServer, ln, config.GetDuration(cfg.Server.ShutdownTimeout), log); err != nil {
		zapLog.Error("Server stopped with error", zap.Error(err))
		return
	}

	zapLog.Info("Site server stopped gracefully")
}
