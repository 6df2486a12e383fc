// Package server assembles the HTTP surface: the page, the wizard posts,
// the contact relay and the operational endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devstudio-site/internal/common/config"
	"devstudio-site/internal/common/logger"
	"devstudio-site/internal/contact/relay"
	"devstudio-site/internal/contact/wizard"
	"devstudio-site/internal/models"
	"devstudio-site/internal/site/page"
	"devstudio-site/pkg/content"
)

const (
	HealthRoute  = "/healthz"
	ReadyRoute   = "/readyz"
	MetricsRoute = "/metrics"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Site        *content.Site
	Relay       *relay.Service
	RelayConfig *relay.Config
	// Submitter overrides the in-process relay for the wizard.
	Submitter wizard.Submitter
	// Store is checked by the readiness probe when set.
	Store   Pinger
	BaseURL string
	Logger  logger.Logger
}

// InProcessSubmitter hands wizard submissions straight to the relay
// service without an HTTP round trip.
func InProcessSubmitter(svc *relay.Service) wizard.Submitter {
	return wizard.SubmitterFunc(func(ctx context.Context, inq models.Inquiry, idempotencyKey string) (*models.SubmissionResult, error) {
		return svc.SubmitInquiry(ctx, inq, idempotencyKey), nil
	})
}

// NewRouter wires every route. It fails only when the page templates do not
// compile.
func NewRouter(deps Dependencies) (chi.Router, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if deps.Site == nil {
		return nil, fmt.Errorf("server: site content is required")
	}
	if deps.Relay == nil {
		return nil, fmt.Errorf("server: relay service is required")
	}

	renderer, err := page.NewRenderer()
	if err != nil {
		return nil, err
	}

	submitter := deps.Submitter
	if submitter == nil {
		submitter = InProcessSubmitter(deps.Relay)
	}

	var opts []page.Option
	if deps.BaseURL != "" {
		opts = append(opts, page.WithBaseURL(deps.BaseURL))
	}
	pages := page.NewHandler(deps.Site, renderer, submitter, log, opts...)
	relayHandler := relay.NewHandler(deps.RelayConfig, deps.Relay, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(requestMetrics)

	router.Get(page.Route, pages.ServePage)
	router.Post(page.WizardRoute, pages.ServeWizard)
	router.Handle(page.StaticRoute, page.StaticHandler())

	// The relay answers non-POST methods itself with a JSON 405.
	router.Handle(relay.Route, relayHandler)
	router.Handle(relay.AliasRoute, relayHandler)

	router.Get(HealthRoute, healthHandler)
	router.Get(ReadyRoute, readyHandler(deps.Store))
	router.Handle(MetricsRoute, promhttp.Handler())

	return router, nil
}

// NewHTTPServer applies the configured timeouts to handler.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: config.GetDuration(cfg.ReadHeaderTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}

// Serve runs srv on ln until ctx is done, then drains in-flight requests for
// at most shutdownTimeout.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, log logger.Logger) error {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": ln.Addr().String()})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, draining requests", map[string]interface{}{
		"timeout": shutdownTimeout.String(),
	})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
