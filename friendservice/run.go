package friendservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/memoryfriend/memory-friend/server/internal/ai"
	"github.com/memoryfriend/memory-friend/server/internal/api"
	"github.com/memoryfriend/memory-friend/server/internal/auth"
	"github.com/memoryfriend/memory-friend/server/internal/config"
	"github.com/memoryfriend/memory-friend/server/internal/factory"
	"github.com/memoryfriend/memory-friend/server/internal/health"
	"github.com/memoryfriend/memory-friend/server/internal/logger"
	"github.com/memoryfriend/memory-friend/server/internal/services"
	"github.com/memoryfriend/memory-friend/server/internal/store"
	"github.com/memoryfriend/memory-friend/server/internal/upload"
)

// Run starts the memory friend HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("memory-friend")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Bool("ai_enabled", cfg.AIEnabled()).
		Bool("dev_bypass_auth", cfg.DevBypassAuth).
		Msg("Memory friend service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}

	gen, err := factory.NewGenerator(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Generative model chain unavailable")
		return err
	}

	authorizer, backendAuth, err := newAuthorizer(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Authorizer unavailable")
		return err
	}

	uploader := newUploader(cfg, log)

	loc, err := resolveTimeZone(cfg.SummaryTimeZone)
	if err != nil {
		log.Error().Err(err).Str("tz", cfg.SummaryTimeZone).Msg("Invalid summary time zone")
		return err
	}

	router := buildRouter(st, gen, authorizer, uploader, loc, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, st, backendAuth)

	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// newAuthorizer picks the session authorizer. The backend authorizer is also
// returned separately so its health hook can be registered.
func newAuthorizer(cfg *config.Config, log zerolog.Logger) (auth.Authorizer, *auth.BackendAuthorizer, error) {
	if cfg.DevBypassAuth {
		log.Warn().Msg("DEV_BYPASS_AUTH is enabled; every request resolves to the dev user")
		return auth.NewDevAuthorizer(), nil, nil
	}
	backend, err := auth.NewBackendAuthorizer(cfg.BackendURL, cfg.BackendKey)
	if err != nil {
		return nil, nil, err
	}
	return backend, backend, nil
}

// newUploader builds the image storage client; nil disables image uploads.
func newUploader(cfg *config.Config, log zerolog.Logger) upload.Uploader {
	client, err := upload.NewStorageClient(cfg.BackendURL, cfg.BackendKey)
	if err != nil {
		log.Warn().Err(err).Msg("image storage not configured; uploads disabled")
		return nil
	}
	return client
}

func resolveTimeZone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// buildRouter wires services and HTTP routes.
func buildRouter(st store.Store, gen ai.Generator, authorizer auth.Authorizer, uploader upload.Uploader, loc *time.Location, log zerolog.Logger) http.Handler {
	extractor := ai.NewExtractor(gen, log)
	answerer := ai.NewAnswerer(st.Memories(), gen, log)
	summarizer := ai.NewSummarizer(st.Memories(), gen, loc, log)

	return api.NewRouter(api.RouterDeps{
		Memories:   services.NewMemoryService(st, extractor),
		Questions:  services.NewQuestionService(st, answerer),
		Profiles:   services.NewProfileService(st),
		Summaries:  services.NewSummaryService(st, summarizer),
		Uploader:   uploader,
		Authorizer: authorizer,
		TimeZone:   loc,
	})
}

// startHealthCheckers starts component checkers and the service-level aggregator.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store, backendAuth *auth.BackendAuthorizer) *health.ServiceHealthChecker {
	var checkers []health.HealthChecker
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)
	checkers = append(checkers, storeChecker)

	if backendAuth != nil {
		authChecker := health.NewPingChecker("auth-backend", backendAuth, log, probeTimeout)
		go authChecker.Start(ctx, interval)
		checkers = append(checkers, authChecker)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
