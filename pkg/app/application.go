package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	healthhandler "assetbook/internal/health/handler"
	"assetbook/internal/realtime"
	"assetbook/pkg/config"
	"assetbook/pkg/contracts"
	"assetbook/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

// Application wires the HTTP surfaces and owns the shutdown order. The
// health endpoints run behind minimal middleware so probes stay cheap; the
// API surface carries the full stack; the websocket endpoint skips the
// request timeout because its connections are long-lived.
type Application struct {
	cfg         *config.Config
	server      *http.Server
	rateLimiter *middleware.ClientRateLimiter
	notifier    *realtime.Notifier
	feed        *realtime.ChangeFeed

	healthHandler http.Handler
	authHandler   http.Handler
	apiHandler    http.Handler
	wsHandler     http.Handler
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp assembles the routers. authHandler serves the public login route;
// apiHandlers are the authenticated resource surfaces; wsHandler upgrades
// to websocket sessions.
func (a *Application) SetApp(authHandler contracts.Handler, wsHandler contracts.Handler, apiHandlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAuthHandler(authHandler)
	a.setAPIHandler(apiHandlers...)
	a.setWSHandler(wsHandler)
	a.setAppServer()
}

// SetRealtime registers the fan-out components so shutdown can drain them.
func (a *Application) SetRealtime(notifier *realtime.Notifier, feed *realtime.ChangeFeed) {
	a.notifier = notifier
	a.feed = feed
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	healthHandler := healthhandler.NewHealthHandler(a.cfg.Client.Mongo, a.cfg.Log)
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAuthHandler(authHandler contracts.Handler) {
	authRouter := httprouter.New()
	authHandler.RegisterRoutes(authRouter)

	var h http.Handler = authRouter
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.ClientRateLimit(a.rateLimiterInstance())(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.authHandler = h
	a.cfg.Log.Info("Auth endpoints configured without authentication requirement")
}

func (a *Application) setAPIHandler(apiHandlers ...contracts.Handler) {
	apiRouter := httprouter.New()
	for _, handler := range apiHandlers {
		handler.RegisterRoutes(apiRouter)
	}

	var h http.Handler = apiRouter
	h = middleware.Authentication(a.cfg.JWTSecret, a.cfg.Log)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.ClientRateLimit(a.rateLimiterInstance())(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.apiHandler = h
	a.cfg.Log.Info("API endpoints configured with full security middleware stack")
}

func (a *Application) setWSHandler(wsHandler contracts.Handler) {
	wsRouter := httprouter.New()
	wsHandler.RegisterRoutes(wsRouter)

	// No RequestTimeout: the upgraded connection outlives any request
	// budget. The read and write deadlines are enforced per frame instead.
	var h http.Handler = wsRouter
	h = middleware.Authentication(a.cfg.JWTSecret, a.cfg.Log)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.wsHandler = h
	a.cfg.Log.Info("Websocket endpoint configured")
}

func (a *Application) rateLimiterInstance() *middleware.ClientRateLimiter {
	if a.rateLimiter == nil {
		a.rateLimiter = middleware.NewClientRateLimiter(
			a.cfg.RateLimitRequests,
			a.cfg.RateLimitWindow,
			middleware.DefaultClientKey,
			a.cfg.Log,
		)
	}
	return a.rateLimiter
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/api/v1/auth/", a.authHandler)
	mux.Handle("/ws/", a.wsHandler)
	mux.Handle("/", a.apiHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	if a.notifier != nil {
		a.notifier.Stop()
	}
	if a.feed != nil {
		if err := a.feed.Close(); err != nil {
			a.cfg.Log.Error("Failed to close change feed", "error", err)
		}
	}
	a.cfg.Log.Info("Background workers stopped")

	a.cfg.Client.GracefulShutdown()

	a.cfg.Log.Info("Server stopped gracefully")
}
