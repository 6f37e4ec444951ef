// Package httpapi exposes the REST surface of LifeKeeper: identity, the
// module catalog and per-user settings, and the habit ledger.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/lifekeeper/internal/logging"
	"github.com/dmitrijs2005/lifekeeper/internal/server/config"
	"github.com/dmitrijs2005/lifekeeper/internal/server/gate"
	"github.com/dmitrijs2005/lifekeeper/internal/server/metrics"
	"github.com/go-playground/validator/v10"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address        string
	allowedOrigins []string
	readTimeout    time.Duration
	writeTimeout   time.Duration

	logger   logging.Logger
	users    Users
	settings Settings
	habits   Habits
	gate     *gate.Gate
	metrics  *metrics.Metrics
	limiter  *rateLimiter
	validate *validator.Validate

	// gated lists the path prefixes behind a module; see methodNotAllowed.
	gated                 []gatedPrefix
	gatedMethodNotAllowed http.Handler

	started time.Time
	now     func() time.Time
	handler http.Handler
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us Users, ss Settings, hs Habits, g *gate.Gate, m *metrics.Metrics) *HTTPServer {
	s := &HTTPServer{
		address:        cfg.EndpointAddrHTTP,
		allowedOrigins: cfg.AllowedOrigins,
		readTimeout:    cfg.ReadTimeout,
		writeTimeout:   cfg.WriteTimeout,
		logger:         l.With("module", "http_server"),
		users:          us,
		settings:       ss,
		habits:         hs,
		gate:           g,
		metrics:        m,
		limiter:        newRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
		validate:       newValidator(),
		started:        time.Now(),
		now:            time.Now,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped router.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	go s.limiter.startCleanup(ctx, time.Minute)

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
