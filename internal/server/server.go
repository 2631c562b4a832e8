package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MICA1991/financelitracy-quiz/internal/bootstrap"
	"github.com/MICA1991/financelitracy-quiz/internal/config"
	"github.com/MICA1991/financelitracy-quiz/internal/pkg/helpers"
)

// Server serves the admin reporting API until its context ends
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	release         func()
	logger          zerolog.Logger
}

// NewServer loads configuration and wires the whole service
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	return New(cfg, bootstrap.SetupRouter(cfg, deps, lgr), poolCloser(dbPool), lgr), nil
}

// New builds a Server around handler. release runs once after the listener
// has stopped; it may be nil.
func New(cfg *config.Config, handler http.Handler, release func(), lgr zerolog.Logger) *Server {
	if release == nil {
		release = func() {}
	}
	return &Server{
		http: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      handler,
			ReadTimeout:  helpers.ParseDuration(cfg.Server.ReadTimeout, 10*time.Second),
			WriteTimeout: helpers.ParseDuration(cfg.Server.WriteTimeout, 60*time.Second),
			IdleTimeout:  120 * time.Second,
		},
		shutdownTimeout: helpers.ParseDuration(cfg.Server.ShutdownTimeout, 10*time.Second),
		release:         release,
		logger:          lgr,
	}
}

func poolCloser(pool *pgxpool.Pool) func() {
	return func() {
		if pool != nil {
			pool.Close()
		}
	}
}

// Run listens until ctx is cancelled or the listener fails, then drains
// in-flight requests within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	defer s.release()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})
	return g.Wait()
}

func (s *Server) shutdown() error {
	s.logger.Info().Dur("timeout", s.shutdownTimeout).Msg("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
