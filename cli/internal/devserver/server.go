// Package devserver is an in-memory SecureGate backend. It serves the same
// endpoints as the real service so sgadmin can be tried and tested without
// one.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/securegate/sgadmin/common/logging"
	"github.com/securegate/sgadmin/common/middleware"
)

// Config controls the dev server.
type Config struct {
	Secret         string
	TokenTTL       time.Duration
	AllowedOrigins []string
	// LoginRate is the sustained number of login attempts per second.
	// Zero disables the limit.
	LoginRate  float64
	LoginBurst int
	BcryptCost int
	Roles      []SeedRole
	Users      []SeedUser
	Clock      clockwork.Clock
}

// DefaultConfig returns the settings of the stock SecureGate deployment.
func DefaultConfig() Config {
	roles, users := DefaultSeed()
	return Config{
		Secret:         "supersecret",
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:8000"},
		LoginRate:      5,
		LoginBurst:     10,
		BcryptCost:     bcrypt.DefaultCost,
		Roles:          roles,
		Users:          users,
	}
}

type Server struct {
	repo    *Repository
	tokens  *TokenIssuer
	logger  *logging.Logger
	limiter *rate.Limiter
	handler http.Handler
}

func New(cfg Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	repo, err := NewRepository(cfg.Roles, cfg.Users, cfg.BcryptCost, cfg.Clock)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.LoginRate > 0 {
		limit = rate.Limit(cfg.LoginRate)
	}

	s := &Server{
		repo:    repo,
		tokens:  NewTokenIssuer(cfg.Secret, cfg.TokenTTL, cfg.Clock),
		logger:  logger.With(logging.Component("devserver")),
		limiter: rate.NewLimiter(limit, cfg.LoginBurst),
	}
	s.handler = s.routes(cfg.AllowedOrigins)
	return s, nil
}

func (s *Server) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer, middleware.APISecurityHeaders(false), s.logRequests)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(admin chi.Router) {
		admin.Use(s.requirePermission(PermAdmin))
		admin.Get("/admin/users", s.handleUsers)
		admin.Get("/admin/roles", s.handleRoles)
		admin.Post("/admin/assign-role", s.handleAssignRole)
		admin.Post("/admin/remove-role", s.handleRemoveRole)
		admin.Get("/audit/logs", s.handleAuditLogs)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Repository() *Repository { return s.repo }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "dev server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dev server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.InfoContext(ctx, "shutting down dev server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dev server shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			logging.Method(r.Method), logging.Endpoint(r.URL.Path),
			logging.Status(ww.Status()), logging.Duration(time.Since(start).Milliseconds()))
	})
}
