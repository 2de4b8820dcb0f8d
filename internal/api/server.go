// Package api provides the HTTP REST API server for Customer Core.
//
// It exposes authentication, staff account management, customer management,
// and audit endpoints to backoffice user interfaces.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oriontek/customer-core/internal/audit"
	"github.com/oriontek/customer-core/internal/auth"
	"github.com/oriontek/customer-core/internal/customer"
	"github.com/oriontek/customer-core/internal/infrastructure/config"
	"github.com/oriontek/customer-core/internal/infrastructure/database"
	"github.com/oriontek/customer-core/internal/infrastructure/logging"
	"github.com/oriontek/customer-core/internal/metrics"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	DB        *database.DB
	Auth      *auth.Service
	Accounts  *auth.AccountService
	Customers *customer.Service
	AuditRepo audit.Repository
	Metrics   metrics.Collector
	Gatherer  prometheus.Gatherer // serves GET /metrics; nil disables the endpoint
	Version   string
}

// Server is the HTTP API server for Customer Core.
type Server struct {
	cfg       config.APIConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	db        *database.DB
	auth      *auth.Service
	accounts  *auth.AccountService
	customers *customer.Service
	auditRepo audit.Repository
	metrics   metrics.Collector
	gatherer  prometheus.Gatherer
	version   string
	limiter   *loginLimiter
	server    *http.Server
	cancel    context.CancelFunc // stops background goroutines on Close()
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	if deps.Accounts == nil {
		return nil, fmt.Errorf("account service is required")
	}
	if deps.Customers == nil {
		return nil, fmt.Errorf("customer service is required")
	}

	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	s := &Server{
		cfg:       deps.Config,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		db:        deps.DB,
		auth:      deps.Auth,
		accounts:  deps.Accounts,
		customers: deps.Customers,
		auditRepo: deps.AuditRepo,
		metrics:   collector,
		gatherer:  deps.Gatherer,
		version:   deps.Version,
	}

	if deps.Security.RateLimit.Enabled {
		s.limiter = newLoginLimiter(deps.Security.RateLimit)
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.limiter != nil {
		go s.limiter.cleanLoop(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
// It waits up to 10 seconds for in-flight requests to complete.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
