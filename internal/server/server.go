// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/terrashield/terrashield/internal/aiunderwriter"
	"github.com/terrashield/terrashield/internal/config"
	"github.com/terrashield/terrashield/internal/contract"
	"github.com/terrashield/terrashield/internal/governance"
	"github.com/terrashield/terrashield/internal/health"
	"github.com/terrashield/terrashield/internal/logging"
	"github.com/terrashield/terrashield/internal/metrics"
	"github.com/terrashield/terrashield/internal/ratelimit"
	"github.com/terrashield/terrashield/internal/realtime"
	"github.com/terrashield/terrashield/internal/security"
	"github.com/terrashield/terrashield/internal/txlog"
	"github.com/terrashield/terrashield/internal/underwriting"
	"github.com/terrashield/terrashield/internal/validation"
	"github.com/terrashield/terrashield/internal/weather"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	rules        *underwriting.Calculator
	strategy     underwriting.Strategy
	weatherCli   *weather.Client
	history      *weather.History
	chain        *contract.Client
	priceFeed    *contract.PriceFeed
	govService   *governance.Service
	govMonitor   *governance.Monitor
	txlogService *txlog.Service
	realtimeHub  *realtime.Hub
	rateLimiter  *ratelimit.Limiter
	healthReg    *health.Registry
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithChainClient injects a pre-built insurance contract client (for testing)
func WithChainClient(c *contract.Client) Option {
	return func(s *Server) {
		s.chain = c
	}
}

// WithGovernance injects a pre-built governance service (for testing)
func WithGovernance(g *governance.Service) Option {
	return func(s *Server) {
		s.govService = g
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	// Apply options first (may set chain client/logger)
	for _, opt := range opts {
		opt(s)
	}

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	var txStore txlog.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Configure connection pool
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		// Test connection
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		txStore = txlog.NewPostgresStore(db)
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
	} else {
		txStore = txlog.NewMemoryStore()
		s.logger.Info("using in-memory storage (data will not persist)")
	}

	// Realtime hub doubles as the event emitter for every domain service
	s.realtimeHub = realtime.NewHub(s.logger)

	s.txlogService = txlog.NewService(txStore).WithEvents(s.realtimeHub)

	// Weather provider and in-process observation history
	s.weatherCli = weather.NewClient(cfg.WeatherBaseURL)
	s.history = weather.NewHistory()

	// Premium quoting: rule-based catalog always available, AI underwriter
	// layered on top when a Gemini key is configured. The fallback strategy
	// guarantees a quote even when the AI path is down.
	s.rules = underwriting.NewCalculator(underwriting.NewCatalog()).
		WithBaseline(cfg.DefaultBaseline).
		WithPremiumBounds(cfg.MinPremium, cfg.MaxPremium)
	s.strategy = s.rules
	if cfg.GeminiAPIKey != "" {
		ai := aiunderwriter.New(cfg.GeminiAPIKey, cfg.GeminiModel, s.weatherCli)
		s.strategy = underwriting.NewFallback(ai, s.rules, s.logger)
		s.logger.Info("AI underwriter enabled", "model", cfg.GeminiModel)
	} else {
		s.logger.Info("AI underwriter disabled, quoting by rules only")
	}

	// Insurance contract client (optional: without a contract address the API
	// still quotes premiums and serves weather, it just has no chain surface)
	if s.chain == nil && cfg.InsuranceContract != "" {
		c, err := contract.New(contract.Config{
			RPCURL:          cfg.RPCURL,
			PrivateKey:      cfg.PrivateKey,
			ChainID:         cfg.ChainID,
			ContractAddress: cfg.InsuranceContract,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create contract client: %w", err)
		}
		s.chain = c
		s.logger.Info("insurance contract client enabled",
			"contract", cfg.InsuranceContract,
			"signing", c.CanSign(),
		)
	}

	if s.chain != nil && cfg.PriceFeedContract != "" {
		feed, err := contract.NewPriceFeed(s.chain.Backend(), cfg.PriceFeedContract)
		if err != nil {
			s.logger.Warn("price feed disabled", "error", err)
		} else {
			s.priceFeed = feed
		}
	}

	// Governance service and auto-execution monitor (optional)
	if s.govService == nil && cfg.GovernanceContract != "" {
		g, err := governance.New(governance.Config{
			RPCURL:          cfg.RPCURL,
			PrivateKey:      cfg.PrivateKey,
			ChainID:         cfg.ChainID,
			ContractAddress: cfg.GovernanceContract,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create governance service: %w", err)
		}
		s.govService = g
		s.logger.Info("governance enabled", "contract", cfg.GovernanceContract)
	}
	if s.govService != nil {
		s.govMonitor = governance.NewMonitor(s.govService, cfg.GovernanceMonitorInterval, s.logger).
			WithEvents(s.realtimeHub)
	}

	// Health checks
	s.healthReg = health.NewRegistry()
	if s.db != nil {
		s.healthReg.Register("database", health.DBChecker("database", s.db, 2*time.Second))
	}
	if s.chain != nil {
		chain := s.chain
		s.healthReg.Register("rpc", health.FuncChecker("rpc", func(ctx context.Context) error {
			_, err := chain.Balance(ctx)
			return err
		}))
	}

	// Configure gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

// maskDSN hides password in connection string for logging
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS (allow all origins for demo - restrict in production)
	s.router.Use(security.CORSMiddleware([]string{"*"}))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	rlCfg := ratelimit.DefaultConfig()
	if s.cfg.RateLimitRPS > 0 {
		rlCfg.RequestsPerMinute = s.cfg.RateLimitRPS * 60
		rlCfg.BurstSize = s.cfg.RateLimitRPS
	}
	s.rateLimiter = ratelimit.New(rlCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(logging.RequestIDMiddleware(s.logger))

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		// Log level based on status code
		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

// -----------------------------------------------------------------------------
// Routes
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/healthz", s.healthHandler)
	s.router.GET("/readyz", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// WebSocket for real-time streaming
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	// V1 API group
	v1 := s.router.Group("/v1")

	underwriting.NewHandler(s.strategy, s.rules).
		WithEvents(s.realtimeHub).
		RegisterRoutes(v1)

	weather.NewHandler(s.weatherCli, s.history).
		WithEvents(s.realtimeHub).
		RegisterRoutes(v1)

	txlog.NewHandler(s.txlogService).RegisterRoutes(v1, security.AdminSecretMiddleware(s.cfg.AdminSecret))

	if s.chain != nil {
		contract.NewHandler(s.chain, s.priceFeed).
			WithRecorder(txlog.NewContractRecorder(s.txlogService, s.logger)).
			RegisterRoutes(v1)
	}

	if s.govService != nil {
		governance.NewHandler(s.govService).RegisterRoutes(v1)
	}
}

// -----------------------------------------------------------------------------
// Health
// -----------------------------------------------------------------------------

func (s *Server) healthHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ok, statuses := s.healthReg.CheckAll(ctx)
	checks := make(map[string]string, len(statuses))
	for _, st := range statuses {
		state := "healthy"
		if !st.Healthy {
			state = "unhealthy"
		}
		checks[st.Name] = state
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !ok {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"version":   "0.1.0",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Run starts the HTTP server and background workers, blocking until a
// shutdown signal arrives or the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	// Create a cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to catch server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.logger.Info("starting server",
			"port", s.cfg.Port,
			"env", s.cfg.Env,
		)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	if s.realtimeHub != nil {
		go s.realtimeHub.Run(runCtx)
	}

	// Start governance auto-execution monitor
	if s.govMonitor != nil {
		go s.govMonitor.Start(runCtx)
	}

	// Start database pool stats collector
	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for all background goroutines (hub, monitor)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	// Give load balancers time to stop sending traffic
	time.Sleep(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	// Stop governance monitor
	if s.govMonitor != nil {
		s.govMonitor.Stop()
		s.logger.Info("governance monitor stopped")
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
		s.logger.Info("rate limiter stopped")
	}

	// Close chain connections
	if s.chain != nil {
		if err := s.chain.Close(); err != nil {
			s.logger.Error("contract client close error", "error", err)
		}
	}
	if s.govService != nil {
		if err := s.govService.Close(); err != nil {
			s.logger.Error("governance close error", "error", err)
		}
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}
