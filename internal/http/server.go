package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"solde/internal/backend"
	"solde/internal/cache"
	"solde/internal/core"
	"solde/internal/log"
	"solde/internal/metrics"
	"solde/internal/middleware/ratelimit"
	"solde/internal/middleware/security"
	"solde/internal/middleware/trace"
	appweb "solde/web"
)

const (
	defaultCacheTTL      = 30 * time.Second
	cacheCleanupInterval = 10 * time.Minute
	listCacheKey         = "all"
)

// Options tunes the server. Zero values pick the defaults.
type Options struct {
	Logger             *log.Logger
	RateLimitPerMinute int
	CacheTTL           time.Duration
}

type Server struct {
	http.Server
	templates  *template.Template
	backend    backend.Backend
	logger     *log.Logger
	structured *log.StructuredLogger

	rateLimiter     *ratelimit.Limiter
	traceMiddleware *trace.Middleware

	cacheManager  *cache.Manager
	listLoader    *cache.Loader[[]core.Transaction]
	summaryLoader *cache.Loader[core.Totals]

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, be backend.Backend, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	mux := http.NewServeMux()
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		backend:    be,
		logger:     httpLogger,
		structured: log.NewStructuredLogger(httpLogger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		traceMiddleware: trace.NewMiddleware(logger, security.ClientIP),
		cacheManager:    cache.NewManager(),
		listLoader:      cache.NewLoader("transactions", cache.NewLRUCache[[]core.Transaction](8, ttl)),
		summaryLoader:   cache.NewLoader("summary", cache.NewLRUCache[core.Totals](8, ttl)),
		startedAt:       time.Now(),
	}

	s.cacheManager.Register(s.listLoader.Cache())
	s.cacheManager.Register(s.summaryLoader.Cache())
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", "error", err, log.FieldErrorType, log.ErrorTypeConfiguration)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServerFS(sub))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	limited := s.rateLimiter.Middleware(security.ClientIP, s.onRateLimit)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/transactions/{$}", s.handleListTransactions)
	mux.Handle("POST /api/transactions/{$}", limited(http.HandlerFunc(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/summary/{$}", s.handleSummary)

	// UI partials
	mux.HandleFunc("GET /ui/transactions", s.handleLedger)
	mux.Handle("POST /ui/transactions", limited(http.HandlerFunc(s.handleCreateTransactionUI)))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := trace.RecordRoute(mux)
	handler = headers.Middleware(handler)
	handler = log.Middleware(httpLogger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) invalidateCaches() {
	s.listLoader.Invalidate()
	s.summaryLoader.Invalidate()
}

// loadTimeout bounds store calls made on behalf of possibly several callers.
const loadTimeout = 7 * time.Second

func (s *Server) transactions(ctx context.Context) ([]core.Transaction, error) {
	list, err := s.listLoader.Get(listCacheKey, func() ([]core.Transaction, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.backend.List(cctx)
	})
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, len(list))
	copy(out, list)
	return out, nil
}

func (s *Server) totals(ctx context.Context) (core.Totals, error) {
	return s.summaryLoader.Get(listCacheKey, func() (core.Totals, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.backend.Totals(cctx)
	})
}
