package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/form"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/storage"
	appweb "financas/web"
)

// FinanceAPI is everything the server asks of the external finance API.
type FinanceAPI interface {
	form.CategoryAPI
	form.TransactionAPI
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetDashboard(ctx context.Context) (core.Dashboard, error)
	Ping(ctx context.Context) error
}

// Mutations records submitted writes and reads them back for /activity.
type Mutations interface {
	form.Recorder
	Recent(ctx context.Context, limit int) ([]storage.Entry, error)
	Enabled() bool
	Ping(ctx context.Context) error
}

// Options configures NewServer. API and Queries are required.
type Options struct {
	Addr               string
	API                FinanceAPI
	Queries            *cache.QueryCache
	Mutations          Mutations
	Logger             *log.Logger
	RateLimitPerMinute int

	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header is believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	api       FinanceAPI
	queries   *cache.QueryCache
	mutations Mutations
	logger    *log.Logger
	started   time.Time

	detector    *security.Detector
	tracer      *trace.Middleware
	rateLimiter *ratelimit.Limiter

	categoryForms    *form.CategorySubmitter
	transactionForms *form.TransactionSubmitter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) (*Server, error) {
	if opts.API == nil || opts.Queries == nil {
		return nil, errors.New("http: API and Queries are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    64 << 10,
		},
		templates: t,
		api:       opts.API,
		queries:   opts.Queries,
		mutations: opts.Mutations,
		logger:    logger,
		started:   time.Now(),
		detector:  security.NewDetector(logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("http: %w", err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	var recorder form.Recorder
	if opts.Mutations != nil {
		recorder = opts.Mutations
	}
	s.categoryForms = &form.CategorySubmitter{API: opts.API, Cache: opts.Queries, Recorder: recorder}
	s.transactionForms = &form.TransactionSubmitter{API: opts.API, Cache: opts.Queries, Recorder: recorder}

	s.Handler = s.middleware(s.routes())
	return s, nil
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err == nil {
		r.PathPrefix("/static/").Handler(
			security.StaticAssetMiddleware(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(static)))),
		).Methods(http.MethodGet, http.MethodHead)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleDashboardPage).Methods(http.MethodGet)
	r.HandleFunc("/activity", s.handleActivityPage).Methods(http.MethodGet)

	r.HandleFunc("/categories", s.handleCategoriesPage).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	r.HandleFunc("/categories/new", s.handleNewCategoryForm).Methods(http.MethodGet)
	r.HandleFunc("/categories/{id:[0-9]+}/edit", s.handleEditCategoryForm).Methods(http.MethodGet)
	// POST too: plain HTML forms cannot PUT.
	r.HandleFunc("/categories/{id:[0-9]+}", s.handleUpdateCategory).Methods(http.MethodPut, http.MethodPost)

	r.HandleFunc("/transactions", s.handleTransactionsPage).Methods(http.MethodGet)
	r.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/new", s.handleNewTransactionForm).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id:[0-9]+}/edit", s.handleEditTransactionForm).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id:[0-9]+}", s.handleUpdateTransaction).Methods(http.MethodPut, http.MethodPost)

	ui := r.PathPrefix("/ui").Subrouter()
	ui.HandleFunc("/dashboard", s.handleDashboardPartial).Methods(http.MethodGet)
	ui.HandleFunc("/categories/table", s.handleCategoriesTable).Methods(http.MethodGet)
	ui.HandleFunc("/transactions/table", s.handleTransactionsTable).Methods(http.MethodGet)
	ui.HandleFunc("/currency-mask", s.handleCurrencyMask).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	return r
}

// middleware wraps h so the outermost layer runs first: logger injection,
// probe detection, request tracing, security headers, then rate limiting of
// mutations.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	h = log.Middleware(s.logger)(h)
	return h
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("Página não encontrada").Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
