package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/services"
	appweb "finanzas/web"
)

// Ledger is what the web front-end needs from the ledger service.
type Ledger interface {
	Record(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	Remove(ctx context.Context, id int64) bool
	Overview(ctx context.Context) services.Overview
	Summary(ctx context.Context) core.Summary
	Transactions(ctx context.Context) []core.Transaction
}

// Options tunes optional parts of the server.
type Options struct {
	RateLimitPerMinute int
	Logger             *slog.Logger
	// API is mounted under /api/ when set.
	API http.Handler
	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger    Ledger
	templates *template.Template
	limiter   *ratelimit.Limiter
	logger    *slog.Logger
	ready     func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(log.FieldComponent, log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:  ledger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		logger:  logger,
		ready:   opts.Ready,
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	page := func(h http.HandlerFunc) http.Handler { return security.NoCache(h) }

	mux.Handle("GET /{$}", page(s.handleIndex))
	mux.Handle("GET /dashboard", page(s.handleDashboard))
	mux.Handle("POST /transactions", page(s.handleCreateTransaction))
	mux.Handle("POST /transactions/{id}/delete", page(s.handleDeleteTransaction))
	mux.Handle("DELETE /transactions/{id}", page(s.handleDeleteTransaction))

	// UI partials
	mux.Handle("GET /ui/summary", page(s.handleSummaryPartial))
	mux.Handle("GET /ui/transactions", page(s.handleTransactionsPartial))
	mux.Handle("GET /ui/breakdown", page(s.handleBreakdownPartial))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	if opts.API != nil {
		mux.Handle("/api/", opts.API)
	}

	ips := security.NewClientIPResolver()
	tracer := trace.NewMiddleware(logger, ips.ClientIP)
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Warn("Rate limit exceeded")
		w.Header().Set("Retry-After", "60")
		ErrorResponse(http.StatusTooManyRequests, "Too many changes in a short time. Please wait a minute.").Write(w)
	}

	var handler http.Handler = mux
	handler = s.limiter.Mutating(ips.ClientIP, onLimit)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = tracer.Middleware(handler)
	s.Handler = handler

	return s
}

// Shutdown stops the limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// render executes a template into a buffer first so a failing template
// never leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).Error("Templates not loaded", log.FieldOperation, log.OpRender)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).Error("Template execution failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err, log.ErrorTypeInternal).With("template", name).ToSlice()...)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			log.FromContext(r.Context()).Warn("Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
