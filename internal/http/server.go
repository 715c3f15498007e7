package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"aulas/internal/log"
	"aulas/internal/report"
	"aulas/internal/services"
	appweb "aulas/web"
)

// Server serves the ledger page, its JSON listings and report downloads.
type Server struct {
	http.Server
	templates   *template.Template
	ledger      *services.Ledger
	reports     *report.Service
	logger      *log.Logger
	rateLimiter *rateLimiter
	security    *securityMetrics
	started     time.Time
	now         func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.Ledger, reports *report.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	mux := http.NewServeMux()

	s := &Server{
		ledger:      ledger,
		reports:     reports,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(defaultRateLimit),
		security:    &securityMetrics{},
		started:     time.Now(),
		now:         time.Now,
	}
	s.rateLimiter.start()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /students", s.handleListStudents)
	mux.HandleFunc("POST /students", s.handleRegisterStudent)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("POST /sessions", s.handleBookSession)
	mux.HandleFunc("GET /reports", s.handleReport)
	mux.HandleFunc("POST /reset", s.handleReset)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        log.Middleware(logger)(log.AccessLog(s.withSecurity(mux))),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// withSecurity sets security headers on every response, rate limits
// mutating requests and logs probing requests.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		logger := log.FromContext(r.Context())

		if detectSuspiciousRequest(r, s.security) {
			logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		setSecurityHeaders(w.Header())

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.security) {
			logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").Write(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Shutdown stops background routines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
