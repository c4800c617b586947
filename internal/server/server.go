// Package server exposes the questionnaire over a JSON HTTP API: session
// lifecycle, answer collection, path generation and results email.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ikiguide/ikiguide/internal/config"
	"github.com/ikiguide/ikiguide/internal/email"
	"github.com/ikiguide/ikiguide/internal/ikigai"
	"github.com/ikiguide/ikiguide/internal/logger"
	"github.com/ikiguide/ikiguide/internal/session"
)

const sessionCookieName = "session_id"

// Server wires the session store, the path generator and the mail sender
// behind the HTTP API.
type Server struct {
	cfg       *config.Config
	store     session.Store
	generator ikigai.Generator
	sender    email.Sender

	httpServer *http.Server
}

// New builds a server. generator and sender may be nil when the relevant
// configuration is absent; the affected endpoints then report the feature
// as unavailable.
func New(cfg *config.Config, store session.Store, generator ikigai.Generator, sender email.Sender) *Server {
	s := &Server{
		cfg:       cfg,
		store:     store,
		generator: generator,
		sender:    sender,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Origins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)

	r.Route("/api", func(r chi.Router) {
		r.Post("/start_session", s.handleStartSession)
		r.Get("/session_info", s.handleSessionInfo)
		r.Post("/responses", s.handleSaveResponses)
		r.Get("/responses", s.handleGetResponses)
		r.Get("/results", s.handleResults)
		r.Post("/update_session", s.handleUpdateSession)
		r.Post("/reset_session", s.handleResetSession)
		r.Delete("/end_session", s.handleEndSession)
		r.Post("/email_results", s.handleEmailResults)
		r.Get("/health", s.handleHealth)
	})

	return r
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	logger.Info().Str("addr", s.cfg.Addr()).Msg("starting http server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// setSessionCookie (re)issues the session cookie. The cookie is only marked
// Secure outside development so local HTTP frontends keep working.
func (s *Server) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   s.cfg.Session.CookieMaxAge,
		HttpOnly: true,
		Secure:   !s.cfg.Development(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.cfg.Development(),
		SameSite: http.SameSiteLaxMode,
	})
}

// cookieSessionID returns the session id carried by the request cookie, or
// an empty string.
func cookieSessionID(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
