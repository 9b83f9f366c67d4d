package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mks-o/spotify-organizer/internal/app/organize"
	"github.com/mks-o/spotify-organizer/internal/infra/config"
	spotifyinfra "github.com/mks-o/spotify-organizer/internal/infra/spotify"
)

// Server is the HTTP server for the organizer API.
type Server struct {
	cfg      *config.Config
	router   chi.Router
	server   *http.Server
	sessions *SessionStore
	handlers *Handlers
}

// NewServer creates a new web server.
func NewServer(cfg *config.Config) (*Server, error) {
	auth := spotifyinfra.NewAuthenticator(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.RedirectURL())
	sessions := NewSessionStore(time.Duration(cfg.Server.SessionTTLMin) * time.Minute)

	handlers := NewHandlers(cfg, auth, sessions,
		organize.NewEngineFromConfig(cfg),
		organize.NewNamerFromConfig(cfg),
		organize.NewNormalizerFromConfig(cfg))

	router := chi.NewRouter()

	s := &Server{
		cfg:      cfg,
		router:   router,
		sessions: sessions,
		handlers: handlers,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // library fetch and bulk create are slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(s.cfg.Server.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handlers.Home)
	s.router.Get("/auth/login", s.handlers.Login)
	s.router.Get("/callback", s.handlers.Callback)
	s.router.Post("/auth/logout", s.handlers.Logout)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.handlers.RequireSession)
		r.Get("/me", s.handlers.Me)
		r.Get("/songs", s.handlers.Songs)
		r.Post("/genres", s.handlers.Genres)
		r.Get("/groups", s.handlers.Groups)
		r.Get("/duplicates", s.handlers.Duplicates)
		r.Post("/playlists", s.handlers.CreatePlaylist)
		r.Post("/playlists/bulk", s.handlers.BulkCreate)
		r.Post("/exclusions", s.handlers.Exclusions)
	})
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zlog.Debug().Msgf("http request: method=%s path=%s status=%d duration=%s",
			r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	zlog.Info().Msgf("server listening: addr=%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		zlog.Info().Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return err
	}

	zlog.Info().Msg("server stopped")
	return nil
}
