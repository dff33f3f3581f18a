// internal/httpserver/server.go
//
// HTTP server wiring for the 2048 backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints (optional auth): mounted under /api/games.
//   - Live updates: GET /api/games/{id}/ws.
//   - Auth endpoints (only with a SQL store): /auth/*, /api/games/mine.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid token is present;
//     guests can still play.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/game2048/internal/auth"
	"github.com/robalobadob/game2048/internal/config"
	"github.com/robalobadob/game2048/internal/game"
	"github.com/robalobadob/game2048/internal/service"
)

// Subscriber attaches a websocket client to a game's update stream. load
// supplies the initial snapshot once the client is subscribed.
type Subscriber interface {
	ServeWS(w http.ResponseWriter, r *http.Request, id string, load func(context.Context) (*game.Game, error))
}

// Deps are the collaborators a Server routes to. Users, Signer and Live are
// optional; the corresponding routes are not mounted when nil.
type Deps struct {
	Games  *service.Service
	Users  *auth.Users
	Signer *auth.Signer
	Live   Subscriber
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	cfg  *config.Config
	deps Deps
	http *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, deps Deps) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, deps: deps}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger)) // request-scoped logger
	s.r.Use(accessLog)                   // one line per request
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(jsonContentType)             // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))      // credentials-friendly CORS
	s.r.Use(s.withOptionalAuth())        // attach user when a token is present

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"game2048-go","endpoints":["/health","POST /api/games","GET /api/games/{id}","POST /api/games/{id}/move","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountGames(s.r)
	if s.accountsEnabled() {
		s.r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.requestTimeout()))
			s.mountAuth(r)
		})
	}

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Status: http.StatusNotFound, Error: "not_found", Message: r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Status: http.StatusMethodNotAllowed, Error: "method_not_allowed", Message: r.Method + " " + r.URL.Path})
	})

	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Start begins serving HTTP on addr. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) accountsEnabled() bool {
	return s.deps.Users != nil && s.deps.Signer != nil
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.RequestTimeout <= 0 {
		return 10 * time.Second
	}
	return s.cfg.RequestTimeout
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// accessLog writes one line per request through the request logger.
func accessLog(next http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(next)
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
