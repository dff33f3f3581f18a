// internal/httpserver/routes_auth.go
//
// Account routes and the JWT + cookie plumbing behind them.
//   - POST /auth/signup, POST /auth/login, POST /auth/logout
//   - GET  /auth/me          (require auth)
//   - GET  /api/games/mine   (require auth, mounted with the game routes) latest
//     games owned by the caller

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/game2048/internal/auth"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func currentUser(r *http.Request) *authUser {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return me
}

// mountAuth registers authentication and gated routes.
func (s *Server) mountAuth(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badJSON(w)
		return
	}
	u, err := s.deps.Users.Create(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.issueSession(w, r, u) {
		return
	}
	hlog.FromRequest(r).Info().Str("user", u.ID).Msg("signup")
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badJSON(w)
		return
	}
	u, err := s.deps.Users.Authenticate(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !s.issueSession(w, r, u) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setAuthCookie(w, "", time.Time{}, -1)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := s.deps.Games.GamesByOwner(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]gameRes, 0, len(games))
	for _, g := range games {
		out = append(out, toGameRes(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// issueSession signs a token and sets the auth cookie. It writes the error
// response itself and reports false on failure.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, u *auth.User) bool {
	tok, exp, err := s.deps.Signer.Sign(u)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	s.setAuthCookie(w, tok, exp, 0)
	return true
}

// --------------------------- auth middleware -------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.deps.Signer != nil {
				if tok := s.bearerOrCookie(r); tok != "" {
					if claims, err := s.deps.Signer.Parse(tok); err == nil {
						ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: claims.Subject, Username: claims.Username})
						r = r.WithContext(ctx)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT for a user that still exists.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := s.bearerOrCookie(r)
			if tok == "" {
				unauthorized(w, "missing token")
				return
			}
			claims, err := s.deps.Signer.Parse(tok)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			u, err := s.deps.Users.ByID(r.Context(), claims.Subject)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: u.ID, Username: u.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ------------------------------ cookies ------------------------------------

// setAuthCookie writes (maxAge 0) or deletes (maxAge -1) the auth token cookie.
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time, maxAge int) {
	secure := s.cfg.Production
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
		MaxAge:   maxAge,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
