// internal/httpserver/routes_games.go
//
// HTTP routes for playing 2048:
//   - POST /api/games            → create a game (?boardSize=N or {"boardSize":N})
//   - GET  /api/games/{id}       → current state
//   - POST /api/games/{id}/move  → apply a move (?direction=UP or {"direction":"UP"})
//   - GET  /api/games/{id}/ws    → websocket stream of state updates
//
// Guests can play; when the caller is authenticated the new game records
// the caller as owner.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/game2048/internal/game"
)

// gameRes is the wire shape of a game.
type gameRes struct {
	ID        string      `json:"id"`
	Board     game.Board  `json:"board"`
	Score     int         `json:"score"`
	GameOver  bool        `json:"gameOver"`
	Won       bool        `json:"won"`
	Status    game.Status `json:"status"`
	BoardSize int         `json:"boardSize"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toGameRes(g *game.Game) gameRes {
	return gameRes{
		ID:        g.ID,
		Board:     g.Board,
		Score:     g.Score,
		GameOver:  g.GameOver,
		Won:       g.Won,
		Status:    g.Status(),
		BoardSize: g.Board.Size(),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// newGameReq/moveReq are the optional JSON bodies; query parameters win.
type newGameReq struct {
	BoardSize *int `json:"boardSize"`
}
type moveReq struct {
	Direction string `json:"direction"`
}

// mountGames registers the /api/games routes. Request/response handlers get
// a bounded handler time; the websocket stream is long-lived.
func (s *Server) mountGames(r chi.Router) {
	r.Route("/api/games", func(r chi.Router) {
		if s.deps.Live != nil {
			r.Get("/{id}/ws", s.handleSubscribe)
		}
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.requestTimeout()))
			r.Post("/", s.handleNewGame)
			if s.accountsEnabled() {
				r.With(s.requireAuth()).Get("/mine", s.handleMyGames)
			}
			r.Get("/{id}", s.handleGetGame)
			r.Post("/{id}/move", s.handleMove)
		})
	})
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	size := s.cfg.DefaultBoardSize

	var body newGameReq
	if err := decodeOptional(r, &body); err != nil {
		badJSON(w)
		return
	}
	if body.BoardSize != nil {
		size = *body.BoardSize
	}
	if raw := r.URL.Query().Get("boardSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: boardSize %q is not an integer", game.ErrInvalidBoardSize, raw))
			return
		}
		size = n
	}

	owner := ""
	if me := currentUser(r); me != nil {
		owner = me.ID
	}
	g, err := s.deps.Games.NewGame(r.Context(), size, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameRes(g))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.deps.Games.Game(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameRes(g))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("direction")
	if raw == "" {
		var body moveReq
		if err := decodeOptional(r, &body); err != nil {
			badJSON(w)
			return
		}
		raw = body.Direction
	}
	d, err := game.ParseDirection(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}

	g, err := s.deps.Games.Move(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameRes(g))
}

// handleSubscribe upgrades to a websocket for an existing game. Unknown IDs
// are rejected before the upgrade; the snapshot itself is re-read after the
// subscription is live.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.deps.Games.Game(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.deps.Live.ServeWS(w, r, id, func(ctx context.Context) (*game.Game, error) {
		return s.deps.Games.Game(ctx, id)
	})
}

// decodeOptional decodes a JSON body into v; an absent or empty body is not an error.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
