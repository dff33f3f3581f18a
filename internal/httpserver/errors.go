package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/game2048/internal/auth"
	"github.com/robalobadob/game2048/internal/game"
	"github.com/robalobadob/game2048/internal/store"
)

type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError maps domain errors to HTTP responses. Internal failures are
// logged with full detail and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := http.StatusInternalServerError, "internal_error", "internal server error"

	switch {
	case errors.Is(err, game.ErrInvalidBoardSize), errors.Is(err, game.ErrInvalidDirection):
		status, code, msg = http.StatusBadRequest, "bad_request", err.Error()
	case errors.Is(err, store.ErrNotFound):
		status, code, msg = http.StatusNotFound, "not_found", "game not found"
	case errors.Is(err, game.ErrCorruptBoard):
		code, msg = "corrupt_state", "stored game state is corrupt"
	case errors.Is(err, auth.ErrInvalidSignup):
		status, code, msg = http.StatusBadRequest, "invalid_signup", err.Error()
	case errors.Is(err, auth.ErrUsernameTaken):
		status, code, msg = http.StatusConflict, "username_taken", "username taken"
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, code, msg = http.StatusUnauthorized, "invalid_credentials", "invalid username or password"
	}

	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg(code)
	}
	writeJSON(w, status, errorBody{Status: status, Error: code, Message: msg})
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody{Status: http.StatusBadRequest, Error: "bad_json", Message: "request body is not valid JSON"})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Status: http.StatusUnauthorized, Error: "unauthorized", Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
