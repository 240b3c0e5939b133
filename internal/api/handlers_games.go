package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wondertwin-ai/starjar/internal/games"
	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

// ListGames handles GET /v1/games.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{"games": games.All()})
}

// FinishGame handles POST /v1/games/{game}/finish.
func (h *Handler) FinishGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score int `json:"score"`
	}
	if err := decode(r, &req); err != nil {
		h.badRequest(w, r)
		return
	}

	award, err := h.Arcade.Finish(chi.URLParam(r, "game"), req.Score)
	switch {
	case err == nil:
	case errors.Is(err, games.ErrUnknownGame):
		h.fail(w, r, http.StatusNotFound, ReasonUnknownGame, i18n.UnknownGame)
		return
	default:
		h.internalError(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, award)
}
