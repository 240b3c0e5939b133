package api

import (
	"errors"
	"net/http"

	"github.com/wondertwin-ai/starjar/internal/assistant"
	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

// Ask handles POST /v1/assistant/ask.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string             `json:"question"`
		Audience assistant.Audience `json:"audience"`
	}
	if err := decode(r, &req); err != nil {
		h.badRequest(w, r)
		return
	}

	answer, err := h.Assistant.Ask(r.Context(), req.Audience, req.Question)
	switch {
	case err == nil:
	case errors.Is(err, assistant.ErrEmptyQuestion), errors.Is(err, assistant.ErrUnknownAudience):
		h.fail(w, r, http.StatusUnprocessableEntity, "", i18n.InvalidRequest)
		return
	default:
		h.logger.Warn("assistant ask failed", "err", err)
		h.fail(w, r, http.StatusBadGateway, ReasonUnavailable, i18n.AssistantFailed)
		return
	}
	server.JSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// Carbs handles POST /v1/assistant/carbs.
func (h *Handler) Carbs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Food string `json:"food"`
	}
	if err := decode(r, &req); err != nil {
		h.badRequest(w, r)
		return
	}

	info, err := h.Assistant.Carbs(r.Context(), req.Food)
	switch {
	case err == nil:
	case errors.Is(err, assistant.ErrEmptyQuestion):
		h.fail(w, r, http.StatusUnprocessableEntity, "", i18n.InvalidRequest)
		return
	case errors.Is(err, assistant.ErrFoodNotFound):
		h.fail(w, r, http.StatusNotFound, ReasonFoodNotFound, i18n.FoodNotFound)
		return
	default:
		h.logger.Warn("carb lookup failed", "err", err)
		h.fail(w, r, http.StatusBadGateway, ReasonUnavailable, i18n.CarbLookupFailed)
		return
	}
	server.JSON(w, http.StatusOK, info)
}
