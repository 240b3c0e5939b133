package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

// ListRewards handles GET /v1/rewards.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{
		"rewards": h.Ledger.Rewards(),
	})
}

func rewardID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

// UnlockReward handles POST /v1/rewards/{id}/unlock. Unknown ids leave the
// catalog unchanged.
func (h *Handler) UnlockReward(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		h.badRequest(w, r)
		return
	}
	rewards, err := h.Ledger.Unlock(id)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, map[string]any{
		"rewards": rewards,
	})
}

// RedeemReward handles POST /v1/rewards/{id}/redeem: check the balance,
// debit the cost and unlock the reward in one step.
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	id, ok := rewardID(r)
	if !ok {
		h.badRequest(w, r)
		return
	}

	redemption, err := h.Ledger.Redeem(id)
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrUnknownReward):
		h.fail(w, r, http.StatusNotFound, ReasonUnknownReward, i18n.UnknownReward)
		return
	case errors.Is(err, ledger.ErrAlreadyUnlocked):
		h.fail(w, r, http.StatusConflict, ReasonAlreadyUnlocked, i18n.AlreadyUnlocked)
		return
	case errors.Is(err, ledger.ErrInsufficientStars):
		h.fail(w, r, http.StatusUnprocessableEntity, ReasonInsufficientStars,
			i18n.InsufficientStars, h.Ledger.Stars(), rewardCost(id))
		return
	default:
		h.internalError(w, r, err)
		return
	}

	server.JSON(w, http.StatusOK, map[string]any{
		"redemption": redemption,
		"stars":      redemption.Balance,
		"rewards":    h.Ledger.Rewards(),
	})
}

func rewardCost(id int) int {
	for _, rw := range ledger.DefaultRewards() {
		if rw.ID == id {
			return rw.Cost
		}
	}
	return 0
}
