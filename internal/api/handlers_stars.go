package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/internal/notify"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

type amountRequest struct {
	Amount *int `json:"amount"`
}

// GetStars handles GET /v1/stars.
func (h *Handler) GetStars(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]int{"stars": h.Ledger.Stars()})
}

// AddStars handles POST /v1/stars/add.
func (h *Handler) AddStars(w http.ResponseWriter, r *http.Request) {
	h.changeStars(w, r, h.Ledger.Add)
}

// SpendStars handles POST /v1/stars/spend.
func (h *Handler) SpendStars(w http.ResponseWriter, r *http.Request) {
	h.changeStars(w, r, h.Ledger.Spend)
}

func (h *Handler) changeStars(w http.ResponseWriter, r *http.Request, apply func(int) (int, error)) {
	var req amountRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, r)
		return
	}
	if req.Amount == nil || *req.Amount < 0 {
		h.fail(w, r, http.StatusUnprocessableEntity, "", i18n.InvalidRequest)
		return
	}
	total, err := apply(*req.Amount)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, map[string]int{"stars": total})
}

// StarEvents handles GET /v1/stars/events. It streams server-sent events: a
// starUpdate with the balance on connect and after every change, and a
// rewardUpdate with the catalog after every unlock.
func (h *Handler) StarEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The server's write timeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	stars := make(chan int, 1)
	rewards := make(chan struct{}, 1)

	cancelStars := h.Ledger.Watch(func(n int) { latest(stars, n) })
	defer cancelStars()
	cancelRewards := h.Ledger.Broadcaster().Subscribe(notify.RewardUpdate, func() { latest(rewards, struct{}{}) })
	defer cancelRewards()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case n := <-stars:
			err = writeEvent(w, notify.StarUpdate, map[string]int{"stars": n})
		case <-rewards:
			err = writeEvent(w, notify.RewardUpdate, map[string][]ledger.Reward{"rewards": h.Ledger.Rewards()})
		case <-ticker.C:
			_, err = fmt.Fprint(w, ": keepalive\n\n")
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			h.logger.Debug("event stream closed", "err", err)
			return
		}
	}
}

// latest puts v on a one-slot channel, replacing any value not yet consumed.
func latest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
