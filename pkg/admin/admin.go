// Package admin provides the /admin/* control plane used to inspect, seed and
// reset a running starjar server.
package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/wondertwin-ai/starjar/pkg/server"
	"github.com/wondertwin-ai/starjar/pkg/store"
)

// StateStore is what the admin plane needs from the application state.
type StateStore interface {
	// Snapshot returns the full state as a JSON-serializable value.
	Snapshot() (any, error)
	// LoadState replaces the full state from a JSON body.
	LoadState(data []byte) error
	// Reset clears all state.
	Reset() error
}

// Handler provides the admin endpoints.
type Handler struct {
	state StateStore
	mw    *server.Middleware
	clock *store.Clock
}

// NewHandler creates a new admin handler. clock may be nil.
func NewHandler(state StateStore, mw *server.Middleware, clock *store.Clock) *Handler {
	return &Handler{
		state: state,
		mw:    mw,
		clock: clock,
	}
}

// Routes mounts the admin endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/reset", h.handleReset)
		r.Get("/state", h.handleGetState)
		r.Post("/state", h.handleLoadState)
		r.Get("/requests", h.handleGetRequests)
		r.Post("/time/advance", h.handleTimeAdvance)
		r.Get("/time", h.handleGetTime)
		r.Get("/health", h.handleHealth)
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.state.Reset(); err != nil {
		server.Error(w, http.StatusInternalServerError, "reset failed: "+err.Error())
		return
	}
	h.mw.ReqLog.Clear()
	h.mw.Idempotent.Reset()
	if h.clock != nil {
		h.clock.Reset()
	}
	server.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.state.Snapshot()
	if err != nil {
		server.Error(w, http.StatusInternalServerError, "snapshot failed: "+err.Error())
		return
	}
	server.JSON(w, http.StatusOK, snap)
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		server.Error(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	if err := h.state.LoadState(body); err != nil {
		server.Error(w, http.StatusBadRequest, "failed to load state: "+err.Error())
		return
	}
	server.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) handleGetRequests(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, h.mw.ReqLog.Entries())
}

func (h *Handler) handleTimeAdvance(w http.ResponseWriter, r *http.Request) {
	if h.clock == nil {
		server.Error(w, http.StatusBadRequest, "simulated clock not configured")
		return
	}

	var req struct {
		Duration string `json:"duration"` // Go duration string, e.g. "24h"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.Error(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		server.Error(w, http.StatusBadRequest, "invalid duration: "+err.Error())
		return
	}

	h.clock.Advance(d)
	server.JSON(w, http.StatusOK, map[string]any{
		"status":    "advanced",
		"duration":  d.String(),
		"offset":    h.clock.Offset().String(),
		"simulated": h.clock.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleGetTime(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"real": time.Now().Format(time.RFC3339)}
	if h.clock != nil {
		out["simulated"] = h.clock.Now().Format(time.RFC3339)
		out["offset"] = h.clock.Offset().String()
	}
	server.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
