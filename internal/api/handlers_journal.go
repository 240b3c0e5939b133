package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/internal/journal"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

// ListJournal handles GET /v1/journal.
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{
		"logs":         h.Journal.Logs(),
		"logged_today": h.Journal.LoggedToday(),
	})
}

// RecordJournal handles POST /v1/journal.
func (h *Handler) RecordJournal(w http.ResponseWriter, r *http.Request) {
	var entry journal.Entry
	if err := decode(r, &entry); err != nil {
		h.badRequest(w, r)
		return
	}

	res, err := h.Journal.Record(entry)
	switch {
	case err == nil:
	case errors.Is(err, journal.ErrInvalidEntry):
		h.fail(w, r, http.StatusUnprocessableEntity, ReasonInvalidEntry, i18n.InvalidEntry)
		return
	case errors.Is(err, journal.ErrAlreadyLogged):
		h.fail(w, r, http.StatusConflict, ReasonAlreadyLogged, i18n.AlreadyLogged)
		return
	default:
		h.internalError(w, r, err)
		return
	}

	tag := h.lang(r)
	feedback := i18n.FeedbackEncourage
	if res.Feedback == journal.FeedbackGreat {
		feedback = i18n.FeedbackGreat
	}
	server.JSON(w, http.StatusCreated, map[string]any{
		"log":          res.Log,
		"feedback":     res.Feedback,
		"stars_earned": res.StarsEarned,
		"stars":        res.Stars,
		"message":      i18n.T(tag, feedback),
		"reward_note":  i18n.T(tag, i18n.StarsEarned, res.StarsEarned),
	})
}

// JournalWeek handles GET /v1/journal/week.
func (h *Handler) JournalWeek(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{"days": h.Journal.Week()})
}

// ListReadings handles GET /v1/readings.
func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	server.JSON(w, http.StatusOK, map[string]any{"readings": h.Journal.Readings()})
}

// PutReading handles PUT /v1/readings/{day}.
func (h *Handler) PutReading(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Before *int   `json:"before"`
		After  *int   `json:"after"`
		Notes  string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		h.badRequest(w, r)
		return
	}

	readings, err := h.Journal.SetReading(journal.SugarReading{
		Day:    chi.URLParam(r, "day"),
		Before: req.Before,
		After:  req.After,
		Notes:  req.Notes,
	})
	switch {
	case err == nil:
	case errors.Is(err, journal.ErrInvalidReading):
		h.fail(w, r, http.StatusUnprocessableEntity, "", i18n.InvalidReading)
		return
	default:
		h.internalError(w, r, err)
		return
	}
	server.JSON(w, http.StatusOK, map[string]any{"readings": readings})
}
