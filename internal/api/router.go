// Package api exposes stars, rewards, games, the journal and the assistant
// over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/wondertwin-ai/starjar/internal/assistant"
	"github.com/wondertwin-ai/starjar/internal/games"
	"github.com/wondertwin-ai/starjar/internal/i18n"
	"github.com/wondertwin-ai/starjar/internal/journal"
	"github.com/wondertwin-ai/starjar/internal/ledger"
	"github.com/wondertwin-ai/starjar/pkg/server"
)

// Error reasons returned alongside localized messages.
const (
	ReasonInsufficientStars = "insufficient_stars"
	ReasonAlreadyUnlocked   = "already_unlocked"
	ReasonUnknownReward     = "unknown_reward"
	ReasonUnknownGame       = "unknown_game"
	ReasonAlreadyLogged     = "already_logged"
	ReasonInvalidEntry      = "invalid_entry"
	ReasonFoodNotFound      = "food_not_found"
	ReasonUnavailable       = "assistant_unavailable"
)

// Services are the domain services the API serves.
type Services struct {
	Ledger    *ledger.Ledger
	Journal   *journal.Journal
	Arcade    *games.Arcade
	Assistant *assistant.Service
}

// Handler holds all API handler state.
type Handler struct {
	Services
	mw        *server.Middleware
	logger    *slog.Logger
	keepAlive time.Duration
	locale    language.Tag
}

// Option configures a Handler.
type Option func(*Handler)

// WithKeepAlive sets how often idle event streams get a comment line.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Handler) { h.keepAlive = d }
}

// WithLocale sets the language used when a request names none.
func WithLocale(tag language.Tag) Option {
	return func(h *Handler) { h.locale = tag }
}

// NewHandler creates a new API handler.
func NewHandler(svc Services, mw *server.Middleware, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		Services:  svc,
		mw:        mw,
		logger:    logger,
		keepAlive: 15 * time.Second,
		locale:    i18n.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the API endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/stars", h.GetStars)
		r.Post("/stars/add", h.AddStars)
		r.Post("/stars/spend", h.SpendStars)
		r.Get("/stars/events", h.StarEvents)

		r.Get("/rewards", h.ListRewards)
		r.Post("/rewards/{id}/unlock", h.UnlockReward)
		r.With(h.mw.Idempotency).Post("/rewards/{id}/redeem", h.RedeemReward)

		r.Get("/games", h.ListGames)
		r.Post("/games/{game}/finish", h.FinishGame)

		r.Get("/journal", h.ListJournal)
		r.Post("/journal", h.RecordJournal)
		r.Get("/journal/week", h.JournalWeek)

		r.Get("/readings", h.ListReadings)
		r.Put("/readings/{day}", h.PutReading)

		r.Post("/assistant/ask", h.Ask)
		r.Post("/assistant/carbs", h.Carbs)
	})
}

var errEmptyBody = errors.New("request body is required")

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// fail writes a localized error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, reason, key string, args ...any) {
	server.ErrorReason(w, status, reason, i18n.T(h.lang(r), key, args...))
}

// internalError logs err and writes a localized 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	h.fail(w, r, http.StatusInternalServerError, "", i18n.TryAgain)
}

func (h *Handler) lang(r *http.Request) language.Tag {
	return i18n.Resolve(r, h.locale)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusBadRequest, "", i18n.InvalidRequest)
}
