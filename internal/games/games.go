// Package games awards stars for finished mini-games.
package games

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/wondertwin-ai/starjar/internal/ledger"
)

// ErrUnknownGame is returned for a game id not in the catalog.
var ErrUnknownGame = errors.New("unknown game")

// Audience is who a game is meant for.
type Audience string

const (
	Kids    Audience = "kids"
	Parents Audience = "parents"
)

// Game describes a playable mini-game.
type Game struct {
	ID       string   `json:"id"`
	Audience Audience `json:"audience"`
}

var catalog = []Game{
	{ID: "catcher", Audience: Kids},
	{ID: "chooser", Audience: Kids},
	{ID: "embarrassing", Audience: Kids},
	{ID: "memoryMatch", Audience: Kids},
	{ID: "sugarBalance", Audience: Kids},
	{ID: "starCollector", Audience: Kids},
	{ID: "dosageCalculator", Audience: Parents},
	{ID: "symptomSpotter", Audience: Parents},
	{ID: "mealPlanner", Audience: Parents},
	{ID: "emergencyKit", Audience: Parents},
}

// All returns every known game.
func All() []Game {
	return slices.Clone(catalog)
}

// Lookup finds a game by id.
func Lookup(id string) (Game, bool) {
	i := slices.IndexFunc(catalog, func(g Game) bool { return g.ID == id })
	if i < 0 {
		return Game{}, false
	}
	return catalog[i], true
}

// StarsForScore converts a final score into stars: half the score, rounded
// down, plus a participation bonus of 5. Negative scores count as zero.
func StarsForScore(score int) int {
	return max(score, 0)/2 + 5
}

// Award is the outcome of finishing a game.
type Award struct {
	Game        string `json:"game"`
	Score       int    `json:"score"`
	StarsEarned int    `json:"stars_earned"`
	Stars       int    `json:"stars"`
}

// Arcade credits game results to a ledger.
type Arcade struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

// New creates an Arcade crediting l. A nil logger uses slog.Default.
func New(l *ledger.Ledger, logger *slog.Logger) *Arcade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arcade{ledger: l, logger: logger}
}

// Finish credits the stars for score in game.
func (a *Arcade) Finish(game string, score int) (Award, error) {
	if _, ok := Lookup(game); !ok {
		return Award{}, fmt.Errorf("%w: %q", ErrUnknownGame, game)
	}
	earned := StarsForScore(score)
	total, err := a.ledger.Add(earned)
	if err != nil {
		return Award{}, fmt.Errorf("finish %s: %w", game, err)
	}
	a.logger.Debug("game finished", "game", game, "score", score, "stars_earned", earned)
	return Award{Game: game, Score: score, StarsEarned: earned, Stars: total}, nil
}
