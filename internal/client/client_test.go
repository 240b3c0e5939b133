package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wondertwin-ai/starjar/internal/app"
	"github.com/wondertwin-ai/starjar/internal/client"
	"github.com/wondertwin-ai/starjar/internal/config"
	"github.com/wondertwin-ai/starjar/internal/journal"
)

func newClient(t *testing.T, opts ...client.Option) (*client.Client, *app.App) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage = config.StorageConfig{Driver: config.DriverMemory}
	a, err := app.New(context.Background(), cfg, app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	srv := httptest.NewServer(a.Server)
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/", opts...), a
}

func TestHealth(t *testing.T) {
	c, _ := newClient(t)
	ok, msg := c.Health(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ok", msg)
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	ok, msg := client.New(url).Health(context.Background())
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestStarsRoundTrip(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	n, err := c.Add(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, n)

	n, err = c.Spend(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	n, err = c.Stars(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, n)
}

func TestRewards(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	_, err := c.Add(ctx, 10)
	require.NoError(t, err)

	red, err := c.Redeem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, red.Balance)

	list, err := c.Unlock(ctx, 4)
	require.NoError(t, err)
	assert.True(t, list[0].Unlocked)
	assert.True(t, list[3].Unlocked)

	list, err = c.Rewards(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6)
}

func TestAPIErrorCarriesReason(t *testing.T) {
	c, _ := newClient(t, client.WithLanguage("en"))
	_, err := c.Redeem(context.Background(), 1)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.Status)
	assert.Equal(t, "insufficient_stars", apiErr.Reason)
	assert.Equal(t, "Not enough stars: you have 0 and need 10.", apiErr.Message)
}

func TestGamesAndJournal(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	award, err := c.FinishGame(ctx, "memoryMatch", 4)
	require.NoError(t, err)
	assert.Equal(t, 7, award.StarsEarned)

	res, err := c.Record(ctx, journal.Entry{Mood: journal.MoodHappy, Food: journal.FoodHealthy, Insulin: journal.InsulinYes})
	require.NoError(t, err)
	assert.Equal(t, 17, res.Stars)

	days, err := c.Week(ctx)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.NotNil(t, days[6].Log)
}

func TestSeedResetAndState(t *testing.T) {
	c, a := newClient(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"stars": 99}`), 0o644))
	require.NoError(t, c.Seed(ctx, path))
	assert.Equal(t, 99, a.Ledger.Stars())

	state, err := c.State(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stars": 99}`, string(state))

	require.NoError(t, c.Reset(ctx))
	assert.Equal(t, 0, a.Ledger.Stars())

	assert.Error(t, c.Seed(ctx, filepath.Join(t.TempDir(), "missing.json")))
}
