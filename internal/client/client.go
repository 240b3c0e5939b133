// Package client provides an HTTP client for a running starjar server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wondertwin-ai/starjar/internal/games"
	"github.com/wondertwin-ai/starjar/internal/journal"
	"github.com/wondertwin-ai/starjar/internal/ledger"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("status %d (%s): %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// Client talks to the /v1 and /admin endpoints of one server.
type Client struct {
	baseURL string
	lang    string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLanguage asks the server for messages in lang, e.g. "en".
func WithLanguage(lang string) Option {
	return func(c *Client) { c.lang = lang }
}

// WithHTTPClient replaces the default 5-second-timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and decodes a 2xx JSON response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var e struct {
			Error struct {
				Message string `json:"message"`
				Reason  string `json:"reason"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
			apiErr.Message, apiErr.Reason = e.Error.Message, e.Error.Reason
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Health checks GET /admin/health. Returns (ok, response body or error message).
func (c *Client) Health(ctx context.Context) (bool, string) {
	var out map[string]string
	if err := c.do(ctx, http.MethodGet, "/admin/health", nil, &out); err != nil {
		return false, err.Error()
	}
	return true, out["status"]
}

// Reset calls POST /admin/reset.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/reset", nil, nil)
}

// Seed POSTs the contents of a JSON file to POST /admin/state.
func (c *Client) Seed(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, "/admin/state", bytes.NewReader(data), nil); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	return nil
}

// State returns GET /admin/state as raw JSON.
func (c *Client) State(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, http.MethodGet, "/admin/state", nil, &out)
	return out, err
}

type starsResponse struct {
	Stars int `json:"stars"`
}

// Stars returns the current balance.
func (c *Client) Stars(ctx context.Context) (int, error) {
	var out starsResponse
	err := c.do(ctx, http.MethodGet, "/v1/stars", nil, &out)
	return out.Stars, err
}

// Add credits amount stars and returns the new balance.
func (c *Client) Add(ctx context.Context, amount int) (int, error) {
	var out starsResponse
	err := c.post(ctx, "/v1/stars/add", map[string]int{"amount": amount}, &out)
	return out.Stars, err
}

// Spend debits amount stars, flooring at zero, and returns the new balance.
func (c *Client) Spend(ctx context.Context, amount int) (int, error) {
	var out starsResponse
	err := c.post(ctx, "/v1/stars/spend", map[string]int{"amount": amount}, &out)
	return out.Stars, err
}

type rewardsResponse struct {
	Rewards []ledger.Reward `json:"rewards"`
}

// Rewards returns the catalog with unlock state.
func (c *Client) Rewards(ctx context.Context) ([]ledger.Reward, error) {
	var out rewardsResponse
	err := c.do(ctx, http.MethodGet, "/v1/rewards", nil, &out)
	return out.Rewards, err
}

// Unlock marks a reward unlocked without charging for it.
func (c *Client) Unlock(ctx context.Context, id int) ([]ledger.Reward, error) {
	var out rewardsResponse
	err := c.post(ctx, "/v1/rewards/"+strconv.Itoa(id)+"/unlock", nil, &out)
	return out.Rewards, err
}

// Redeem buys a reward with stars.
func (c *Client) Redeem(ctx context.Context, id int) (ledger.Redemption, error) {
	var out struct {
		Redemption ledger.Redemption `json:"redemption"`
	}
	err := c.post(ctx, "/v1/rewards/"+strconv.Itoa(id)+"/redeem", nil, &out)
	return out.Redemption, err
}

// FinishGame reports a finished game and returns the award.
func (c *Client) FinishGame(ctx context.Context, game string, score int) (games.Award, error) {
	var out games.Award
	err := c.post(ctx, "/v1/games/"+game+"/finish", map[string]int{"score": score}, &out)
	return out, err
}

// Week returns the last seven journal days, oldest first.
func (c *Client) Week(ctx context.Context) ([]journal.Day, error) {
	var out struct {
		Days []journal.Day `json:"days"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/journal/week", nil, &out)
	return out.Days, err
}

// Record logs today's journal entry.
func (c *Client) Record(ctx context.Context, e journal.Entry) (journal.Result, error) {
	var out journal.Result
	err := c.post(ctx, "/v1/journal", e, &out)
	return out, err
}
