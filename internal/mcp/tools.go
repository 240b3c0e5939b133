package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wondertwin-ai/starjar/internal/client"
)

// NoInput is the argument type of tools that take no arguments.
type NoInput struct{}

// AmountInput carries a star amount.
type AmountInput struct {
	Amount int `json:"amount" jsonschema:"number of stars, zero or more"`
}

// RewardInput selects a catalog reward.
type RewardInput struct {
	ID int `json:"id" jsonschema:"reward id from starjar_rewards"`
}

// FinishGameInput reports a finished mini-game.
type FinishGameInput struct {
	Game  string `json:"game" jsonschema:"game id, e.g. catcher"`
	Score int    `json:"score" jsonschema:"final score"`
}

// SeedInput names a JSON seed file.
type SeedInput struct {
	File string `json:"file" jsonschema:"path to the JSON seed file"`
}

// StatusResult reports server health and balance.
type StatusResult struct {
	Server  string `json:"server"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
	Stars   int    `json:"stars"`
}

// StarsResult is a star balance.
type StarsResult struct {
	Stars int `json:"stars"`
}

// RewardResult is one catalog entry.
type RewardResult struct {
	ID       int    `json:"id"`
	Icon     string `json:"icon"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Unlocked bool   `json:"unlocked"`
}

// RewardsResult is the catalog.
type RewardsResult struct {
	Rewards []RewardResult `json:"rewards"`
}

// RedeemResult describes a purchase.
type RedeemResult struct {
	ID      string       `json:"id"`
	Reward  RewardResult `json:"reward"`
	Cost    int          `json:"cost"`
	Balance int          `json:"balance"`
}

// GameResult is the award for a finished game.
type GameResult struct {
	Game        string `json:"game"`
	StarsEarned int    `json:"stars_earned"`
	Stars       int    `json:"stars"`
}

// DayResult is one journal day. Mood, food and insulin are empty when
// nothing was logged.
type DayResult struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Mood    string `json:"mood,omitempty"`
	Food    string `json:"food,omitempty"`
	Insulin string `json:"insulin,omitempty"`
}

// WeekResult is the last seven journal days, oldest first.
type WeekResult struct {
	Days []DayResult `json:"days"`
}

// MessageResult carries a plain confirmation.
type MessageResult struct {
	Message string `json:"message"`
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func registerTools(s *mcp.Server, c *client.Client) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_status",
		Description: "Health check the starjar server and report the current star balance.",
	}, statusHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_add_stars",
		Description: "Credit stars to the jar and return the new balance.",
	}, addHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_spend_stars",
		Description: "Debit stars from the jar. The balance never drops below zero.",
	}, spendHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_rewards",
		Description: "List the reward catalog with costs and unlock state.",
	}, rewardsHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_unlock_reward",
		Description: "Mark a reward unlocked without charging stars.",
	}, unlockHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_redeem_reward",
		Description: "Buy a reward: checks the balance, debits its cost and unlocks it in one step.",
	}, redeemHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_finish_game",
		Description: "Report a finished mini-game. Awards floor(score/2)+5 stars.",
	}, finishGameHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_week",
		Description: "Show the last seven days of the daily journal, oldest first.",
	}, weekHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_reset",
		Description: "Reset the server to zero stars, a locked catalog and an empty journal.",
	}, resetHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_seed",
		Description: "Replace the server state with a JSON file via /admin/state.",
	}, seedHandler(c))
	mcp.AddTool(s, &mcp.Tool{
		Name:        "starjar_inspect",
		Description: "Get the full stored state of the server.",
	}, inspectHandler(c))
}

func statusHandler(c *client.Client) mcp.ToolHandlerFor[NoInput, StatusResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, StatusResult, error) {
		out := StatusResult{Server: c.BaseURL()}
		ok, msg := c.Health(ctx)
		if !ok {
			out.Message = msg
			return textResult(fmt.Sprintf("%s unhealthy: %s", c.BaseURL(), msg)), out, nil
		}
		stars, err := c.Stars(ctx)
		if err != nil {
			return nil, StatusResult{}, err
		}
		out.Healthy, out.Stars = true, stars
		return textResult(fmt.Sprintf("%s healthy\nStars: %d", c.BaseURL(), stars)), out, nil
	}
}

type changeFunc func(ctx context.Context, amount int) (int, error)

func starsHandler(verb string, change changeFunc) mcp.ToolHandlerFor[AmountInput, StarsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AmountInput) (*mcp.CallToolResult, StarsResult, error) {
		if in.Amount < 0 {
			return nil, StarsResult{}, fmt.Errorf("amount must be a non-negative integer")
		}
		n, err := change(ctx, in.Amount)
		if err != nil {
			return nil, StarsResult{}, err
		}
		return textResult(fmt.Sprintf("%s %d stars. Balance: %d", verb, in.Amount, n)), StarsResult{Stars: n}, nil
	}
}

func addHandler(c *client.Client) mcp.ToolHandlerFor[AmountInput, StarsResult] {
	return starsHandler("Added", c.Add)
}

func spendHandler(c *client.Client) mcp.ToolHandlerFor[AmountInput, StarsResult] {
	return starsHandler("Spent", c.Spend)
}

func rewardsHandler(c *client.Client) mcp.ToolHandlerFor[NoInput, RewardsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, RewardsResult, error) {
		rewards, err := c.Rewards(ctx)
		if err != nil {
			return nil, RewardsResult{}, err
		}
		out := RewardsResult{Rewards: make([]RewardResult, len(rewards))}
		var text strings.Builder
		fmt.Fprintf(&text, "%-4s %-6s %-10s %s\n", "ID", "COST", "STATE", "NAME")
		for i, r := range rewards {
			out.Rewards[i] = RewardResult(r)
			state := "locked"
			if r.Unlocked {
				state = "unlocked"
			}
			fmt.Fprintf(&text, "%-4d %-6d %-10s %s %s\n", r.ID, r.Cost, state, r.Icon, r.Name)
		}
		return textResult(text.String()), out, nil
	}
}

func unlockHandler(c *client.Client) mcp.ToolHandlerFor[RewardInput, MessageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RewardInput) (*mcp.CallToolResult, MessageResult, error) {
		if _, err := c.Unlock(ctx, in.ID); err != nil {
			return nil, MessageResult{}, err
		}
		msg := fmt.Sprintf("Reward %d unlocked.", in.ID)
		return textResult(msg), MessageResult{Message: msg}, nil
	}
}

func redeemHandler(c *client.Client) mcp.ToolHandlerFor[RewardInput, RedeemResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RewardInput) (*mcp.CallToolResult, RedeemResult, error) {
		red, err := c.Redeem(ctx, in.ID)
		if err != nil {
			return nil, RedeemResult{}, err
		}
		out := RedeemResult{
			ID:      red.ID,
			Reward:  RewardResult(red.Reward),
			Cost:    red.Cost,
			Balance: red.Balance,
		}
		text := fmt.Sprintf("Redeemed %s %s for %d stars. Balance: %d",
			red.Reward.Icon, red.Reward.Name, red.Cost, red.Balance)
		return textResult(text), out, nil
	}
}

func finishGameHandler(c *client.Client) mcp.ToolHandlerFor[FinishGameInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in FinishGameInput) (*mcp.CallToolResult, GameResult, error) {
		if in.Game == "" {
			return nil, GameResult{}, fmt.Errorf("game is required")
		}
		award, err := c.FinishGame(ctx, in.Game, in.Score)
		if err != nil {
			return nil, GameResult{}, err
		}
		out := GameResult{Game: award.Game, StarsEarned: award.StarsEarned, Stars: award.Stars}
		return textResult(fmt.Sprintf("%s: +%d stars. Balance: %d", award.Game, award.StarsEarned, award.Stars)), out, nil
	}
}

func weekHandler(c *client.Client) mcp.ToolHandlerFor[NoInput, WeekResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, WeekResult, error) {
		days, err := c.Week(ctx)
		if err != nil {
			return nil, WeekResult{}, err
		}
		out := WeekResult{Days: make([]DayResult, len(days))}
		var text strings.Builder
		for i, d := range days {
			out.Days[i] = DayResult{Date: d.Date, Weekday: d.Weekday}
			if d.Log == nil {
				fmt.Fprintf(&text, "%-10s %-9s -\n", d.Date, d.Weekday)
				continue
			}
			out.Days[i].Mood = string(d.Log.Mood)
			out.Days[i].Food = string(d.Log.Food)
			out.Days[i].Insulin = string(d.Log.Insulin)
			fmt.Fprintf(&text, "%-10s %-9s mood=%s food=%s insulin=%s\n",
				d.Date, d.Weekday, d.Log.Mood, d.Log.Food, d.Log.Insulin)
		}
		return textResult(text.String()), out, nil
	}
}

func resetHandler(c *client.Client) mcp.ToolHandlerFor[NoInput, MessageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, MessageResult, error) {
		if err := c.Reset(ctx); err != nil {
			return nil, MessageResult{}, err
		}
		return textResult("State reset."), MessageResult{Message: "State reset."}, nil
	}
}

func seedHandler(c *client.Client) mcp.ToolHandlerFor[SeedInput, MessageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SeedInput) (*mcp.CallToolResult, MessageResult, error) {
		if in.File == "" {
			return nil, MessageResult{}, fmt.Errorf("file is required")
		}
		if err := c.Seed(ctx, in.File); err != nil {
			return nil, MessageResult{}, err
		}
		msg := "Seeded from " + in.File
		return textResult(msg), MessageResult{Message: msg}, nil
	}
}

// inspectHandler returns the stored state as pretty JSON and as structured content.
func inspectHandler(c *client.Client) mcp.ToolHandlerFor[NoInput, map[string]any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, map[string]any, error) {
		raw, err := c.State(ctx)
		if err != nil {
			return nil, nil, err
		}
		var state map[string]any
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, nil, err
		}
		pretty, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, nil, err
		}
		return textResult(string(pretty)), state, nil
	}
}
