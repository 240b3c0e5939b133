package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/client"
)

type changeFunc func(ctx context.Context, amount int) (int, error)

// NewStarsCommand creates the stars command and its add/spend subcommands.
func NewStarsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stars",
		Short: "Show the star balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := rootOpts.Client().Stars(commandContext(cmd))
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), map[string]int{"stars": n}, fmt.Sprintf("⭐ %d", n))
		},
	}

	cmd.AddCommand(newAmountCommand(rootOpts, "add", "Credit stars", func(c *client.Client) changeFunc { return c.Add }))
	cmd.AddCommand(newAmountCommand(rootOpts, "spend", "Debit stars, flooring at zero", func(c *client.Client) changeFunc { return c.Spend }))
	return cmd
}

func newAmountCommand(rootOpts *RootOptions, use, short string, pick func(*client.Client) changeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil || amount < 0 {
				return fmt.Errorf("amount must be a non-negative integer, got %q", args[0])
			}
			n, err := pick(rootOpts.Client())(commandContext(cmd), amount)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), map[string]int{"stars": n}, fmt.Sprintf("⭐ %d", n))
		},
	}
}
