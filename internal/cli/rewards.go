package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/ledger"
)

// NewRewardsCommand creates the rewards command and its unlock/redeem subcommands.
func NewRewardsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "List the reward catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rewards, err := rootOpts.Client().Rewards(commandContext(cmd))
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), rewards, rewardTable(rewards))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "unlock <id>",
		Short: "Unlock a reward without charging stars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRewardID(args[0])
			if err != nil {
				return err
			}
			rewards, err := rootOpts.Client().Unlock(commandContext(cmd), id)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), rewards, rewardTable(rewards))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "redeem <id>",
		Short: "Buy a reward with stars",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRewardID(args[0])
			if err != nil {
				return err
			}
			red, err := rootOpts.Client().Redeem(commandContext(cmd), id)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), red,
				fmt.Sprintf("%s %s unlocked for %d stars, ⭐ %d left", red.Reward.Icon, red.Reward.Name, red.Cost, red.Balance))
		},
	})

	return cmd
}

func parseRewardID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid reward id %q", s)
	}
	return id, nil
}

func rewardTable(rewards []ledger.Reward) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%-4s %-6s %-10s %s\n", "ID", "COST", "STATE", "NAME")
	fmt.Fprintf(&out, "%-4s %-6s %-10s %s\n", "--", "----", "-----", "----")
	for _, r := range rewards {
		state := "locked"
		if r.Unlocked {
			state = "unlocked"
		}
		fmt.Fprintf(&out, "%-4d %-6d %-10s %s %s\n", r.ID, r.Cost, state, r.Icon, r.Name)
	}
	return strings.TrimRight(out.String(), "\n")
}
