package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/games"
)

// NewGameCommand creates the game command.
func NewGameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "List the mini-games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := games.All()
			var out strings.Builder
			for _, g := range all {
				fmt.Fprintf(&out, "%-18s %s\n", g.ID, g.Audience)
			}
			return rootOpts.print(cmd.OutOrStdout(), all, strings.TrimRight(out.String(), "\n"))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "finish <game> <score>",
		Short: "Report a finished game and collect its stars",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid score %q", args[1])
			}
			award, err := rootOpts.Client().FinishGame(commandContext(cmd), args[0], score)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), award,
				fmt.Sprintf("%s: +%d stars, ⭐ %d", award.Game, award.StarsEarned, award.Stars))
		},
	})

	return cmd
}
