package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/journal"
)

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the last seven days of the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := rootOpts.Client().Week(commandContext(cmd))
			if err != nil {
				return err
			}
			var out strings.Builder
			for _, d := range days {
				if d.Log == nil {
					fmt.Fprintf(&out, "%s %-9s -\n", d.Date, d.Weekday)
					continue
				}
				fmt.Fprintf(&out, "%s %-9s %-7s %-7s insulin=%s\n", d.Date, d.Weekday, d.Log.Mood, d.Log.Food, d.Log.Insulin)
			}
			return rootOpts.print(cmd.OutOrStdout(), days, strings.TrimRight(out.String(), "\n"))
		},
	}

	var entry struct {
		mood, food, insulin string
	}
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Record today's entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := rootOpts.Client().Record(commandContext(cmd), journal.Entry{
				Mood:    journal.Mood(entry.mood),
				Food:    journal.Food(entry.food),
				Insulin: journal.Insulin(entry.insulin),
			})
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), res,
				fmt.Sprintf("%s logged (%s): +%d stars, ⭐ %d", res.Log.Date, res.Feedback, res.StarsEarned, res.Stars))
		},
	}
	logCmd.Flags().StringVar(&entry.mood, "mood", "", "happy|neutral|sad")
	logCmd.Flags().StringVar(&entry.food, "food", "", "healthy|soso|sweets")
	logCmd.Flags().StringVar(&entry.insulin, "insulin", "", "yes|no")
	for _, f := range []string{"mood", "food", "insulin"} {
		_ = logCmd.MarkFlagRequired(f)
	}
	cmd.AddCommand(logCmd)

	return cmd
}
