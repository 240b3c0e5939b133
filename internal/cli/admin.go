package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Health check the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := rootOpts.Client()
			ok, msg := c.Health(commandContext(cmd))
			if !ok {
				return fmt.Errorf("%s unhealthy: %s", c.BaseURL(), msg)
			}
			return rootOpts.print(cmd.OutOrStdout(),
				map[string]string{"server": c.BaseURL(), "status": msg},
				fmt.Sprintf("%s healthy", c.BaseURL()))
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset stars, rewards and the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.Client().Reset(commandContext(cmd)); err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), map[string]string{"status": "reset"}, "reset")
		},
	}
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Replace server state with a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.Client().Seed(commandContext(cmd), args[0]); err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(), map[string]string{"status": "loaded"}, "seeded from "+args[0])
		},
	}
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the stored server state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := rootOpts.Client().State(commandContext(cmd))
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, state, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}
}
