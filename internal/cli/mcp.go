package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wondertwin-ai/starjar/internal/mcp"
)

// NewMCPCommand creates the mcp command.
func NewMCPCommand(rootOpts *RootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve star jar tools to AI agents over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcp.NewServer(rootOpts.Client(), version)
			ctx := commandContext(cmd)
			if cmd.InOrStdin() == os.Stdin && cmd.OutOrStdout() == os.Stdout {
				return s.Serve(ctx)
			}
			return s.ServeIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
