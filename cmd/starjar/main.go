// starjar serves and manages the star jar of the kids' diabetes companion app.
//
// Usage:
//
//	starjar serve                 Run the HTTP server
//	starjar stars [add|spend N]   Show or change the star balance
//	starjar rewards [unlock|redeem ID]
//	starjar game [finish GAME SCORE]
//	starjar journal [log --mood --food --insulin]
//	starjar status                Health check the server
//	starjar reset                 Reset all state
//	starjar seed <file>           POST seed data to /admin/state
//	starjar inspect               Print the stored state
//	starjar mcp                   Run the MCP server on stdio
package main

import (
	"fmt"
	"os"

	"github.com/wondertwin-ai/starjar/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
