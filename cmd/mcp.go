package cmd

import (
	"github.com/huangsam/gitcensus/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the gitcensus MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents build contribution reports,
resolve contributors and classify projects via standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, env)
	},
}
