package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/simcheck/internal/mcp"
	"github.com/ziadkadry99/simcheck/internal/view"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the analysis, statistics and history tools to AI agents. Requires a stored session (simcheck login).`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, user, err := authenticatedClient(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		renderer, err := view.NewText()
		if err != nil {
			return err
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "simcheck MCP server started on stdio (api=%s, user=%s)\n", cfg.API.BaseURL, describeUser(user))

		srv := mcpserver.NewServer(client, renderer, cfg.History.PageSize)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
