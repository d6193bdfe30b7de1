package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-2048/internal/agent"
	"github.com/vovakirdan/tui-2048/internal/config"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve 2048 games to MCP clients over stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Tools:
  new_game    - Start a game (size, seed)
  move        - Slide tiles of a game (game_id, direction)
  state       - Show a game board
  list_games  - List running games

Logs are written to stderr; stdout carries protocol messages only.

Example client entry:
  {"command": "arcade", "args": ["mcp"]}`,
	Args: cobra.NoArgs,
	Run:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
}

func runMCP(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mcp",
	})

	cfg, err := config.LoadT2048(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := agent.New(cfg, logger).ServeStdio(); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
