// arcade is a terminal 2048 with local, SSH, spectator and MCP frontends.
//
// Usage:
//
//	arcade list              - List available game variants
//	arcade play <game>       - Play a game
//	arcade menu              - Start menu to pick games interactively
//	arcade serve             - Start SSH server for remote play
//	arcade scores <game>     - Show high scores for a game
//	arcade config            - Print the effective 2048 config
//	arcade mcp               - Serve games to MCP clients over stdio
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Set database path (default: ~/.arcade/scores.db)
//
// Flags left at their defaults can be set from the environment or a .env
// file: ARCADE_DB, ARCADE_SSH_ADDR, ARCADE_SPECTATE_ADDR.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	// Import games to register them
	_ "github.com/vovakirdan/tui-2048/internal/games/t2048"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   int64
	flagDBPath string
)

// envFlags maps flag names to the environment variables that override their
// defaults.
var envFlags = map[string]string{
	"db":       "ARCADE_DB",
	"ssh":      "ARCADE_SSH_ADDR",
	"spectate": "ARCADE_SPECTATE_ADDR",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arcade",
	Short: "TUI 2048 - slide tiles in your terminal",
	Long: `A terminal 2048 with a ten-level campaign, endless boards from 3x3 to 5x5,
an SSH server for remote play, live spectating over websockets and an MCP
server for agents.

Available commands:
  list     - Show all game variants
  play     - Play a variant directly
  menu     - Interactive game picker menu
  serve    - Start SSH server for remote play
  scores   - View high scores
  config   - Print the effective config
  mcp      - MCP stdio server

Examples:
  arcade list
  arcade play 2048
  arcade play 2048_5x5 --seed 42
  arcade menu
  arcade serve --ssh :2222 --spectate :8090
  arcade scores 2048`,
	PersistentPreRun: applyEnv,
}

// applyEnv loads .env and fills unset flags from the environment.
func applyEnv(cmd *cobra.Command, _ []string) {
	// A missing .env is fine.
	_ = godotenv.Load()

	for name, key := range envFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if err := cmd.Flags().Set(name, v); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: ignoring %s: %v\n", key, err)
			}
		}
	}
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.arcade/scores.db", "Path to scores database")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
}
