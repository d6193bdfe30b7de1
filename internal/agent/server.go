// Package agent exposes 2048 games to language-model agents over MCP.
//
// Games live in memory for the lifetime of the process and are addressed by
// a generated id. Moves are applied and finished in one call, so an agent
// always sees the board after the spawn.
package agent

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/tui-2048/internal/config"
	"github.com/vovakirdan/tui-2048/internal/games/t2048/engine"
)

const instructions = `2048 - MCP Interface

Slide numbered tiles on a square grid. Tiles with equal values merge when they
collide and the merged value is added to the score. After every move a new
tile (2, sometimes 4) appears in a random empty cell. The game ends when the
board is full and no two neighbours are equal.

AVAILABLE TOOLS:
- new_game: start a game (optional size and seed), returns its game_id
- move: slide all tiles up/down/left/right
- state: show the board of a game
- list_games: list the games of this server

Boards are printed row by row from the top; "." marks an empty cell.`

// game is one agent-driven grid.
type game struct {
	id      string
	grid    *engine.Grid
	seed    int64
	created time.Time
	moves   int
}

// Server is the MCP tool server.
type Server struct {
	cfg    config.T2048Config
	logger *log.Logger
	now    func() time.Time

	mu    sync.Mutex
	games map[string]*game

	mcpServer *server.MCPServer
}

// New creates a server whose games spawn tiles as cfg says. Log output must
// not go to stdout when serving over stdio; a nil logger discards it.
func New(cfg config.T2048Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		games:  make(map[string]*game),
	}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"2048",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)
	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new 2048 game and return its id and board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"size": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Grid size (%d-%d), default from config", config.MinGridSize, config.MaxGridSize),
				},
				"seed": map[string]any{
					"type":        "integer",
					"description": "RNG seed for a reproducible game (optional)",
				},
			},
		},
	}, s.handleNewGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide every tile in a direction, then spawn a new tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"game_id": map[string]any{
					"type":        "string",
					"description": "Game id returned by new_game",
				},
				"direction": map[string]any{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to slide",
				},
			},
			Required: []string{"game_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "state",
		Description: "Show the board, score and state of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"game_id": map[string]any{
					"type":        "string",
					"description": "Game id returned by new_game",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List the games started on this server",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, s.handleListGames)
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("MCP stdio server ready")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("agent: cannot serve stdio: %w", err)
	}
	return nil
}

// NewGame starts a game and returns its id. size 0 uses the configured size;
// seed 0 picks one from the clock.
func (s *Server) NewGame(size int, seed int64) (string, error) {
	if size == 0 {
		size = s.cfg.Grid.Size
	}
	if size < config.MinGridSize || size > config.MaxGridSize {
		return "", fmt.Errorf("agent: size %d out of range %d-%d", size, config.MinGridSize, config.MaxGridSize)
	}
	if seed == 0 {
		seed = s.now().UnixNano()
	}

	grid := engine.New(
		engine.WithSize(size),
		engine.WithSeed(seed),
		engine.WithFourProbability(s.cfg.Spawn.FourProbability),
		engine.WithSecondTileProbability(s.cfg.Spawn.SecondTileProbability),
		engine.WithLogger(s.logger),
	)
	grid.StartGame()

	g := &game{
		id:      uuid.NewString(),
		grid:    grid,
		seed:    seed,
		created: s.now(),
	}

	s.mu.Lock()
	s.games[g.id] = g
	s.mu.Unlock()

	s.logger.Info("game started", "game", g.id, "size", size, "seed", seed)
	return g.id, nil
}

func (s *Server) game(id string) (*game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("unknown game %q", id)
	}
	return g, nil
}

// Tool handlers

func (s *Server) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	size := request.GetInt("size", 0)
	seed := int64(request.GetInt("seed", 0))

	id, err := s.NewGame(size, seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.game(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created game: %s\nSeed: %d\n\n", id, g.seed)
	b.WriteString(FormatBoard(g.grid.Snapshot()))
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dir, err := engine.ParseDirection(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g, err := s.game(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if g.grid.IsGameOver() {
		return mcp.NewToolResultError(fmt.Sprintf("game %s is over; start a new one", id)), nil
	}

	res, ok := g.grid.MoveAndFinish(dir)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("game %s is busy", id)), nil
	}

	var b strings.Builder
	if res.Moved {
		s.mu.Lock()
		g.moves++
		s.mu.Unlock()
		fmt.Fprintf(&b, "Moved %s: +%d points, %d merges\n\n", dir, res.ScoreGained, res.Merges())
	} else {
		fmt.Fprintf(&b, "Nothing moved %s; try another direction\n\n", dir)
	}
	b.WriteString(FormatBoard(g.grid.Snapshot()))
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("game_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.game(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(FormatBoard(g.grid.Snapshot())), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	games := make([]*game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	s.mu.Unlock()

	slices.SortFunc(games, func(a, b *game) int {
		return a.created.Compare(b.created)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Games (%d):\n\n", len(games))
	for _, g := range games {
		snap := g.grid.Snapshot()
		fmt.Fprintf(&b, "- %s  %dx%d  score %d  max %d  %s  (started %s)\n",
			g.id, snap.Size, snap.Size, snap.Score, snap.MaxTile, snap.State, g.created.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}
