package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/platform/tui"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the given mode (default: invaders).

Controls:
  Left/Right, A/D  - Move
  Space/Z          - Fire
  Enter            - Start
  P                - Pause
  R                - Retry (after game over)
  Q                - Quit (exit transition on the game over screen)
  Ctrl+C           - Quit immediately

Difficulty options:
  easy    - 8 hit points, slower and less trigger-happy invaders
  normal  - the configured values
  hard    - 3 hit points, faster invaders firing more often

Examples:
  invaders play
  invaders play invaders_volley
  invaders play --difficulty hard
  invaders play --config ./my-invaders.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := invaders.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'invaders list' to see available modes.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger("invaders")
	if g, ok := game.(*invaders.Game); ok {
		g.WithLogger(logger)
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "err", err)
		store = nil
	}

	runErr := tui.Run(game, store, runtimeConfig(),
		tui.WithSession(localName()),
		tui.WithModelLogger(logger),
	)

	if store != nil {
		_ = store.Close()
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}

// runtimeConfig sizes the screen from the terminal and applies global flags.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}
