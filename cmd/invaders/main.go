// invaders is a terminal space-invaders game built on a fixed-timestep
// simulation core.
//
// Usage:
//
//	invaders                  - Interactive mode picker
//	invaders list             - List available modes
//	invaders play [mode]      - Play a mode directly
//	invaders scores <mode>    - Show high scores and run totals
//	invaders serve            - Start the SSH server with metrics and spectators
//	invaders sim [mode]       - Run a headless autopilot game
//	invaders config           - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>         - Frames per second (default: 60)
//	--seed <value>       - RNG seed for reproducible gameplay
//	--db <path>          - Database path (default: ~/.invaders/scores.db)
//	--config <path>      - Custom simulation config YAML
//	--difficulty <name>  - easy, normal or hard
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "invaders",
	Short: "TUI Invaders - space invaders in your terminal",
	Long: `TUI Invaders runs a fixed-timestep space invaders simulation in the
terminal, locally or over SSH.

Available commands:
  list     - Show all available modes
  play     - Play a mode directly
  scores   - View high scores and run totals
  serve    - Start SSH server for remote play
  sim      - Headless autopilot run
  config   - Print the effective configuration

Examples:
  invaders
  invaders play
  invaders play invaders_volley --difficulty hard
  invaders serve --ssh :2222 --http :8080
  invaders sim --ticks 36000 --seed 42`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run:               runMenu,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 60, "Frames per second")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "~/.invaders/scores.db", "Path to scores database")
	pf.StringVar(&flagConfig, "config", "", "Path to custom simulation config YAML")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(configCmd)
}

// setup validates the shared flags and hands config choices to the modes.
func setup(_ *cobra.Command, _ []string) error {
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	if flagDifficulty != "" && config.ParsePreset(flagDifficulty) == "" {
		return fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", flagDifficulty)
	}
	if _, err := loadConfig(); err != nil {
		return err
	}
	invaders.SetConfigPath(flagConfig)
	invaders.SetDifficultyPreset(flagDifficulty)
	return nil
}

// loadConfig resolves the simulation config the same way the game modes do.
func loadConfig() (config.InvadersConfig, error) {
	cfg, err := config.LoadInvaders(flagConfig)
	if err != nil {
		return cfg, err
	}
	if p := config.ParsePreset(flagDifficulty); p != "" {
		config.ApplyPreset(&cfg, p)
	}
	return cfg, nil
}

// newLogger builds the CLI logger at the --log-level threshold.
func newLogger(prefix string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if lvl, err := log.ParseLevel(flagLogLevel); err == nil {
		l.SetLevel(lvl)
	} else {
		l.Warn("unknown log level, using info", "level", flagLogLevel)
	}
	return l
}
