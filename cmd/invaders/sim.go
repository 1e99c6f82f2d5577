package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/games/invaders"
	"github.com/vovakirdan/tui-invaders/internal/platform/raster"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/sim"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

var (
	flagSimTicks int
	flagSimRuns  int
	flagSimSave  bool
	flagSimJSON  bool
	flagSimPNG   string
)

var simCmd = &cobra.Command{
	Use:   "sim [mode]",
	Short: "Run a headless autopilot game",
	Long: `Run the simulation without a terminal, driven by a simple autopilot
that fires continuously and steers under the nearest front-row invader.

Useful for soak testing configs and checking determinism: the same seed,
config and tick budget always print the same snapshot hash.

Examples:
  invaders sim --seed 42
  invaders sim invaders_volley --ticks 72000 --runs 5
  invaders sim --difficulty hard --json
  invaders sim --runs 3 --save
  invaders sim --ticks 600 --png frame.png`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSim,
}

func init() {
	simCmd.Flags().IntVar(&flagSimTicks, "ticks", 36000, "Maximum simulation ticks")
	simCmd.Flags().IntVar(&flagSimRuns, "runs", 1, "Runs to play before stopping")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Store finished runs in the scores database")
	simCmd.Flags().BoolVar(&flagSimJSON, "json", false, "Print the summary as JSON")
	simCmd.Flags().StringVar(&flagSimPNG, "png", "", "Write the final frame to this PNG file")
}

type simRun struct {
	Score int       `json:"score"`
	Stats sim.Stats `json:"stats"`
}

type simSummary struct {
	Mode     string   `json:"mode"`
	Seed     int64    `json:"seed"`
	Ticks    uint64   `json:"ticks"`
	Runs     []simRun `json:"runs"`
	Final    string   `json:"final_state"`
	Hash     string   `json:"snapshot_hash"`
	Duration string   `json:"duration"`
}

func runSim(_ *cobra.Command, args []string) {
	gameID := invaders.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		os.Exit(1)
	}
	if flagSimTicks <= 0 || flagSimRuns <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --ticks and --runs must be positive")
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if gameID == invaders.IDVolley {
		cfg = config.VolleyVariant(cfg)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := newLogger("sim")
	engine := sim.NewEngine(cfg, sim.WithSeed(seed), sim.WithLogger(logger))

	start := time.Now()
	summary := simSummary{Mode: gameID, Seed: seed}
	for _i := 0; _i < flagSimTicks; _i++ {
		retry := len(summary.Runs) < flagSimRuns
		if engine.State() == sim.StateGameOver && !retry {
			break
		}
		before := engine.State()
		engine.Step(engine.Autopilot(retry))
		engine.DrainFired()
		if before == sim.StateRunning && engine.State() == sim.StateGameOver {
			summary.Runs = append(summary.Runs, simRun{Score: engine.Score(), Stats: engine.Stats()})
			logger.Debug("run finished", "run", len(summary.Runs), "score", engine.Score())
		}
	}
	snap := engine.Snapshot()
	summary.Ticks = engine.Tick()
	summary.Final = engine.State().String()
	summary.Hash = fmt.Sprintf("%016x", snap.Hash())
	summary.Duration = time.Since(start).Round(time.Millisecond).String()

	// A run cut short by the tick budget is still reported.
	if engine.State() == sim.StateRunning {
		summary.Runs = append(summary.Runs, simRun{Score: engine.Score(), Stats: engine.Stats()})
	}

	if flagSimSave {
		saveSimRuns(gameID, summary.Runs)
	}
	if flagSimPNG != "" {
		r := raster.New(cfg, raster.DefaultWidth, raster.DefaultHeight)
		if err := r.SavePNG(flagSimPNG, snap); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if flagSimJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printSummary(summary)
}

func saveSimRuns(gameID string, runs []simRun) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return
	}
	defer store.Close()
	for _, r := range runs {
		if r.Score > 0 {
			if _, err := store.SaveScore(gameID, r.Score); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: save score: %v\n", err)
			}
		}
		_, err := store.SaveRun(storage.RunRecord{
			GameID:        gameID,
			Session:       "autopilot",
			Score:         r.Score,
			Kills:         r.Stats.Kills,
			Shots:         r.Stats.Shots,
			EnemyShots:    r.Stats.EnemyShots,
			ShieldAbsorbs: r.Stats.ShieldAbsorbs,
			PlayerHits:    r.Stats.PlayerHits,
			Ticks:         int64(r.Stats.Ticks),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: save run: %v\n", err)
		}
	}
}

func printSummary(s simSummary) {
	fmt.Printf("Autopilot - %s (seed %d)\n", s.Mode, s.Seed)
	fmt.Println()
	fmt.Printf("  %-4s  %-6s  %-5s  %-5s  %-5s  %-7s  %-7s  %s\n",
		"Run", "Score", "Kills", "Shots", "Acc", "Absorbs", "Hits", "Ticks")
	for i, r := range s.Runs {
		acc := 0.0
		if r.Stats.Shots > 0 {
			acc = float64(r.Stats.Kills) / float64(r.Stats.Shots) * 100
		}
		fmt.Printf("  %-4d  %-6d  %-5d  %-5d  %4.0f%%  %-7d  %-7d  %d\n",
			i+1, r.Score, r.Stats.Kills, r.Stats.Shots, acc,
			r.Stats.ShieldAbsorbs, r.Stats.PlayerHits, r.Stats.Ticks)
	}
	fmt.Println()
	fmt.Printf("Ticks: %d  Final state: %s  Took: %s\n", s.Ticks, s.Final, s.Duration)
	fmt.Printf("Snapshot hash: %s\n", s.Hash)
}
