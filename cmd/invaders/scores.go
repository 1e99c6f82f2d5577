package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresRuns  int
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores <mode>",
	Short: "Show high scores for a mode",
	Long: `Display the top high scores, recent runs and run totals for a mode.

Examples:
  invaders scores invaders
  invaders scores invaders_volley --runs 20
  invaders scores invaders --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of high scores to show")
	scoresCmd.Flags().IntVar(&flagScoresRuns, "runs", 5, "Number of recent runs to show (0 to hide)")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete every score and run of the mode")
}

func runScores(_ *cobra.Command, args []string) {
	gameID := args[0]

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
	title := game.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			return
		}
		fmt.Printf("Cleared scores and runs for %s.\n", title)
		return
	}

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'invaders play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	if flagScoresRuns > 0 {
		runs, err := store.RecentRuns(gameID, flagScoresRuns)
		if err == nil && len(runs) > 0 {
			fmt.Println()
			fmt.Println("Recent runs")
			fmt.Printf("  %-6s  %-5s  %-5s  %-4s  %-12s  %s\n", "Score", "Kills", "Acc", "Hits", "Player", "Date")
			for _, r := range runs {
				fmt.Printf("  %-6d  %-5d  %3.0f%%  %-4d  %-12s  %s\n",
					r.Score, r.Kills, r.Accuracy()*100, r.PlayerHits, r.Session,
					r.CreatedAt.Format("2006-01-02 15:04"))
			}
		}
	}

	if totals, err := store.Totals(gameID); err == nil && totals.Runs > 0 {
		fmt.Println()
		fmt.Printf("Best: %d over %d runs, %d kills from %d shots\n",
			totals.BestScore, totals.Runs, totals.TotalKills, totals.TotalShots)
	}
}
