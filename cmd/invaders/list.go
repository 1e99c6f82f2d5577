package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available modes",
	Long:  `Shows every game mode registered with the platform.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	modes := registry.List()

	if len(modes) == 0 {
		fmt.Println("No modes available.")
		return
	}

	fmt.Println("Available modes:")
	fmt.Println()

	maxIDLen, maxTitleLen := 2, 5 // "ID", "Title" headers
	for _, m := range modes {
		maxIDLen = max(maxIDLen, len(m.ID))
		maxTitleLen = max(maxTitleLen, len(m.Title))
	}

	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Description")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "-----------")
	for _, m := range modes {
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, m.ID, maxTitleLen, m.Title, m.Description)
	}

	fmt.Println()
	fmt.Println("Run 'invaders play <id>' to play a mode.")
}
