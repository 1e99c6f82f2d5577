package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/platform/tui"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

func runMenu(_ *cobra.Command, _ []string) {
	logger := newLogger("invaders")

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "err", err)
		store = nil
	}

	runErr := tui.RunSession(tui.SessionConfig{
		Store:   store,
		Runtime: runtimeConfig(),
		Name:    localName(),
		Logger:  logger,
	})

	if store != nil {
		_ = store.Close()
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

// localName is the player name stored with local runs.
func localName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
