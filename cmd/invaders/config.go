package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective simulation config",
	Long: `Print the simulation config as YAML after applying the search order
(--config, ~/.invaders/configs/invaders.yaml, ./configs/invaders.yaml,
built-in defaults) and the --difficulty preset.

Redirect the output to start a custom config:
  invaders config --defaults > ~/.invaders/configs/invaders.yaml`,
	Args: cobra.NoArgs,
	Run:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the built-in defaults instead")
}

func runConfig(_ *cobra.Command, _ []string) {
	if flagConfigDefaults {
		_, _ = os.Stdout.Write(config.DefaultYAML())
		return
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	out, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(out)
}
