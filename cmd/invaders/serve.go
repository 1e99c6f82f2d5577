package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-invaders/internal/metrics"
	"github.com/vovakirdan/tui-invaders/internal/platform/raster"
	"github.com/vovakirdan/tui-invaders/internal/platform/tui"
	"github.com/vovakirdan/tui-invaders/internal/sim"
	"github.com/vovakirdan/tui-invaders/internal/storage"
	"github.com/vovakirdan/tui-invaders/internal/web"
)

var (
	flagSSHAddr       string
	flagHTTPAddr      string
	flagHostKey       string
	flagIdleTimeout   int
	flagCORSOrigins   []string
	flagMaxSpectators int
	flagEnvFile       string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server with metrics and a spectator feed",
	Long: `Start an SSH server that lets users connect and play, plus an HTTP
server exposing Prometheus metrics, score history and a websocket feed of
every live session.

Each SSH connection gets its own session with a mode picker.
Scores are stored per server (all users share the same leaderboard).

Settings can come from flags, INVADERS_* environment variables or a .env
file; flags win over the environment:
  INVADERS_SSH_ADDR, INVADERS_HTTP_ADDR, INVADERS_HOST_KEY, INVADERS_DB,
  INVADERS_IDLE_TIMEOUT (minutes), INVADERS_CORS_ORIGINS (comma separated),
  INVADERS_MAX_SPECTATORS

HTTP endpoints:
  /healthz                 liveness
  /metrics                 Prometheus metrics
  /ws                      spectator websocket
  /api/modes               registered modes
  /api/live                latest state of each live session
  /api/{mode}/scores       top scores (?limit=)
  /api/{mode}/runs         recent runs (?limit=)
  /api/{mode}/totals       run totals

Examples:
  invaders serve
  invaders serve --ssh :2222 --http :8080
  invaders serve --http "" --host-key ./host_key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	f.StringVar(&flagHTTPAddr, "http", ":9090", "HTTP address for metrics, API and spectators (empty disables)")
	f.StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	f.IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	f.StringSliceVar(&flagCORSOrigins, "cors-origin", nil, "Allowed browser origins for /api (repeatable)")
	f.IntVar(&flagMaxSpectators, "max-spectators", web.DefaultMaxSpectators, "Concurrent spectator connections")
	f.StringVar(&flagEnvFile, "env-file", ".env", "Optional dotenv file with INVADERS_* settings")
}

// applyEnv fills every flag the user did not set from its INVADERS_* variable.
func applyEnv(cmd *cobra.Command) error {
	vars := map[string]string{
		"ssh":            "INVADERS_SSH_ADDR",
		"http":           "INVADERS_HTTP_ADDR",
		"host-key":       "INVADERS_HOST_KEY",
		"idle-timeout":   "INVADERS_IDLE_TIMEOUT",
		"cors-origin":    "INVADERS_CORS_ORIGINS",
		"max-spectators": "INVADERS_MAX_SPECTATORS",
		"db":             "INVADERS_DB",
	}
	for name, env := range vars {
		val, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		fl := cmd.Flags().Lookup(name)
		if fl == nil || fl.Changed {
			continue
		}
		if name == "cors-origin" {
			flagCORSOrigins = splitList(val)
			continue
		}
		if err := fl.Value.Set(val); err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runServe(cmd *cobra.Command, _ []string) {
	logger := newLogger("invaders")

	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err == nil {
			logger.Info("loaded environment", "file", flagEnvFile)
		} else if !os.IsNotExist(err) {
			logger.Warn("could not read env file", "file", flagEnvFile, "err", err)
		}
	}
	if err := applyEnv(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database, scores disabled", "err", err)
		store = nil
	}
	defer func() {
		if store != nil {
			_ = store.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	hub := web.NewHub(logger.WithPrefix("spectators"),
		web.WithRecorder(rec),
		web.WithMaxSpectators(flagMaxSpectators),
		web.WithAllowedOrigins(flagCORSOrigins),
	)
	go hub.Run(ctx)

	sshCfg := tui.DefaultSSHServerConfig()
	sshCfg.Address = flagSSHAddr
	sshCfg.HostKeyPath = flagHostKey
	sshCfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	sshCfg.TickRate = flagFPS
	sshCfg.Observers = func(session, mode string) ([]sim.FrameObserver, func()) {
		ms := rec.Session(mode)
		pub := hub.Publisher(session)
		return []sim.FrameObserver{ms, pub}, func() {
			ms.Close()
			pub.Close()
		}
	}

	server, err := tui.NewSSHServer(sshCfg, store, logger.WithPrefix("ssh"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 2)
	running := 1
	if flagHTTPAddr != "" {
		simCfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg := web.Config{
			Hub:         hub,
			Gatherer:    reg,
			Frames:      raster.New(simCfg, raster.DefaultWidth, raster.DefaultHeight),
			CORSOrigins: flagCORSOrigins,
			Logger:      logger.WithPrefix("http"),
		}
		if store != nil {
			cfg.Scores = store
		}
		router := web.NewRouter(cfg)
		running++
		go func() { errCh <- web.Serve(ctx, flagHTTPAddr, router, cfg.Logger) }()
	}
	go func() { errCh <- server.ListenAndServe(ctx) }()

	fmt.Printf("Starting invaders SSH server on %s\n", sshCfg.Address)
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(sshCfg.Address))
	if flagHTTPAddr != "" {
		fmt.Printf("Metrics and spectators on http://localhost:%s\n", portOf(flagHTTPAddr))
	}
	fmt.Println("Press Ctrl+C to stop")

	// The first server to return, by failure or shutdown, stops the rest.
	first := <-errCh
	stop()
	for _i := 0; _i < running-1; _i++ {
		if err := <-errCh; err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", first)
		os.Exit(1)
	}
}

func portOf(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		if _, err := strconv.Atoi(addr[i+1:]); err == nil {
			return addr[i+1:]
		}
	}
	return addr
}
