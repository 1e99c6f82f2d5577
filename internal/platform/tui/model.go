package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/sim"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

// observable is implemented by games that publish frames.
type observable interface {
	AddObserver(obs ...sim.FrameObserver)
}

// statsSource is implemented by games that count per-run statistics.
type statsSource interface {
	Stats() sim.Stats
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithSession names the player for stored runs. Defaults to "local".
func WithSession(name string) ModelOption {
	return func(m *Model) { m.session = name }
}

// WithObservers attaches frame observers to games that support them.
func WithObservers(obs ...sim.FrameObserver) ModelOption {
	return func(m *Model) { m.observers = append(m.observers, obs...) }
}

// WithModelLogger sets the logger for storage warnings.
func WithModelLogger(l *log.Logger) ModelOption {
	return func(m *Model) { m.log = l }
}

// WithHoldWindow overrides DefaultHoldWindow.
func WithHoldWindow(d time.Duration) ModelOption {
	return func(m *Model) { m.input = newInputLatch(d) }
}

// WithClock replaces time.Now for input latching.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// Model is the Bubble Tea model running one game.
type Model struct {
	game      registry.Game
	screen    *core.Screen
	store     *storage.Store
	config    core.RuntimeConfig
	session   string
	observers []sim.FrameObserver
	log       *log.Logger
	keys      KeyMap
	input     *inputLatch
	now       func() time.Time
	gen       uint64

	gameState core.GameState
	quitting  bool // player left from the title screen or mid-run
	exited    bool // game reached its exit state
	back      bool // player asked for the menu
	runSaved  bool // run of the current game over has been stored
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ...ModelOption) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	m := Model{
		game:    game,
		screen:  core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:   store,
		config:  cfg,
		session: "local",
		log:     log.New(io.Discard),
		keys:    DefaultKeyMap(),
		input:   newInputLatch(DefaultHoldWindow),
		now:     time.Now,
		gen:     nextGen(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if obs, ok := game.(observable); ok && len(m.observers) > 0 {
		obs.AddObserver(m.observers...)
	}
	// Reset here rather than in Init: Init has a value receiver and the
	// first frame must already see a built game.
	game.Reset(cfg)
	m.gameState = game.State()
	return m
}

// Init starts the frame loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.gen, m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// The world is fixed size and scaled into the screen, so a resize
		// never resets the run.
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Gen != m.gen || m.Done() {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.gameState.GameOver || m.gameState.Paused {
			m.back = true
			return m, tea.Quit
		}
		return m, nil
	}

	action := m.keys.Action(msg)
	// Q only reaches the game from the game over screen, where it is the
	// exit transition. Anywhere else it leaves immediately.
	if action == core.ActionQuit && !m.gameState.GameOver {
		m.quitting = true
		return m, tea.Quit
	}
	m.input.press(action, m.now())
	return m, nil
}

// handleTick runs one platform frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	in := m.input.frame(m.now())
	result := m.game.Step(in)
	m.gameState = result.State

	switch {
	case m.gameState.GameOver && !m.runSaved:
		m.saveRun()
		m.runSaved = true
	case !m.gameState.GameOver:
		m.runSaved = false
	}

	if m.gameState.Exited {
		m.exited = true
		m.input.reset()
		return m, tea.Quit
	}
	return m, tickCmd(m.gen, m.config.TickRate)
}

// saveRun stores the score and run statistics. Storage is best effort;
// a failing database never interrupts play.
func (m *Model) saveRun() {
	if m.store == nil {
		return
	}
	st := m.gameState
	if st.Score > 0 {
		if _, err := m.store.SaveScore(m.game.ID(), st.Score); err != nil {
			m.log.Warn("save score failed", "mode", m.game.ID(), "err", err)
		}
	}

	rec := storage.RunRecord{GameID: m.game.ID(), Session: m.session, Score: st.Score}
	if src, ok := m.game.(statsSource); ok {
		s := src.Stats()
		rec.Kills = s.Kills
		rec.Shots = s.Shots
		rec.EnemyShots = s.EnemyShots
		rec.ShieldAbsorbs = s.ShieldAbsorbs
		rec.PlayerHits = s.PlayerHits
		rec.Ticks = int64(s.Ticks)
	}
	if _, err := m.store.SaveRun(rec); err != nil {
		m.log.Warn("save run failed", "mode", m.game.ID(), "err", err)
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".invaders", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.log.Warn("screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.log.Warn("screenshot", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.Done() {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// Done reports whether the game screen is finished for any reason.
func (m Model) Done() bool {
	return m.quitting || m.exited || m.back
}

// BackToMenu reports whether the player asked for the menu.
func (m Model) BackToMenu() bool {
	return m.back
}

// Exited reports whether the game left through its own exit transition.
func (m Model) Exited() bool {
	return m.exited
}

// IsQuitting reports whether the player asked to leave the program.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// GameState returns the readout from the latest frame.
func (m Model) GameState() core.GameState {
	return m.gameState
}

// Run starts a standalone Bubble Tea program for one game.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts ...ModelOption) error {
	p := tea.NewProgram(
		NewModel(game, store, cfg, opts...),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
