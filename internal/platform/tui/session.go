package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/registry"
	"github.com/vovakirdan/tui-invaders/internal/sim"
	"github.com/vovakirdan/tui-invaders/internal/storage"
)

// ObserverFactory builds the frame observers for one game inside a
// session. The returned release func runs when the game screen closes.
type ObserverFactory func(session, mode string) ([]sim.FrameObserver, func())

// SessionConfig configures a SessionModel.
type SessionConfig struct {
	Store     *storage.Store
	Runtime   core.RuntimeConfig
	Name      string // player name stored with runs
	Observers ObserverFactory
	Logger    *log.Logger

	// NewGame overrides registry.Create, mainly for tests.
	NewGame func(id string) (registry.Game, error)
}

type screen int

const (
	screenMenu screen = iota
	screenGame
	screenScores
)

// SessionModel manages the full flow: menu -> game -> menu, with the
// scoreboard reachable from the menu. It backs both local play and SSH
// sessions.
type SessionModel struct {
	cfg      SessionConfig
	runtime  core.RuntimeConfig
	screen   screen
	menu     MenuModel
	game     *Model
	scores   ScoreboardModel
	release  func()
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cfg SessionConfig) SessionModel {
	if cfg.Name == "" {
		cfg.Name = "local"
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.NewGame == nil {
		cfg.NewGame = registry.Create
	}
	return SessionModel{
		cfg:     cfg,
		runtime: cfg.Runtime,
		menu:    NewMenuModel(cfg.Store, cfg.Runtime),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.runtime.ScreenW = wsm.Width
		m.runtime.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if mm, ok := next.(MenuModel); ok {
		m.menu = mm
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.scores = NewScoreboardModel(m.cfg.Store, m.runtime.ScreenW, m.runtime.ScreenH)
		m.screen = screenScores
		return m, m.scores.Init()

	case m.menu.Selected() != nil:
		return m.startGame(m.menu.Selected().GameID)
	}
	return m, cmd
}

func (m SessionModel) startGame(id string) (tea.Model, tea.Cmd) {
	game, err := m.cfg.NewGame(id)
	if err != nil {
		m.cfg.Logger.Error("create game", "mode", id, "err", err)
		m.menu = NewMenuModel(m.cfg.Store, m.runtime)
		return m, nil
	}

	opts := []ModelOption{WithSession(m.cfg.Name), WithModelLogger(m.cfg.Logger)}
	m.release = nil
	if m.cfg.Observers != nil {
		obs, release := m.cfg.Observers(m.cfg.Name, id)
		opts = append(opts, WithObservers(obs...))
		m.release = release
	}

	rt := m.runtime
	rt.Seed = m.cfg.Runtime.Seed
	gm := NewModel(game, m.cfg.Store, rt, opts...)
	m.game = &gm
	m.screen = screenGame
	m.cfg.Logger.Info("game started", "session", m.cfg.Name, "mode", id)
	return m, m.game.Init()
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if gm, ok := next.(Model); ok {
		m.game = &gm
	}
	if !m.game.Done() {
		return m, cmd
	}

	st := m.game.GameState()
	m.cfg.Logger.Info("game ended", "session", m.cfg.Name, "mode", m.game.game.ID(), "score", st.Score)
	m.endGame()
	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	// Exit transition or back: the game's tea.Quit is swallowed and the
	// session returns to the menu.
	m.game = nil
	m.screen = screenMenu
	m.menu = NewMenuModel(m.cfg.Store, m.runtime)
	return m, m.menu.Init()
}

func (m *SessionModel) endGame() {
	if m.release != nil {
		m.release()
		m.release = nil
	}
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if sm, ok := next.(ScoreboardModel); ok {
		m.scores = sm
	}
	switch {
	case m.scores.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.scores.IsGoingBack():
		m.screen = screenMenu
		m.menu = NewMenuModel(m.cfg.Store, m.runtime)
		return m, m.menu.Init()
	}
	return m, cmd
}

// Close releases the observers of a game still on screen. Call it after
// the program exits.
func (m SessionModel) Close() {
	m.endGame()
}

// View renders the current screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// RunSession runs the interactive session in the local terminal.
func RunSession(cfg SessionConfig) error {
	p := tea.NewProgram(NewSessionModel(cfg), tea.WithAltScreen())
	final, err := p.Run()
	if sm, ok := final.(SessionModel); ok {
		sm.Close()
	}
	return err
}
