// Package registry maps game mode IDs to factories.
// Modes register themselves in init() functions so the CLI and servers can
// list and instantiate them without importing each one by name.
package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// Game is the contract between a playable mode and the platform.
// A Game owns its simulation; the platform only maps keys to actions,
// paces frames and draws the screen buffer.
type Game interface {
	// ID returns the mode identifier (e.g. "invaders"). Used for CLI
	// arguments and score storage.
	ID() string

	// Title returns a human-readable name for menus.
	Title() string

	// Reset rebuilds the game from scratch for the given runtime config.
	Reset(cfg core.RuntimeConfig)

	// Step advances one platform frame. A frame may run zero or more fixed
	// simulation ticks; StepResult.Ticks reports how many.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into dst. The screen is pre-cleared.
	Render(dst *core.Screen)

	// State returns the current readout (score, hit points, flags).
	State() core.GameState
}

// Describer is implemented by games that carry a one-line description.
type Describer interface {
	Description() string
}

// GameInfo contains metadata about a registered mode.
type GameInfo struct {
	ID          string
	Title       string
	Description string
}

// Factory creates a fresh game instance.
type Factory func() Game

var (
	mu    sync.RWMutex
	modes = make(map[string]entry)
)

type entry struct {
	factory Factory
	info    GameInfo
}

// Register adds a game factory.
// Panics if a game with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := modes[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	g := f()
	info := GameInfo{ID: id, Title: g.Title()}
	if d, ok := g.(Describer); ok {
		info.Description = d.Description()
	}
	modes[id] = entry{factory: f, info: info}
}

// List returns information about all registered modes, sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(modes))
	for _, e := range modes {
		result = append(result, e.info)
	}
	slices.SortFunc(result, func(a, b GameInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result
}

// IDs returns the registered mode IDs, sorted.
func IDs() []string {
	infos := List()
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}

// Create instantiates a game by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := modes[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}
	return e.factory(), nil
}

// Exists checks if a mode with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := modes[id]
	return ok
}
