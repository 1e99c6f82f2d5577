package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second driven by the platform (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState is the readout polled by the platform each frame.
type GameState struct {
	Score     int  // Current score
	HitPoints int  // Remaining player lives
	GameOver  bool // Whether the run has ended
	Paused    bool // Whether the game is paused
	Exited    bool // Whether the player chose to leave from the game over screen
}

// StepResult is returned by Game.Step() after each frame.
type StepResult struct {
	State GameState
	Ticks int // Fixed simulation ticks executed during this frame
}
