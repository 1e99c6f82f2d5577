// Package config provides YAML-based game configuration loading and
// difficulty presets for the invaders simulation.
package config

import (
	"errors"
	"fmt"
)

// InvadersConfig contains all tunables for the simulation.
type InvadersConfig struct {
	Arena    ArenaConfig    `yaml:"arena"`
	Player   PlayerConfig   `yaml:"player"`
	Enemies  EnemyConfig    `yaml:"enemies"`
	Bullets  BulletConfig   `yaml:"bullets"`
	Shields  ShieldConfig   `yaml:"shields"`
	Gameplay GameplayConfig `yaml:"gameplay"`
}

// ArenaConfig defines the play field walls in world units (origin at center, Y up).
type ArenaConfig struct {
	LeftWall   float64 `yaml:"left_wall"`
	RightWall  float64 `yaml:"right_wall"`
	BottomWall float64 `yaml:"bottom_wall"`
	TopWall    float64 `yaml:"top_wall"`
}

// PlayerConfig defines the player ship.
type PlayerConfig struct {
	StartX   float64 `yaml:"start_x"`
	StartY   float64 `yaml:"start_y"`
	Size     float64 `yaml:"size"`
	Speed    float64 `yaml:"speed"`
	FireRate float64 `yaml:"fire_rate"` // shots per second
}

// EnemyFirePolicy selects how front-row enemies shoot when their gate opens.
type EnemyFirePolicy string

const (
	// FireRandom fires from exactly one front-row enemy chosen at random.
	FireRandom EnemyFirePolicy = "random"
	// FireVolley fires from every front-row enemy at once.
	FireVolley EnemyFirePolicy = "volley"
)

// EnemyConfig defines the formation layout and behaviour.
type EnemyConfig struct {
	Rows       int             `yaml:"rows"`
	Cols       int             `yaml:"cols"`
	Spacing    float64         `yaml:"spacing"`
	BaseX      float64         `yaml:"base_x"` // X of column 0
	BaseY      float64         `yaml:"base_y"` // Y of row 0
	Size       float64         `yaml:"size"`
	Speed      float64         `yaml:"speed"`
	Drop       float64         `yaml:"drop"`
	FireRate   float64         `yaml:"fire_rate"` // gate openings per second
	FirePolicy EnemyFirePolicy `yaml:"fire_policy"`
	Points     int             `yaml:"points"`
}

// BulletConfig defines projectile sizes and speeds.
type BulletConfig struct {
	Size        float64 `yaml:"size"`
	Offset      float64 `yaml:"offset"` // spawn offset from the shooter's center
	PlayerSpeed float64 `yaml:"player_speed"`
	EnemySpeed  float64 `yaml:"enemy_speed"`
}

// ShieldConfig defines the absorbing shields.
type ShieldConfig struct {
	Count   int     `yaml:"count"`
	Spacing float64 `yaml:"spacing"`
	BaseX   float64 `yaml:"base_x"`
	Y       float64 `yaml:"y"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	MaxHits int     `yaml:"max_hits"`
}

// GameplayConfig defines run-level rules.
type GameplayConfig struct {
	HitPoints int     `yaml:"hit_points"`
	TickHz    float64 `yaml:"tick_hz"`   // fixed simulation rate
	MaxSteps  int     `yaml:"max_steps"` // cap on ticks per frame
}

// PlayerFirePeriod returns seconds between player shots.
func (c InvadersConfig) PlayerFirePeriod() float64 {
	return 1.0 / c.Player.FireRate
}

// EnemyFirePeriod returns seconds between enemy fire gate openings.
func (c InvadersConfig) EnemyFirePeriod() float64 {
	return 1.0 / c.Enemies.FireRate
}

// TickDuration returns the fixed timestep in seconds.
func (c InvadersConfig) TickDuration() float64 {
	return 1.0 / c.Gameplay.TickHz
}

// Validate checks that the config can drive a simulation.
func (c InvadersConfig) Validate() error {
	var errs []error

	if c.Arena.LeftWall >= c.Arena.RightWall {
		errs = append(errs, fmt.Errorf("arena: left_wall %v must be below right_wall %v", c.Arena.LeftWall, c.Arena.RightWall))
	}
	if c.Arena.BottomWall >= c.Arena.TopWall {
		errs = append(errs, fmt.Errorf("arena: bottom_wall %v must be below top_wall %v", c.Arena.BottomWall, c.Arena.TopWall))
	}
	if c.Player.Speed <= 0 || c.Player.FireRate <= 0 || c.Player.Size <= 0 {
		errs = append(errs, errors.New("player: speed, fire_rate and size must be positive"))
	}
	if c.Enemies.Rows <= 0 || c.Enemies.Cols <= 0 {
		errs = append(errs, errors.New("enemies: rows and cols must be positive"))
	}
	if c.Enemies.FireRate <= 0 || c.Enemies.Size <= 0 || c.Enemies.Speed < 0 {
		errs = append(errs, errors.New("enemies: fire_rate and size must be positive, speed non-negative"))
	}
	if c.Enemies.Points < 0 {
		errs = append(errs, errors.New("enemies: points must not be negative"))
	}
	switch c.Enemies.FirePolicy {
	case FireRandom, FireVolley:
	default:
		errs = append(errs, fmt.Errorf("enemies: unknown fire_policy %q", c.Enemies.FirePolicy))
	}
	if c.Bullets.Size <= 0 || c.Bullets.PlayerSpeed <= 0 || c.Bullets.EnemySpeed <= 0 {
		errs = append(errs, errors.New("bullets: size and speeds must be positive"))
	}
	if c.Shields.Count < 0 || (c.Shields.Count > 0 && c.Shields.MaxHits <= 0) {
		errs = append(errs, errors.New("shields: count must be >= 0 and max_hits positive"))
	}
	if c.Gameplay.HitPoints <= 0 {
		errs = append(errs, errors.New("gameplay: hit_points must be positive"))
	}
	if c.Gameplay.TickHz <= 0 || c.Gameplay.MaxSteps <= 0 {
		errs = append(errs, errors.New("gameplay: tick_hz and max_steps must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// ParsePreset maps a CLI string to a preset. Empty or unknown returns "".
func ParsePreset(s string) DifficultyPreset {
	switch DifficultyPreset(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return DifficultyPreset(s)
	default:
		return ""
	}
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *InvadersConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Gameplay.HitPoints = 8
		cfg.Enemies.FireRate *= 0.5
		cfg.Enemies.Speed *= 0.75
	case DifficultyHard:
		cfg.Gameplay.HitPoints = 3
		cfg.Enemies.FireRate *= 1.5
		cfg.Enemies.Speed *= 1.25
	}
}
