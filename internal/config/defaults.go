package config

import _ "embed"

//go:embed defaults/invaders.yaml
var defaultInvadersYAML []byte

// DefaultYAML returns the embedded default configuration document.
func DefaultYAML() []byte {
	return defaultInvadersYAML
}

// DefaultInvadersConfig returns the hardcoded default configuration.
func DefaultInvadersConfig() InvadersConfig {
	return InvadersConfig{
		Arena: ArenaConfig{
			LeftWall:   -400,
			RightWall:  400,
			BottomWall: -300,
			TopWall:    300,
		},
		Player: PlayerConfig{
			StartX:   0,
			StartY:   -250,
			Size:     30,
			Speed:    500,
			FireRate: 10,
		},
		Enemies: EnemyConfig{
			Rows:       15,
			Cols:       10,
			Spacing:    50,
			BaseX:      -250,
			BaseY:      100,
			Size:       20,
			Speed:      120,
			Drop:       20,
			FireRate:   4,
			FirePolicy: FireRandom,
			Points:     10,
		},
		Bullets: BulletConfig{
			Size:        5,
			Offset:      15,
			PlayerSpeed: 800,
			EnemySpeed:  500,
		},
		Shields: ShieldConfig{
			Count:   5,
			Spacing: 100,
			BaseX:   -250,
			Y:       -75,
			Width:   30,
			Height:  20,
			MaxHits: 5,
		},
		Gameplay: GameplayConfig{
			HitPoints: 5,
			TickHz:    60,
			MaxSteps:  5,
		},
	}
}

// VolleyVariant returns cfg switched to the all-front-row volley fire mode
// with its slower one-second cadence.
func VolleyVariant(cfg InvadersConfig) InvadersConfig {
	cfg.Enemies.FirePolicy = FireVolley
	cfg.Enemies.FireRate = 1
	return cfg
}
