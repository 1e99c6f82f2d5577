// Package raster draws simulation snapshots as images. The CLI uses it to
// dump the final frame of a headless run and the web server uses it to
// serve a still of a live session.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/vovakirdan/tui-invaders/internal/config"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

// Default image size in pixels.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

const hudHeight = 24

var (
	background   = color.RGBA{12, 12, 28, 255}
	gridLine     = color.RGBA{30, 30, 45, 255}
	playerColor  = color.RGBA{83, 255, 69, 255}
	enemyColor   = color.RGBA{220, 80, 220, 255}
	shieldColor  = color.RGBA{60, 200, 90, 255}
	playerBullet = color.RGBA{255, 235, 80, 255}
	enemyBullet  = color.RGBA{255, 70, 70, 255}
	textColor    = color.White
)

// Renderer maps the arena of one config onto a fixed-size canvas.
// A Renderer is stateless between calls and safe for concurrent use.
type Renderer struct {
	arena   config.ArenaConfig
	maxHits int
	width   int
	height  int
}

// New creates a renderer. Non-positive sizes fall back to the defaults.
func New(cfg config.InvadersConfig, width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= hudHeight {
		height = DefaultHeight
	}
	return &Renderer{
		arena:   cfg.Arena,
		maxHits: max(cfg.Shields.MaxHits, 1),
		width:   width,
		height:  height,
	}
}

// Size returns the canvas size in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Image draws snap and returns the result.
func (r *Renderer) Image(snap sim.Snapshot) image.Image {
	return r.draw(snap).Image()
}

// EncodePNG draws snap and writes it to w as PNG.
func (r *Renderer) EncodePNG(w io.Writer, snap sim.Snapshot) error {
	if err := r.draw(snap).EncodePNG(w); err != nil {
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return nil
}

// SavePNG draws snap into a PNG file at path.
func (r *Renderer) SavePNG(path string, snap sim.Snapshot) error {
	if err := r.draw(snap).SavePNG(path); err != nil {
		return fmt.Errorf("raster: save png: %w", err)
	}
	return nil
}

func (r *Renderer) draw(snap sim.Snapshot) *gg.Context {
	dc := gg.NewContext(r.width, r.height)

	dc.SetColor(background)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
	r.drawGrid(dc)

	for _, ent := range snap.Entities {
		r.drawEntity(dc, ent)
	}
	r.drawHUD(dc, snap)
	return dc
}

// toPixel maps a world point (origin at center, Y up) to canvas pixels
// below the HUD strip.
func (r *Renderer) toPixel(x, y float64) (float64, float64) {
	spanX := r.arena.RightWall - r.arena.LeftWall
	spanY := r.arena.TopWall - r.arena.BottomWall
	h := float64(r.height - hudHeight)
	px := (x - r.arena.LeftWall) / spanX * float64(r.width)
	py := hudHeight + (r.arena.TopWall-y)/spanY*h
	return px, py
}

func (r *Renderer) scale(w, h float64) (float64, float64) {
	sx := float64(r.width) / (r.arena.RightWall - r.arena.LeftWall)
	sy := float64(r.height-hudHeight) / (r.arena.TopWall - r.arena.BottomWall)
	return w * sx, h * sy
}

func (r *Renderer) drawGrid(dc *gg.Context) {
	dc.SetColor(gridLine)
	dc.SetLineWidth(1)
	for x := 0; x < r.width; x += 40 {
		dc.DrawLine(float64(x), hudHeight, float64(x), float64(r.height))
		dc.Stroke()
	}
	for y := hudHeight; y < r.height; y += 40 {
		dc.DrawLine(0, float64(y), float64(r.width), float64(y))
		dc.Stroke()
	}
}

func (r *Renderer) drawEntity(dc *gg.Context, ent sim.EntityView) {
	cx, cy := r.toPixel(ent.Pos.X, ent.Pos.Y)
	w, h := r.scale(ent.Scale.X, ent.Scale.Y)

	switch ent.Role {
	case ecs.RolePlayer:
		dc.SetColor(playerColor)
		dc.MoveTo(cx, cy-h/2)
		dc.LineTo(cx+w/2, cy+h/2)
		dc.LineTo(cx-w/2, cy+h/2)
		dc.ClosePath()
		dc.Fill()
	case ecs.RoleEnemy:
		dc.SetColor(enemyColor)
		dc.DrawRoundedRectangle(cx-w/2, cy-h/2, w, h, min(w, h)/4)
		dc.Fill()
	case ecs.RoleShield:
		// Fade with damage, never fully transparent while alive.
		left := 1 - float64(ent.Hits)/float64(r.maxHits)
		c := shieldColor
		c.A = uint8(80 + 175*max(left, 0))
		dc.SetColor(c)
		dc.DrawRectangle(cx-w/2, cy-h/2, w, h)
		dc.Fill()
	case ecs.RoleBullet:
		if ent.Owner == ecs.OwnerPlayer {
			dc.SetColor(playerBullet)
		} else {
			dc.SetColor(enemyBullet)
		}
		dc.DrawRectangle(cx-max(w, 2)/2, cy-max(h, 4)/2, max(w, 2), max(h, 4))
		dc.Fill()
	}
}

func (r *Renderer) drawHUD(dc *gg.Context, snap sim.Snapshot) {
	dc.SetColor(color.Black)
	dc.DrawRectangle(0, 0, float64(r.width), hudHeight)
	dc.Fill()

	dc.SetColor(textColor)
	mid := float64(hudHeight) / 2
	dc.DrawStringAnchored(fmt.Sprintf("SCORE %d", snap.Score), 8, mid, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("HP %d", snap.HP), float64(r.width)/2, mid, 0.5, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("TICK %d", snap.Tick), float64(r.width)-8, mid, 1, 0.5)

	var banner string
	switch {
	case snap.State == sim.StateGameOver:
		banner = "GAME OVER"
	case snap.State == sim.StateMenu:
		banner = "PRESS START"
	case snap.Paused:
		banner = "PAUSED"
	}
	if banner != "" {
		dc.DrawStringAnchored(banner, float64(r.width)/2, float64(r.height+hudHeight)/2, 0.5, 0.5)
	}
}
