package invaders

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/tui-invaders/internal/core"
	"github.com/vovakirdan/tui-invaders/internal/ecs"
	"github.com/vovakirdan/tui-invaders/internal/sim"
)

// Minimum terminal size that still shows every shield and column.
const (
	MinScreenW = 40
	MinScreenH = 16
)

// Glyphs
const (
	PlayerBulletChar = '|'
	EnemyBulletChar  = '!'
	HeartChar        = '♥'
)

var shieldShades = []rune{'█', '▓', '▒', '░'}

// viewport maps world coordinates onto the playfield inside the border.
type viewport struct {
	left, top     float64
	spanX, spanY  float64
	x0, y0        int
	width, height int
}

func newViewport(dst *core.Screen, g *Game) viewport {
	a := g.cfg.Arena
	// Row 0 is the HUD; the border box starts on row 1.
	return viewport{
		left:   a.LeftWall,
		top:    a.TopWall,
		spanX:  a.RightWall - a.LeftWall,
		spanY:  a.TopWall - a.BottomWall,
		x0:     1,
		y0:     2,
		width:  dst.Width() - 2,
		height: dst.Height() - 3,
	}
}

// cell returns the screen position of world point p and whether it is inside.
func (v viewport) cell(p core.Vec2) (int, int, bool) {
	fx := (p.X - v.left) / v.spanX
	fy := (v.top - p.Y) / v.spanY
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	x := v.x0 + int(math.Round(fx*float64(v.width-1)))
	y := v.y0 + int(math.Round(fy*float64(v.height-1)))
	return x, y, true
}

// cells converts a world width into a run length of at least one cell.
func (v viewport) cells(w float64) int {
	return max(1, int(math.Round(w/v.spanX*float64(v.width))))
}

// Render draws the playfield, HUD and state overlays.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if dst.Width() < MinScreenW || dst.Height() < MinScreenH {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small")
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", MinScreenW, MinScreenH))
		return
	}
	if g.engine == nil {
		return
	}

	snap := g.last.Snapshot
	g.renderHUD(dst, snap)

	vp := newViewport(dst, g)
	for _, ent := range snap.Entities {
		g.renderEntity(dst, vp, ent)
	}
	// Border last so wide sprites at the walls are clipped.
	dst.DrawBox(core.NewRect(0, 1, dst.Width(), dst.Height()-1), core.ColorGray)

	g.renderOverlay(dst, snap)
}

func (g *Game) renderHUD(dst *core.Screen, snap sim.Snapshot) {
	dst.DrawTextColor(1, 0, fmt.Sprintf("Score: %d", snap.Score), core.ColorBrightWhite)

	hp := snap.HP
	var lives string
	if hp <= 10 {
		lives = "HP: " + strings.Repeat(string(HeartChar), max(hp, 0))
	} else {
		lives = fmt.Sprintf("HP: %d", hp)
	}
	dst.DrawTextCenteredColor(0, lives, core.ColorBrightRed)

	title := g.Title()
	dst.DrawTextColor(dst.Width()-len(title)-1, 0, title, core.ColorCyan)
}

func (g *Game) renderEntity(dst *core.Screen, vp viewport, ent sim.EntityView) {
	x, y, ok := vp.cell(ent.Pos)
	if !ok {
		return
	}

	switch ent.Role {
	case ecs.RolePlayer:
		drawSprite(dst, x, y, vp.cells(ent.Scale.X), "/A\\", core.ColorBrightGreen)
	case ecs.RoleEnemy:
		drawSprite(dst, x, y, vp.cells(ent.Scale.X), "}{", core.ColorMagenta)
	case ecs.RoleShield:
		shade := shieldShades[min(ent.Hits*len(shieldShades)/max(g.cfg.Shields.MaxHits, 1), len(shieldShades)-1)]
		drawSprite(dst, x, y, vp.cells(ent.Scale.X), string(shade), core.ColorGreen)
	case ecs.RoleBullet:
		if ent.Owner == ecs.OwnerPlayer {
			dst.SetColor(x, y, PlayerBulletChar, core.ColorBrightYellow)
		} else {
			dst.SetColor(x, y, EnemyBulletChar, core.ColorRed)
		}
	}
}

// drawSprite centers a run of w cells on x, cycling through pattern.
// A run narrower than the pattern shows its middle rune.
func drawSprite(dst *core.Screen, x, y, w int, pattern string, c core.Color) {
	runes := []rune(pattern)
	if w < len(runes) {
		dst.SetColor(x, y, runes[len(runes)/2], c)
		return
	}
	start := x - w/2
	for i := 0; i < w; i++ {
		dst.SetColor(start+i, y, runes[i%len(runes)], c)
	}
}

func (g *Game) renderOverlay(dst *core.Screen, snap sim.Snapshot) {
	mid := dst.Height() / 2
	switch snap.State {
	case sim.StateMenu:
		dst.DrawTextCenteredColor(mid-3, "T U I   I N V A D E R S", core.ColorBrightGreen)
		dst.DrawTextCenteredColor(mid-1, g.Description(), core.ColorGray)
		dst.DrawTextCentered(mid+1, "ENTER start   Q quit")
		dst.DrawTextCentered(mid+2, "←/→ move   SPACE fire   P pause")
	case sim.StateGameOver:
		dst.DrawTextCenteredColor(mid-2, "G A M E   O V E R", core.ColorBrightRed)
		dst.DrawTextCentered(mid, fmt.Sprintf("Score: %d", snap.Score))
		dst.DrawTextCentered(mid+2, "R retry   Q quit")
	case sim.StateRunning:
		if snap.Paused {
			dst.DrawTextCenteredColor(mid, "PAUSED", core.ColorBrightYellow)
			dst.DrawTextCentered(mid+1, "P resume")
		}
	}
}
