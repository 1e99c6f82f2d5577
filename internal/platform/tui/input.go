package tui

import (
	"time"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

// DefaultHoldWindow is how long a movement or fire press stays active.
// Terminals deliver presses and auto-repeats but never releases, so a held
// key is a stream of presses; the window has to bridge the repeat interval.
const DefaultHoldWindow = 150 * time.Millisecond

// inputLatch turns key presses into per-frame input.
// Left, Right and Fire are held for the window after their last press.
// Everything else fires once, on the next frame.
type inputLatch struct {
	hold  time.Duration
	until map[core.Action]time.Time
	once  core.InputFrame
}

func newInputLatch(hold time.Duration) *inputLatch {
	if hold <= 0 {
		hold = DefaultHoldWindow
	}
	return &inputLatch{
		hold:  hold,
		until: make(map[core.Action]time.Time),
		once:  core.NewInputFrame(),
	}
}

func (l *inputLatch) press(a core.Action, now time.Time) {
	switch a {
	case core.ActionNone:
	case core.ActionLeft, core.ActionRight, core.ActionFire:
		// Reversing drops the old direction immediately.
		if a == core.ActionLeft {
			delete(l.until, core.ActionRight)
		}
		if a == core.ActionRight {
			delete(l.until, core.ActionLeft)
		}
		l.until[a] = now.Add(l.hold)
	default:
		l.once.Set(a)
	}
}

func (l *inputLatch) frame(now time.Time) core.InputFrame {
	f := l.once.Clone()
	l.once.Clear()
	for a, t := range l.until {
		if now.Before(t) {
			f.Set(a)
		} else {
			delete(l.until, a)
		}
	}
	return f
}

func (l *inputLatch) reset() {
	clear(l.until)
	l.once.Clear()
}
