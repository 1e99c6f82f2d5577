// Package tui provides the Bubble Tea integration for the invaders platform.
// It handles the terminal UI loop, input mapping and screen flow.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger one game frame. Gen ties the message to the
// model that scheduled it, so a stale tick from a finished game is ignored.
type TickMsg struct {
	Gen uint64
	At  time.Time
}

var tickGen atomic.Uint64

func nextGen() uint64 {
	return tickGen.Add(1)
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(gen uint64, tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, At: t}
	})
}
