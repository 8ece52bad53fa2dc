package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg drives one background step. gen ties it to the background that
// scheduled it; ticks from a torn-down background are dropped.
type frameMsg struct {
	gen int
	t   time.Time
}

func frameCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, t: t}
	})
}
