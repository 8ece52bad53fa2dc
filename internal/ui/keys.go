package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(page Page, hasAmbience bool) string {
	s := "tab/1-4 pages  b background"
	if page == PageProjects {
		s += "  j/k select"
	}
	s += "  ←/→ spin"
	if hasAmbience {
		s += "  m mute"
	}
	s += "  q quit"
	return s
}
