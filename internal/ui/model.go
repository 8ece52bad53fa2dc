package ui

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lunarcatowo/termfolio/internal/canvas"
	"github.com/lunarcatowo/termfolio/internal/field"
	"github.com/lunarcatowo/termfolio/internal/github"
	"github.com/lunarcatowo/termfolio/internal/reveal"
)

const (
	maxPanelWidth   = 76
	minPanelWidth   = 30
	defaultInterval = time.Second / 30
)

// Ambience is the soundtrack controls the TUI needs.
type Ambience interface {
	ToggleMute() bool
	Muted() bool
	Title() string
	Levels() []float64
}

// Data is everything the portfolio shows, with per-dataset load errors.
type Data struct {
	Profile      github.Result[github.Profile]
	ProfileErr   error
	Repos        github.Result[[]github.Repo]
	ReposErr     error
	Languages    github.Result[[]string]
	LanguagesErr error
}

// Options configure the main model.
type Options struct {
	Username       string
	Background     field.Kind
	FrameInterval  time.Duration
	RevealDuration time.Duration
	AprilFools     bool
	ColorProfile   canvas.Profile
	Ambience       Ambience
	Seed           int64
	Now            func() time.Time
}

// Model is the Bubbletea model for the portfolio screen.
type Model struct {
	data     Data
	opts     Options
	bg       *background
	page     Page
	projects list.Model
	reveals  map[string]reveal.Effect
	rng      *rand.Rand
	muted    bool
	width    int
	height   int
	quitting bool
}

// New creates the portfolio model. The background starts on the first frame
// after Init.
func New(data Data, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = defaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seed := seedOrNow(opts.Seed)

	repos := data.Repos.Value
	if opts.AprilFools {
		repos = jokeRepos(opts.Now())
	}

	m := Model{
		data:     data,
		opts:     opts,
		bg:       newBackground(opts.Background, seed, opts.ColorProfile, opts.FrameInterval),
		projects: newProjectList(repos, opts.AprilFools),
		reveals:  make(map[string]reveal.Effect),
		rng:      rand.New(rand.NewSource(seed)),
	}
	if opts.Ambience != nil {
		m.muted = opts.Ambience.Muted()
	}
	m.showPage(PageProfile)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.opts.FrameInterval, m.bg.gen), tea.SetWindowTitle(m.windowTitle()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bg.resize(msg.Width, msg.Height)
		w := m.innerWidth()
		m.projects.SetSize(w, max(3, msg.Height-18))
		return m, nil

	case frameMsg:
		if !m.bg.step(msg) {
			return m, nil
		}
		return m, frameCmd(m.opts.FrameInterval, m.bg.gen)
	}

	if m.page == PageProjects {
		return m.updateProjects(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		m.bg.close()
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case "tab":
		m.showPage((m.page + 1) % pageCount)
		return m, nil
	case "shift+tab":
		m.showPage((m.page + pageCount - 1) % pageCount)
		return m, nil
	case "1", "2", "3", "4":
		m.showPage(Page(msg.String()[0] - '1'))
		return m, nil
	case "b":
		gen := m.bg.toggle()
		return m, frameCmd(m.opts.FrameInterval, gen)
	case "left", "h":
		m.bg.nudge(-1)
		return m, nil
	case "right", "l":
		m.bg.nudge(1)
		return m, nil
	case "m":
		if m.opts.Ambience != nil {
			m.muted = m.opts.Ambience.ToggleMute()
		}
		return m, nil
	}

	if m.page != PageProjects {
		return m, nil
	}
	m, cmd := m.updateProjects(msg)
	m.startReveal(m.selectedRepoKey())
	return m, cmd
}

// showPage switches to p, starting its reveal the first time it is shown.
func (m *Model) showPage(p Page) {
	m.page = p
	m.startReveal("page:" + p.String())
	if p == PageProjects {
		m.startReveal(m.selectedRepoKey())
	}
}

func (m *Model) startReveal(key string) {
	if key == "" {
		return
	}
	if _, ok := m.reveals[key]; ok {
		return
	}
	// Only the timing is kept here; renderBlocks supplies each block's text.
	m.reveals[key] = reveal.New("", m.opts.RevealDuration, m.opts.Now())
}

func (m Model) selectedRepoKey() string {
	if item, ok := m.projects.SelectedItem().(repoItem); ok {
		return "repo:" + item.repo.Name
	}
	return ""
}

func (m Model) windowTitle() string {
	name := m.data.Profile.Value.DisplayName()
	if name == "" {
		name = m.opts.Username
	}
	if name == "" {
		return "termfolio"
	}
	return name + " · termfolio"
}

func (m Model) panelWidth() int {
	w := maxPanelWidth
	if m.width > 0 {
		w = min(w, m.width-4)
	}
	return max(w, minPanelWidth)
}

func (m Model) innerWidth() int {
	return m.panelWidth() - 2 - panelStyle.GetHorizontalPadding()
}

// renderBlocks styles blocks, scrambling revealed ones while the reveal
// under key is still running.
func (m Model) renderBlocks(key string, blocks []block, width int) []string {
	now := m.opts.Now()
	e, running := m.reveals[key]
	running = running && !e.Done(now)

	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.text == "" {
			lines = append(lines, "")
			continue
		}
		text := b.text
		if b.reveal && running {
			e.Text = b.text
			text = e.View(now, m.rng)
		}
		lines = append(lines, b.style.Width(width).Render(text))
	}
	return lines
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, pageCount)
	for p := range pageCount {
		label := string(rune('1'+p)) + " " + p.String()
		if p == m.page {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderPage(width int) []string {
	key := "page:" + m.page.String()
	switch m.page {
	case PageProjects:
		lines := m.renderBlocks(key, m.projectsHeader(), width)
		lines = append(lines, "")
		if len(m.projects.Items()) > 0 {
			lines = append(lines, m.projects.View())
		}
		return append(lines, m.renderBlocks(m.selectedRepoKey(), m.projectsFooter(), width)...)
	case PageExperience:
		return m.renderBlocks(key, m.experienceBlocks(), width)
	case PageContact:
		return m.renderBlocks(key, m.contactBlocks(), width)
	default:
		return m.renderBlocks(key, m.profileBlocks(), width)
	}
}

func (m Model) renderStatus() string {
	if m.opts.Ambience == nil {
		return ""
	}
	state := "♪ " + m.opts.Ambience.Title()
	if m.muted {
		return detailStyle.Render(state + " (muted)")
	}
	return detailStyle.Render(state) + " " + nameStyle.Render(levelBars(m.opts.Ambience.Levels()))
}

var barRunes = []rune("▁▂▃▄▅▆▇█")

func levelBars(levels []float64) string {
	bars := make([]rune, len(levels))
	for i, v := range levels {
		idx := int(math.Round(v * float64(len(barRunes)-1)))
		bars[i] = barRunes[min(max(idx, 0), len(barRunes)-1)]
	}
	return string(bars)
}

func (m Model) renderPanel() string {
	width := m.innerWidth()
	lines := []string{m.renderTabs(), ""}
	lines = append(lines, m.renderPage(width)...)
	lines = append(lines, "")
	if status := m.renderStatus(); status != "" {
		lines = append(lines, status)
	}
	lines = append(lines, helpStyle.Render(helpText(m.page, m.opts.Ambience != nil)))
	return panelStyle.Width(m.panelWidth() - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	panel := m.renderPanel()
	cols, rows := m.bg.size()
	if cols == 0 || rows == 0 {
		return panel
	}

	lines := strings.Split(panel, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	width := lipgloss.Width(panel)
	return m.bg.render(canvas.Overlay{
		Lines: lines,
		X:     max(0, (cols-width)/2),
		Y:     max(0, (rows-len(lines))/2),
		Width: width,
	})
}
