package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lunarcatowo/termfolio/internal/github"
	"github.com/lunarcatowo/termfolio/internal/ui"
)

const datasetCount = 3

type profileLoadedMsg struct {
	res github.Result[github.Profile]
	err error
}

type reposLoadedMsg struct {
	res github.Result[[]github.Repo]
	err error
}

type languagesLoadedMsg struct {
	res github.Result[[]string]
	err error
}

// startupModel shows a spinner while the three datasets load, then hands
// the program over to the portfolio model.
type startupModel struct {
	ctx      context.Context
	fetcher  *github.Fetcher
	user     string
	opts     ui.Options
	data     ui.Data
	loaded   int
	width    int
	height   int
	spinner  spinner.Model
	progress progress.Model
}

func newStartupModel(ctx context.Context, f *github.Fetcher, user string, opts ui.Options) startupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C2185B", Dark: "#FF69B4"})

	p := progress.New(
		progress.WithScaledGradient("#7E57C2", "#FF69B4"),
		progress.WithoutPercentage(),
	)

	return startupModel{
		ctx:      ctx,
		fetcher:  f,
		user:     user,
		opts:     opts,
		spinner:  s,
		progress: p,
	}
}

func (m startupModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.SetWindowTitle("termfolio"),
		loadProfileCmd(m.ctx, m.fetcher, m.user),
		loadReposCmd(m.ctx, m.fetcher, m.user),
		loadLanguagesCmd(m.ctx, m.fetcher, m.user),
	)
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-8, 20), 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case profileLoadedMsg:
		m.data.Profile, m.data.ProfileErr = msg.res, msg.err
		return m.datasetLoaded()

	case reposLoadedMsg:
		m.data.Repos, m.data.ReposErr = msg.res, msg.err
		return m.datasetLoaded()

	case languagesLoadedMsg:
		m.data.Languages, m.data.LanguagesErr = msg.res, msg.err
		return m.datasetLoaded()

	case tea.KeyMsg:
		if startupIsQuit(msg) {
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
	}
	return m, nil
}

func (m startupModel) datasetLoaded() (tea.Model, tea.Cmd) {
	m.loaded++
	if m.loaded < datasetCount {
		return m, nil
	}

	model := ui.New(m.data, m.opts)
	cmds := []tea.Cmd{model.Init()}
	if m.width > 0 || m.height > 0 {
		w, h := m.width, m.height
		cmds = append(cmds, func() tea.Msg {
			return tea.WindowSizeMsg{Width: w, Height: h}
		})
	}
	return model, tea.Batch(cmds...)
}

func (m startupModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("termfolio"))
	b.WriteString("\n\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(startupStatusStyle.Render(fmt.Sprintf("Loading %s's profile... (%d/%d)", m.user, m.loaded, datasetCount)))
	b.WriteString("\n  ")
	b.WriteString(m.progress.ViewAs(float64(m.loaded) / datasetCount))
	b.WriteString("\n\n  ")
	b.WriteString(startupHelpStyle.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}

func loadProfileCmd(ctx context.Context, f *github.Fetcher, user string) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Profile(ctx, user)
		return profileLoadedMsg{res: res, err: err}
	}
}

func loadReposCmd(ctx context.Context, f *github.Fetcher, user string) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Repos(ctx, user)
		return reposLoadedMsg{res: res, err: err}
	}
}

func loadLanguagesCmd(ctx context.Context, f *github.Fetcher, user string) tea.Cmd {
	return func() tea.Msg {
		res, err := f.Languages(ctx, user)
		return languagesLoadedMsg{res: res, err: err}
	}
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)
