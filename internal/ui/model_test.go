package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lunarcatowo/termfolio/internal/config"
	"github.com/lunarcatowo/termfolio/internal/field"
	"github.com/lunarcatowo/termfolio/internal/github"
)

var testStart = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

type fakeAmbience struct{ muted bool }

func (a *fakeAmbience) ToggleMute() bool {
	a.muted = !a.muted
	return a.muted
}

func (a *fakeAmbience) Muted() bool       { return a.muted }
func (a *fakeAmbience) Title() string     { return "rain" }
func (a *fakeAmbience) Levels() []float64 { return []float64{0, 0.5, 1} }

func testData() Data {
	return Data{
		Profile: github.Result[github.Profile]{Value: github.Profile{
			Login:       "lunarcatowo",
			Name:        "LunarcatOwO",
			Bio:         "Writes small tools and cat-themed things.",
			PublicRepos: 12,
			Followers:   1234,
		}},
		Repos: github.Result[[]github.Repo]{Value: []github.Repo{
			{Name: "termfolio", Language: "Go", Description: "A portfolio in your terminal.", UpdatedAt: testStart},
			{Name: "dotfiles", Language: "Shell", UpdatedAt: testStart.Add(-48 * time.Hour)},
		}},
		Languages: github.Result[[]string]{Value: []string{"Go", "TypeScript"}},
	}
}

func newTestModel(t *testing.T, data Data, mutate func(*Options)) (Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: testStart}
	opts := Options{
		Username:       "lunarcatowo",
		Background:     field.KindRain,
		FrameInterval:  time.Second / 30,
		RevealDuration: time.Second,
		Seed:           42,
		Now:            clock.now,
	}
	if mutate != nil {
		mutate(&opts)
	}
	m := New(data, opts)
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, clock
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFrameMsgSchedulesNextFrame(t *testing.T) {
	m, _ := newTestModel(t, testData(), nil)
	_, cmd := m.handleMsg(frameMsg{gen: 0, t: testStart})
	if cmd == nil {
		t.Fatal("expected next frame to be scheduled")
	}
}

func TestToggleBackgroundDropsStaleFrames(t *testing.T) {
	m, _ := newTestModel(t, testData(), nil)

	next, cmd := m.handleMsg(key("b"))
	if cmd == nil {
		t.Fatal("expected a new frame chain after toggling")
	}
	if next.bg.kind != field.KindGlobe || next.bg.gen != 1 {
		t.Fatalf("expected globe at gen 1, got %v at gen %d", next.bg.kind, next.bg.gen)
	}

	if _, cmd := next.handleMsg(frameMsg{gen: 0, t: testStart}); cmd != nil {
		t.Fatal("expected stale frame to end its chain")
	}
	if _, cmd := next.handleMsg(frameMsg{gen: 1, t: testStart}); cmd == nil {
		t.Fatal("expected current frame to continue")
	}
}

func TestToggleTwiceReturnsToRain(t *testing.T) {
	m, _ := newTestModel(t, testData(), nil)
	m, _ = m.handleMsg(key("b"))
	m, _ = m.handleMsg(frameMsg{gen: 1, t: testStart})
	m, _ = m.handleMsg(frameMsg{gen: 1, t: testStart.Add(time.Second / 30)})
	m, _ = m.handleMsg(key("b"))
	if m.bg.kind != field.KindRain {
		t.Fatalf("expected rain, got %v", m.bg.kind)
	}
}

func TestPageKeys(t *testing.T) {
	m, _ := newTestModel(t, testData(), nil)

	m, _ = m.handleMsg(key("tab"))
	if m.page != PageProjects {
		t.Fatalf("tab: got %v", m.page)
	}
	m, _ = m.handleMsg(key("shift+tab"))
	m, _ = m.handleMsg(key("shift+tab"))
	if m.page != PageContact {
		t.Fatalf("shift+tab wraps: got %v", m.page)
	}
	m, _ = m.handleMsg(key("3"))
	if m.page != PageExperience {
		t.Fatalf("3: got %v", m.page)
	}
}

func TestRevealStartsOnFirstShowOnly(t *testing.T) {
	m, clock := newTestModel(t, testData(), nil)
	if _, ok := m.reveals["page:Experience"]; ok {
		t.Fatal("expected no reveal before the page is shown")
	}

	m, _ = m.handleMsg(key("3"))
	first := m.reveals["page:Experience"].Start

	clock.t = clock.t.Add(5 * time.Second)
	m, _ = m.handleMsg(key("1"))
	m, _ = m.handleMsg(key("3"))
	if got := m.reveals["page:Experience"].Start; !got.Equal(first) {
		t.Fatalf("expected reveal to keep its start %v, got %v", first, got)
	}
}

func TestViewScramblesUntilRevealFinishes(t *testing.T) {
	m, clock := newTestModel(t, testData(), nil)

	if strings.Contains(m.View(), "cat-themed") {
		t.Fatal("expected bio to be scrambled at the start of the reveal")
	}
	clock.t = clock.t.Add(2 * time.Second)
	view := m.View()
	if !strings.Contains(view, "cat-themed") {
		t.Fatalf("expected bio after reveal, got %q", view)
	}
	if !strings.Contains(view, "1.2k followers") {
		t.Fatalf("expected follower count, got %q", view)
	}
}

func TestRevealUncoversBlocksHalfway(t *testing.T) {
	m, clock := newTestModel(t, testData(), nil)
	for k, e := range m.reveals {
		if e.Text != "" {
			t.Fatalf("reveal %q carries text %q; blocks supply their own", k, e.Text)
		}
	}

	clock.t = clock.t.Add(500 * time.Millisecond)
	view := m.View()
	if !strings.Contains(view, "Writes small tools a") {
		t.Fatalf("expected first half of the bio uncovered, got %q", view)
	}
	if strings.Contains(view, "cat-themed") || strings.Contains(view, "page:") {
		t.Fatalf("expected the rest of the bio scrambled, got %q", view)
	}
}

func TestBackgroundStepCoversTwoFrameIntervals(t *testing.T) {
	m, _ := newTestModel(t, testData(), func(o *Options) { o.FrameInterval = 200 * time.Millisecond })
	if m.bg.maxStep != 400*time.Millisecond {
		t.Fatalf("expected max step of 400ms, got %v", m.bg.maxStep)
	}
	m, _ = m.handleMsg(key("b"))
	if m.bg.maxStep != 400*time.Millisecond {
		t.Fatalf("expected toggling to keep the max step, got %v", m.bg.maxStep)
	}
}

func TestViewShowsCachedBadges(t *testing.T) {
	data := testData()
	data.Repos.Cached = true
	data.Languages.Cached = true
	m, clock := newTestModel(t, data, nil)
	clock.t = clock.t.Add(2 * time.Second)

	m, _ = m.handleMsg(key("2"))
	if view := m.View(); !strings.Contains(view, "(using cached repository data)") {
		t.Fatalf("expected repo badge, got %q", view)
	}
	m, _ = m.handleMsg(key("3"))
	if view := m.View(); !strings.Contains(view, "(using cached language data)") {
		t.Fatalf("expected language badge, got %q", view)
	}
	m, _ = m.handleMsg(key("1"))
	if strings.Contains(m.View(), "(cached profile)") {
		t.Fatal("expected no profile badge for live data")
	}
}

func TestProfileFallsBackOnError(t *testing.T) {
	data := testData()
	data.Profile = github.Result[github.Profile]{}
	data.ProfileErr = errors.New("offline")
	m, clock := newTestModel(t, data, nil)
	clock.t = clock.t.Add(2 * time.Second)

	view := m.View()
	if !strings.Contains(view, defaultBio) || !strings.Contains(view, "Couldn't load the GitHub profile.") {
		t.Fatalf("unexpected view %q", view)
	}
}

func TestProjectSelectionStartsDetailReveal(t *testing.T) {
	m, _ := newTestModel(t, testData(), nil)
	m, _ = m.handleMsg(key("2"))
	if _, ok := m.reveals["repo:termfolio"]; !ok {
		t.Fatal("expected selected repo reveal")
	}
	m, _ = m.handleMsg(key("down"))
	if _, ok := m.reveals["repo:dotfiles"]; !ok {
		t.Fatalf("expected reveal for newly selected repo, got %v", m.selectedRepoKey())
	}
}

func TestAprilFoolsReplacesContent(t *testing.T) {
	m, clock := newTestModel(t, testData(), func(o *Options) { o.AprilFools = true })
	clock.t = clock.t.Add(2 * time.Second)

	if !strings.Contains(m.View(), "About My New Career") {
		t.Fatal("expected joke heading")
	}
	item, ok := m.projects.Items()[0].(repoItem)
	if !ok || item.repo.Name != "CatMemeGenerator3000" {
		t.Fatalf("expected joke repos, got %+v", m.projects.Items()[0])
	}
	if !strings.Contains(item.Description(), "★ 10k") {
		t.Fatalf("expected stars in %q", item.Description())
	}
	m, _ = m.handleMsg(key("3"))
	clock.t = clock.t.Add(2 * time.Second)
	if view := m.View(); !strings.Contains(view, "Professional Napping · Master Level") {
		t.Fatalf("expected joke skills, got %q", view)
	}
}

func TestIsAprilFools(t *testing.T) {
	april2 := time.Date(2025, 4, 2, 23, 0, 0, 0, time.Local)
	april3 := time.Date(2025, 4, 3, 0, 0, 0, 0, time.Local)

	if !IsAprilFools(april2, config.ModeAuto) || IsAprilFools(april3, config.ModeAuto) {
		t.Fatal("auto mode should cover April 1st and 2nd only")
	}
	if !IsAprilFools(april3, config.ModeOn) || IsAprilFools(april2, config.ModeOff) {
		t.Fatal("forced modes should ignore the date")
	}
}

func TestMuteTogglesAmbience(t *testing.T) {
	amb := &fakeAmbience{}
	m, _ := newTestModel(t, testData(), func(o *Options) { o.Ambience = amb })
	if !strings.Contains(m.renderStatus(), "▁▅█") {
		t.Fatalf("expected level bars, got %q", m.renderStatus())
	}

	m, _ = m.handleMsg(key("m"))
	if !m.muted || !amb.muted {
		t.Fatal("expected ambience muted")
	}
	if !strings.Contains(m.renderStatus(), "(muted)") {
		t.Fatalf("expected muted status, got %q", m.renderStatus())
	}
}

func TestResizeRebuildsCanvas(t *testing.T) {
	m, _ := newTestModel(t, testData(), nil)
	m, _ = m.handleMsg(tea.WindowSizeMsg{Width: 60, Height: 20})
	if cols, rows := m.bg.size(); cols != 60 || rows != 20 {
		t.Fatalf("expected 60x20 canvas, got %dx%d", cols, rows)
	}
	if got := len(strings.Split(m.View(), "\n")); got != 20 {
		t.Fatalf("expected 20 rows, got %d", got)
	}
}

func TestQuitTearsDownBackground(t *testing.T) {
	m, _ := newTestModel(t, testData(), func(o *Options) { o.Background = field.KindGlobe })
	m, _ = m.handleMsg(frameMsg{gen: 0, t: testStart})

	m, cmd := m.handleMsg(key("q"))
	if cmd == nil || !m.quitting {
		t.Fatal("expected quit")
	}
	if n := m.bg.anim.LiveResources(); n != 0 {
		t.Fatalf("expected resources released, %d live", n)
	}
	if m.View() != "" {
		t.Fatal("expected empty view after quit")
	}
}
