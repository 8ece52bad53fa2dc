package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lunarcatowo/termfolio/internal/github"
	"github.com/lunarcatowo/termfolio/internal/util"
)

// Page is one tab of the portfolio.
type Page uint8

const (
	PageProfile Page = iota
	PageProjects
	PageExperience
	PageContact
	pageCount
)

var pageNames = [...]string{"Profile", "Projects", "Experience", "Contact"}

func (p Page) String() string {
	if p < pageCount {
		return pageNames[p]
	}
	return "Unknown"
}

const (
	contactHeading = "Contact Me"
	contactText    = "You can reach me in the pyro discord server!"
	contactURL     = "https://discord.gg/cUXuE6Qmrt"
	footerText     = "made with ♥"
)

// block is one piece of page text. Revealed blocks are scrambled until the
// page's reveal finishes; the style is applied after scrambling.
type block struct {
	text   string
	style  lipgloss.Style
	reveal bool
}

func plain(text string, style lipgloss.Style) block {
	return block{text: text, style: style}
}

func revealed(text string, style lipgloss.Style) block {
	return block{text: text, style: style, reveal: true}
}

var spacer = block{}

func (m Model) profileBlocks() []block {
	res := m.data.Profile
	p := res.Value

	heading := "About Me"
	if m.opts.AprilFools {
		heading = "About My New Career"
	}
	blocks := []block{revealed(heading, titleStyle)}
	if res.Cached {
		blocks = append(blocks, plain("(cached profile)", badgeStyle))
	}
	blocks = append(blocks, spacer)

	name := p.DisplayName()
	if name == "" {
		name = m.opts.Username
	}
	if p.Login != "" && p.Login != name {
		name += " @" + p.Login
	}
	blocks = append(blocks, revealed(name, nameStyle))

	switch {
	case m.opts.AprilFools:
		blocks = append(blocks, revealed(foolsBio, textStyle), spacer, plain(foolsBioPS, jokeStyle))
	case p.Bio != "":
		blocks = append(blocks, revealed(p.Bio, textStyle))
	default:
		blocks = append(blocks, revealed(defaultBio, textStyle))
	}

	if m.data.ProfileErr != nil {
		return append(blocks, spacer, plain("Couldn't load the GitHub profile.", errorStyle))
	}

	blocks = append(blocks, spacer, revealed(fmt.Sprintf("%s repos · %s followers · %s following",
		util.FormatCount(p.PublicRepos), util.FormatCount(p.Followers), util.FormatCount(p.Following)), detailStyle))
	if p.Location != "" {
		blocks = append(blocks, revealed("⌂ "+p.Location, detailStyle))
	}
	if p.Blog != "" {
		blocks = append(blocks, plain("↗ "+p.Blog, detailStyle))
	}
	if p.HTMLURL != "" {
		blocks = append(blocks, plain("↗ "+p.HTMLURL, detailStyle))
	}
	return blocks
}

// projectsHeader is everything above the repository list.
func (m Model) projectsHeader() []block {
	heading := "My Projects"
	if m.opts.AprilFools {
		heading = "My Incredible Projects"
	}
	blocks := []block{revealed(heading, titleStyle)}
	switch {
	case m.opts.AprilFools:
		blocks = append(blocks, plain(foolsReposIntro, jokeStyle))
	case m.data.Repos.Cached:
		blocks = append(blocks, plain("(using cached repository data)", badgeStyle))
	}
	return blocks
}

// projectsFooter is the selected repository's details, or why there are
// none.
func (m Model) projectsFooter() []block {
	if !m.opts.AprilFools && m.data.ReposErr != nil {
		return []block{plain("Couldn't load repositories.", errorStyle)}
	}
	if len(m.projects.Items()) == 0 {
		return []block{plain("No public repositories yet.", detailStyle)}
	}
	var blocks []block
	if item, ok := m.projects.SelectedItem().(repoItem); ok {
		desc := item.repo.Description
		if desc == "" {
			desc = "No description."
		}
		blocks = append(blocks, revealed(desc, textStyle))
		if item.repo.HTMLURL != "" {
			blocks = append(blocks, plain("↗ "+item.repo.HTMLURL, detailStyle))
		}
	}
	if m.opts.AprilFools {
		blocks = append(blocks, spacer, plain(foolsReposPS, jokeStyle))
	}
	return blocks
}

func (m Model) experienceBlocks() []block {
	heading := "My Experience"
	if m.opts.AprilFools {
		heading = "My Alternative Skills"
	}
	blocks := []block{revealed(heading, titleStyle)}

	if m.opts.AprilFools {
		blocks = append(blocks, plain(foolsSkillIntro, jokeStyle), spacer)
		for _, s := range foolsSkills {
			blocks = append(blocks, revealed("• "+s+" · "+foolsSkillLevel, textStyle))
		}
		return append(blocks, spacer, plain(foolsSkillPS, jokeStyle))
	}

	if m.data.Languages.Cached {
		blocks = append(blocks, plain("(using cached language data)", badgeStyle))
	}
	blocks = append(blocks, spacer)
	if m.data.LanguagesErr != nil {
		return append(blocks, plain("Couldn't load languages.", errorStyle))
	}
	langs := m.data.Languages.Value
	if len(langs) == 0 {
		return append(blocks, plain("Nothing to show yet.", detailStyle))
	}
	for _, l := range langs {
		blocks = append(blocks, revealed("• "+l, textStyle))
	}
	return blocks
}

func (m Model) contactBlocks() []block {
	blocks := []block{
		revealed(contactHeading, titleStyle),
		spacer,
		revealed(contactText, textStyle),
		plain("↗ "+contactURL, nameStyle),
	}
	if url := m.data.Profile.Value.HTMLURL; url != "" {
		blocks = append(blocks, plain("↗ "+url, detailStyle))
	}
	return append(blocks, spacer, plain(footerText, helpStyle))
}

// repoItem is one row of the projects list.
type repoItem struct {
	repo  github.Repo
	stars bool
}

func (i repoItem) Title() string { return i.repo.Name }

func (i repoItem) Description() string {
	parts := []string{}
	if i.repo.Language != "" {
		parts = append(parts, i.repo.Language)
	}
	parts = append(parts, "Updated: "+util.FormatDate(i.repo.UpdatedAt.Local()))
	if i.stars {
		parts = append(parts, "★ "+util.FormatCount(i.repo.StargazersCount))
	}
	return strings.Join(parts, " · ")
}

func (i repoItem) FilterValue() string { return i.repo.Name }

func newProjectList(repos []github.Repo, stars bool) list.Model {
	items := make([]list.Item, len(repos))
	for i, r := range repos {
		items[i] = repoItem{repo: r, stars: stars}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(accent).
		BorderLeftForeground(accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#AAAAAA"}).
		BorderLeftForeground(accent)

	l := list.New(items, delegate, 60, 12)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// updateProjects forwards a message to the list.
func (m Model) updateProjects(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.projects, cmd = m.projects.Update(msg)
	return m, cmd
}
