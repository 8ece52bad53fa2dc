// Package github loads the portfolio's profile, repositories and languages,
// from the GitHub API when reachable and from a cached snapshot otherwise.
package github

import "time"

// Profile is the subset of a GitHub user the portfolio shows.
type Profile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Location    string `json:"location"`
	Blog        string `json:"blog"`
}

// DisplayName prefers the full name and falls back to the login.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Login
}

// Repo is one public repository.
type Repo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	Language        string    `json:"language"`
	UpdatedAt       time.Time `json:"updated_at"`
	StargazersCount int       `json:"stargazers_count"`
	Fork            bool      `json:"fork"`
}

// Cache file names, shared by the sync tool, the directory source and the
// fallback host.
const (
	ProfileFile   = "github-profile.json"
	ReposFile     = "github-repos.json"
	LanguagesFile = "github-languages.json"
	AvatarFile    = "github-avatar.jpg"
)
