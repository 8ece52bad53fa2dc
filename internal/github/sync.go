package github

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is everything Sync wrote.
type Snapshot struct {
	Profile   Profile
	Repos     []Repo
	Languages []string
	Avatar    string
}

// Sync fetches the user's data and writes the cache files into dir. The
// avatar is downloaded when the profile has one; a failed download leaves no
// partial file behind.
func Sync(ctx context.Context, c *Client, user, dir string) (Snapshot, error) {
	var snap Snapshot
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return snap, fmt.Errorf("creating cache dir: %w", err)
	}

	profile, err := c.Profile(ctx, user)
	if err != nil {
		return snap, fmt.Errorf("fetching profile: %w", err)
	}
	snap.Profile = profile
	if err := writeJSON(filepath.Join(dir, ProfileFile), profile); err != nil {
		return snap, err
	}

	if profile.AvatarURL != "" {
		path := filepath.Join(dir, AvatarFile)
		if err := downloadFile(ctx, c, profile.AvatarURL, path); err != nil {
			return snap, fmt.Errorf("downloading avatar: %w", err)
		}
		snap.Avatar = path
	}

	repos, err := c.Repos(ctx, user)
	if err != nil {
		return snap, fmt.Errorf("fetching repos: %w", err)
	}
	if repos == nil {
		repos = []Repo{}
	}
	snap.Repos = repos
	if err := writeJSON(filepath.Join(dir, ReposFile), repos); err != nil {
		return snap, err
	}

	snap.Languages = SortLanguages(repos)
	if snap.Languages == nil {
		snap.Languages = []string{}
	}
	if err := writeJSON(filepath.Join(dir, LanguagesFile), snap.Languages); err != nil {
		return snap, err
	}
	return snap, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func downloadFile(ctx context.Context, c *Client, rawURL, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Download(ctx, rawURL, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
