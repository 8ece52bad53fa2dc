package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Source provides the three portfolio datasets for a user.
type Source interface {
	Profile(ctx context.Context, user string) (Profile, error)
	Repos(ctx context.Context, user string) ([]Repo, error)
	Languages(ctx context.Context, user string) ([]string, error)
}

var (
	_ Source = (*Client)(nil)
	_ Source = DirSource{}
	_ Source = (*HTTPSource)(nil)
)

// DirSource reads a snapshot written by Sync. The user argument is ignored;
// a snapshot belongs to one user.
type DirSource struct {
	Dir string
}

func (d DirSource) Profile(_ context.Context, _ string) (Profile, error) {
	var p Profile
	err := d.read(ProfileFile, &p)
	return p, err
}

func (d DirSource) Repos(_ context.Context, _ string) ([]Repo, error) {
	var repos []Repo
	if err := d.read(ReposFile, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (d DirSource) Languages(_ context.Context, _ string) ([]string, error) {
	var langs []string
	if err := d.read(LanguagesFile, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

func (d DirSource) read(name string, v any) error {
	path := filepath.Join(d.Dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// HTTPSource reads the same snapshot files from a static host such as
// termfolio-serve.
type HTTPSource struct {
	client *Client
}

// NewHTTPSource returns a source reading snapshot files under baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{client: NewClient(baseURL, timeout)}
}

func (h *HTTPSource) Profile(ctx context.Context, _ string) (Profile, error) {
	var p Profile
	err := h.client.getJSON(ctx, "/"+ProfileFile, &p)
	return p, err
}

func (h *HTTPSource) Repos(ctx context.Context, _ string) ([]Repo, error) {
	var repos []Repo
	if err := h.client.getJSON(ctx, "/"+ReposFile, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (h *HTTPSource) Languages(ctx context.Context, _ string) ([]string, error) {
	var langs []string
	if err := h.client.getJSON(ctx, "/"+LanguagesFile, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// Sources tries each source in order and returns the first success.
type Sources []Source

func (s Sources) Profile(ctx context.Context, user string) (Profile, error) {
	return firstOf(s, func(src Source) (Profile, error) { return src.Profile(ctx, user) })
}

func (s Sources) Repos(ctx context.Context, user string) ([]Repo, error) {
	return firstOf(s, func(src Source) ([]Repo, error) { return src.Repos(ctx, user) })
}

func (s Sources) Languages(ctx context.Context, user string) ([]string, error) {
	return firstOf(s, func(src Source) ([]string, error) { return src.Languages(ctx, user) })
}

func firstOf[T any](sources []Source, fn func(Source) (T, error)) (T, error) {
	var zero T
	var errs []error
	for _, src := range sources {
		v, err := fn(src)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return zero, ErrNotFound
	}
	return zero, errors.Join(errs...)
}
