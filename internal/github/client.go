package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

const (
	defaultTimeout = 3 * time.Second
	userAgent      = "termfolio"
	errBodyLimit   = 512
)

// ErrNotFound is returned when the user or file does not exist.
var ErrNotFound = errors.New("not found")

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s responded with status %d", e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Client talks to the GitHub REST API. Each request is bounded by Timeout
// on top of the caller's context.
type Client struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL means the public
// API and a zero timeout means three seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Timeout:    timeout,
		HTTPClient: &http.Client{},
	}
}

// Profile fetches /users/{user}.
func (c *Client) Profile(ctx context.Context, user string) (Profile, error) {
	var p Profile
	err := c.getJSON(ctx, "/users/"+url.PathEscape(user), &p)
	return p, err
}

// Repos fetches the user's repositories, most recently updated first.
func (c *Client) Repos(ctx context.Context, user string) ([]Repo, error) {
	var repos []Repo
	path := "/users/" + url.PathEscape(user) + "/repos?sort=updated&direction=desc&per_page=100"
	if err := c.getJSON(ctx, path, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// Languages derives the user's languages from their repositories.
func (c *Client) Languages(ctx context.Context, user string) ([]string, error) {
	repos, err := c.Repos(ctx, user)
	if err != nil {
		return nil, err
	}
	return SortLanguages(repos), nil
}

// Download streams an absolute URL (the avatar) into w.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) error {
	resp, cancel, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, cancel, err := c.get(ctx, c.BaseURL+path)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// get issues a GET and checks the status. The returned cancel func must be
// called once the body has been consumed.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, context.CancelFunc, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("requesting %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
		resp.Body.Close()
		cancel()
		return nil, nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, cancel, nil
}
