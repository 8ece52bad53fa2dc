package github

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrNoFallback is returned when the live request fails and no fallback
// could serve the data either.
var ErrNoFallback = errors.New("no fallback data available")

// Result is fetched data plus where it came from.
type Result[T any] struct {
	Value  T
	Cached bool
}

// Fetcher prefers live data and falls back to a snapshot. Either side may be
// nil.
type Fetcher struct {
	Live     Source
	Fallback Source
	Logger   *log.Logger
}

func (f *Fetcher) Profile(ctx context.Context, user string) (Result[Profile], error) {
	return fetch(ctx, f, "profile", func(ctx context.Context, s Source) (Profile, error) {
		return s.Profile(ctx, user)
	})
}

func (f *Fetcher) Repos(ctx context.Context, user string) (Result[[]Repo], error) {
	return fetch(ctx, f, "repos", func(ctx context.Context, s Source) ([]Repo, error) {
		return s.Repos(ctx, user)
	})
}

func (f *Fetcher) Languages(ctx context.Context, user string) (Result[[]string], error) {
	return fetch(ctx, f, "languages", func(ctx context.Context, s Source) ([]string, error) {
		return s.Languages(ctx, user)
	})
}

func fetch[T any](ctx context.Context, f *Fetcher, what string, get func(context.Context, Source) (T, error)) (Result[T], error) {
	liveErr := errors.New("no live source")
	if f.Live != nil {
		v, err := get(ctx, f.Live)
		if err == nil {
			return Result[T]{Value: v}, nil
		}
		liveErr = err
		f.logf("live %s failed, trying fallback: %v", what, err)
	}

	if f.Fallback == nil {
		return Result[T]{}, fmt.Errorf("%s: %w: %w", what, ErrNoFallback, liveErr)
	}
	v, err := get(ctx, f.Fallback)
	if err != nil {
		return Result[T]{}, fmt.Errorf("%s: %w: live: %w; fallback: %v", what, ErrNoFallback, liveErr, err)
	}
	return Result[T]{Value: v, Cached: true}, nil
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.Logger != nil {
		f.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
