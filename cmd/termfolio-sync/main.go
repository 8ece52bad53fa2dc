// Command termfolio-sync snapshots a GitHub user's profile, repositories,
// languages and avatar into the cache directory the TUI falls back to.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/lunarcatowo/termfolio/internal/config"
	"github.com/lunarcatowo/termfolio/internal/github"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := github.NewClient(cfg.APIBaseURL, cfg.Timeout)
	snap, err := github.Sync(ctx, c, cfg.Username, cfg.CacheDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Printf("synced %s into %s: %d repos, %d languages", snap.Profile.Login, cfg.CacheDir, len(snap.Repos), len(snap.Languages))
	if snap.Avatar != "" {
		log.Printf("avatar saved to %s", snap.Avatar)
	}
}
