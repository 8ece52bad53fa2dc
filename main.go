package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lunarcatowo/termfolio/internal/ambience"
	"github.com/lunarcatowo/termfolio/internal/canvas"
	"github.com/lunarcatowo/termfolio/internal/config"
	"github.com/lunarcatowo/termfolio/internal/github"
	"github.com/lunarcatowo/termfolio/internal/ui"
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

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "termfolio")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	live := github.NewClient(cfg.APIBaseURL, cfg.Timeout)
	fetcher := newFetcher(cfg.CacheDir, cfg.FallbackURL, live)

	opts := ui.Options{
		Username:       cfg.Username,
		Background:     cfg.Background,
		FrameInterval:  cfg.FrameInterval(),
		RevealDuration: cfg.RevealDuration,
		AprilFools:     ui.IsAprilFools(time.Now(), cfg.AprilFools),
		ColorProfile:   canvas.DetectProfile(),
	}
	if p := startAmbience(cfg); p != nil {
		defer p.Close()
		opts.Ambience = p
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tea.NewProgram(newStartupModel(ctx, fetcher, cfg.Username, opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFetcher prefers live, then the local snapshot, then the snapshot host
// when one is configured.
func newFetcher(cacheDir, fallbackURL string, live github.Source) *github.Fetcher {
	fallback := github.Sources{github.DirSource{Dir: cacheDir}}
	if fallbackURL != "" {
		fallback = append(fallback, github.NewHTTPSource(fallbackURL, 0))
	}
	return &github.Fetcher{
		Live:     live,
		Fallback: fallback,
		Logger:   log.Default(),
	}
}

// startAmbience starts the soundtrack. Audio problems are logged and the
// portfolio runs silently.
func startAmbience(cfg config.Config) *ambience.Player {
	s, err := ambience.OpenStream(cfg.AmbienceFile)
	if err != nil {
		log.Printf("ambience: %v", err)
		return nil
	}
	p, err := ambience.Start(s, cfg.Volume, cfg.Mute)
	if err != nil {
		log.Printf("ambience: %v", err)
		return nil
	}
	return p
}
