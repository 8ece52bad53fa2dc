// Command termfolio-serve hosts the cached snapshot over HTTP and keeps an
// anonymised visit log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lunarcatowo/termfolio/internal/config"
	"github.com/lunarcatowo/termfolio/internal/server"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	var store *server.Store
	if cfg.DBPath != "" {
		s, err := server.OpenStore(cfg.DBPath, cfg.Salt)
		if err != nil {
			return err
		}
		store = s
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: server.New(cfg.CacheDir, store)}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("serving %s on %s", cfg.CacheDir, cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case serveErr = <-errc:
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		serveErr = srv.Shutdown(shutdownCtx)
	}
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	// The server no longer hands out visits, so the store can close.
	if store != nil {
		if err := store.Close(); err != nil && serveErr == nil {
			serveErr = err
		}
	}
	return serveErr
}
