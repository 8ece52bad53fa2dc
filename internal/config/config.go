// Package config resolves termfolio settings from defaults, a .env file,
// TERMFOLIO_* environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lunarcatowo/termfolio/internal/field"
)

// Mode is a tri-state switch for seasonal content.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
)

func parseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeOn, ModeOff:
		return m, nil
	case "":
		return ModeAuto, nil
	}
	return ModeAuto, fmt.Errorf("want auto, on or off, got %q", s)
}

// Config holds every setting the termfolio commands read.
type Config struct {
	Username    string
	APIBaseURL  string
	Timeout     time.Duration
	CacheDir    string
	FallbackURL string

	Background     field.Kind
	FPS            int
	RevealDuration time.Duration
	AprilFools     Mode

	AmbienceFile string
	Volume       float64
	Mute         bool

	LogFile string

	Addr   string
	DBPath string
	Salt   string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Username:       "lunarcatowo",
		APIBaseURL:     "https://api.github.com",
		Timeout:        3 * time.Second,
		CacheDir:       "public",
		Background:     field.KindRain,
		FPS:            30,
		RevealDuration: 1000 * time.Millisecond,
		AprilFools:     ModeAuto,
		Volume:         0.4,
		Addr:           ":8080",
		DBPath:         "termfolio.db",
	}
}

// DotEnvFile is read when present; TERMFOLIO_ENV_FILE overrides the path.
const DotEnvFile = ".env"

// Load resolves the configuration for the current process. args excludes the
// program name.
func Load(args []string) (Config, error) {
	path := DotEnvFile
	if p, ok := os.LookupEnv("TERMFOLIO_ENV_FILE"); ok && p != "" {
		path = p
	}
	return load(args, path, os.LookupEnv, os.Stderr)
}

func load(args []string, dotenvPath string, lookupEnv func(string) (string, bool), usage io.Writer) (Config, error) {
	cfg := Default()

	dotenv := map[string]string{}
	if dotenvPath != "" {
		vars, err := godotenv.Read(dotenvPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("reading %s: %w", dotenvPath, err)
		}
		if err == nil {
			dotenv = vars
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := applyFlags(&cfg, args, usage); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("TERMFOLIO_USER", &cfg.Username)
	str("TERMFOLIO_API_URL", &cfg.APIBaseURL)
	str("TERMFOLIO_CACHE_DIR", &cfg.CacheDir)
	str("TERMFOLIO_FALLBACK_URL", &cfg.FallbackURL)
	str("TERMFOLIO_AMBIENCE", &cfg.AmbienceFile)
	str("TERMFOLIO_LOG", &cfg.LogFile)
	str("TERMFOLIO_ADDR", &cfg.Addr)
	str("TERMFOLIO_DB", &cfg.DBPath)
	str("TERMFOLIO_SALT", &cfg.Salt)
	if port, ok := lookup("PORT"); ok && port != "" {
		if _, set := lookup("TERMFOLIO_ADDR"); !set {
			cfg.Addr = ":" + port
		}
	}

	if v, ok := lookup("TERMFOLIO_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TERMFOLIO_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup("TERMFOLIO_REVEAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TERMFOLIO_REVEAL: %w", err)
		}
		cfg.RevealDuration = d
	}
	if v, ok := lookup("TERMFOLIO_BACKGROUND"); ok {
		k, err := field.ParseKind(v)
		if err != nil {
			return fmt.Errorf("TERMFOLIO_BACKGROUND: %w", err)
		}
		cfg.Background = k
	}
	if v, ok := lookup("TERMFOLIO_FPS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TERMFOLIO_FPS: %w", err)
		}
		cfg.FPS = n
	}
	if v, ok := lookup("TERMFOLIO_VOLUME"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("TERMFOLIO_VOLUME: %w", err)
		}
		cfg.Volume = f
	}
	if v, ok := lookup("TERMFOLIO_MUTE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("TERMFOLIO_MUTE: %w", err)
		}
		cfg.Mute = b
	}
	if v, ok := lookup("TERMFOLIO_APRIL_FOOLS"); ok {
		m, err := parseMode(v)
		if err != nil {
			return fmt.Errorf("TERMFOLIO_APRIL_FOOLS: %w", err)
		}
		cfg.AprilFools = m
	}
	return nil
}

func applyFlags(cfg *Config, args []string, usage io.Writer) error {
	flags := flag.NewFlagSet("termfolio", flag.ContinueOnError)
	flags.SetOutput(usage)

	flags.StringVar(&cfg.Username, "user", cfg.Username, "GitHub user to show")
	flags.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "GitHub API base URL")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "live request timeout")
	flags.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "snapshot directory")
	flags.StringVar(&cfg.FallbackURL, "fallback", cfg.FallbackURL, "snapshot host URL (termfolio-serve)")
	flags.IntVar(&cfg.FPS, "fps", cfg.FPS, "background frames per second (1-60)")
	flags.DurationVar(&cfg.RevealDuration, "reveal", cfg.RevealDuration, "text reveal duration")
	flags.StringVar(&cfg.AmbienceFile, "ambience", cfg.AmbienceFile, "looping audio file (mp3, wav, ogg, flac)")
	flags.Float64Var(&cfg.Volume, "volume", cfg.Volume, "ambience volume (0-1)")
	flags.BoolVar(&cfg.Mute, "mute", cfg.Mute, "start with ambience muted")
	flags.StringVar(&cfg.LogFile, "log", cfg.LogFile, "debug log file")
	flags.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address for termfolio-serve")
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "visit log database for termfolio-serve")
	flags.Func("background", "background animation: rain or globe", func(s string) error {
		k, err := field.ParseKind(s)
		if err != nil {
			return err
		}
		cfg.Background = k
		return nil
	})
	flags.Func("april-fools", "seasonal content: auto, on or off", func(s string) error {
		m, err := parseMode(s)
		if err != nil {
			return err
		}
		cfg.AprilFools = m
		return nil
	})

	return flags.Parse(args)
}

// Validate checks ranges and required fields.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Username) == "" {
		errs = append(errs, errors.New("user: must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout: must be positive, got %v", c.Timeout))
	}
	if c.FPS < 1 || c.FPS > 60 {
		errs = append(errs, fmt.Errorf("fps: must be within 1..60, got %d", c.FPS))
	}
	if c.RevealDuration < 0 {
		errs = append(errs, fmt.Errorf("reveal: must not be negative, got %v", c.RevealDuration))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume: must be within 0..1, got %v", c.Volume))
	}
	return errors.Join(errs...)
}

// FrameInterval is the tick period for the configured FPS.
func (c Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.FPS)
}
