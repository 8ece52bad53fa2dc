package field

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// referenceFrame is the frame interval all per-frame speeds are tuned for.
const referenceFrame = time.Second / 60

// defaultMaxStep bounds how far one Step may advance after a long stall
// (suspended terminal, slow host). Hosts ticking slower than this should
// raise it with WithMaxStep.
const defaultMaxStep = 4 * referenceFrame

// Color is an RGB colour with a separate opacity in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// WithAlpha returns c with its opacity replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// Surface is a 2D drawing target measured in virtual pixels.
type Surface interface {
	Size() (width, height float64)
	// Fade blends the whole surface toward black. 1 clears it.
	Fade(alpha float64)
	FillRect(x, y, w, h float64, c Color)
	Line(x0, y0, x1, y1 float64, c Color)
	Dot(x, y float64, c Color)
}

// Kind selects the simulation an Animator runs.
type Kind uint8

const (
	KindRain Kind = iota
	KindGlobe
)

// Next cycles to the other background.
func (k Kind) Next() Kind {
	if k == KindRain {
		return KindGlobe
	}
	return KindRain
}

func (k Kind) String() string {
	switch k {
	case KindGlobe:
		return "globe"
	default:
		return "rain"
	}
}

// ParseKind maps a background name to its Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rain", "":
		return KindRain, nil
	case "globe":
		return KindGlobe, nil
	}
	return KindRain, fmt.Errorf("unknown background %q (want rain or globe)", s)
}

// simulation is one variant's entity model. step receives the elapsed time
// already converted to reference frames.
type simulation interface {
	reset(width, height float64)
	step(now time.Time, frames float64)
	draw(s Surface, now time.Time)
	release()
}

// Option configures an Animator.
type Option func(*Animator)

// WithSeed makes the animator's randomness reproducible.
func WithSeed(seed int64) Option {
	return func(a *Animator) { a.rng = rand.New(rand.NewSource(seed)) }
}

// WithRain overrides the falling-streams parameters.
func WithRain(cfg RainConfig) Option {
	return func(a *Animator) { a.rainCfg = cfg }
}

// WithGlobe overrides the orbiting-network parameters.
func WithGlobe(cfg GlobeConfig) Option {
	return func(a *Animator) { a.globeCfg = cfg }
}

// WithMaxStep sets the longest elapsed time a single Step simulates. Set it
// above the host's frame interval so slow tick rates still keep wall time.
func WithMaxStep(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.maxStep = d
		}
	}
}

// Animator owns one running background simulation. It is driven by a single
// host loop: Initialize once (and again on resize), Step once per frame,
// Teardown when the background goes away. It is not safe for concurrent use.
type Animator struct {
	kind     Kind
	rng      *rand.Rand
	rainCfg  RainConfig
	globeCfg GlobeConfig
	maxStep  time.Duration

	surface Surface
	sim     simulation
	strokes strokePool

	last    time.Time
	started bool
	torn    bool
}

// New returns an animator of the given kind. Nothing is allocated until
// Initialize is called with a usable surface.
func New(kind Kind, opts ...Option) *Animator {
	a := &Animator{
		kind:     kind,
		rainCfg:  DefaultRainConfig(),
		globeCfg: DefaultGlobeConfig(),
		maxStep:  defaultMaxStep,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a
}

// Kind reports which simulation the animator runs.
func (a *Animator) Kind() Kind { return a.kind }

// Initialize builds the entity population for s. A nil or empty surface
// leaves the animator idle. Any previous population is released first.
func (a *Animator) Initialize(s Surface) {
	a.releaseSim()
	a.surface = nil
	a.torn = false
	a.started = false
	if s == nil {
		return
	}
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	switch a.kind {
	case KindGlobe:
		a.sim = newGlobe(a.globeCfg, a.rng, &a.strokes)
	default:
		a.sim = newRain(a.rainCfg, a.rng)
	}
	a.surface = s
	a.sim.reset(w, h)
}

// Step advances the simulation to now and draws the result. Steps after
// Teardown, or before a successful Initialize, do nothing.
func (a *Animator) Step(now time.Time) {
	if a.torn || a.sim == nil || a.surface == nil {
		return
	}
	if !a.started {
		a.started = true
		a.last = now
	}
	dt := min(max(now.Sub(a.last), 0), a.maxStep)
	a.last = now

	frames := float64(dt) / float64(referenceFrame)
	a.sim.step(now, frames)
	a.sim.draw(a.surface, now)
}

// Teardown releases every drawing resource and stops future steps.
func (a *Animator) Teardown() {
	a.releaseSim()
	a.surface = nil
	a.torn = true
}

// Nudge changes the globe's target spin rate by delta radians per frame.
// Other kinds ignore it.
func (a *Animator) Nudge(delta float64) {
	if g, ok := a.sim.(*globe); ok {
		g.nudge(delta)
	}
}

// LiveResources reports how many stroke buffers are checked out.
func (a *Animator) LiveResources() int { return a.strokes.live }

func (a *Animator) releaseSim() {
	if a.sim != nil {
		a.sim.release()
		a.sim = nil
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
