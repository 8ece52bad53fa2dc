package ui

import (
	"time"

	"github.com/lunarcatowo/termfolio/internal/canvas"
	"github.com/lunarcatowo/termfolio/internal/field"
)

// nudgeStep is how far one arrow press changes the globe's spin, in radians
// per frame.
const nudgeStep = 0.004

// background hosts one animator on a terminal-sized canvas. Toggling tears
// the current animator down and bumps gen, so frame ticks scheduled for it
// are ignored once they arrive.
type background struct {
	kind    field.Kind
	seed    int64
	profile canvas.Profile
	maxStep time.Duration
	anim    *field.Animator
	canvas  *canvas.Canvas
	gen     int
}

// newBackground lets one step cover two frame intervals, so a late tick
// catches up without the simulation falling behind wall time at low frame
// rates.
func newBackground(kind field.Kind, seed int64, profile canvas.Profile, interval time.Duration) *background {
	maxStep := 2 * interval
	return &background{
		kind:    kind,
		seed:    seed,
		profile: profile,
		maxStep: maxStep,
		anim:    field.New(kind, field.WithSeed(seed), field.WithMaxStep(maxStep)),
	}
}

// resize rebuilds the canvas for the new terminal size and repopulates the
// animator for it.
func (b *background) resize(cols, rows int) {
	b.canvas = canvas.New(cols, rows)
	b.canvas.SetProfile(b.profile)
	b.anim.Initialize(b.canvas)
}

// toggle switches to the next kind and returns the new generation.
func (b *background) toggle() int {
	b.anim.Teardown()
	b.gen++
	b.kind = b.kind.Next()
	b.anim = field.New(b.kind, field.WithSeed(b.seed+int64(b.gen)), field.WithMaxStep(b.maxStep))
	if b.canvas != nil {
		b.canvas.Fade(1)
		b.anim.Initialize(b.canvas)
	}
	return b.gen
}

// step advances the animator if msg belongs to the current generation.
func (b *background) step(msg frameMsg) bool {
	if msg.gen != b.gen {
		return false
	}
	b.anim.Step(msg.t)
	return true
}

func (b *background) nudge(dir float64) {
	b.anim.Nudge(dir * nudgeStep)
}

func (b *background) close() {
	b.anim.Teardown()
	b.gen++
}

func (b *background) render(ov canvas.Overlay) string {
	if b.canvas == nil {
		return ""
	}
	return b.canvas.Render(ov)
}

func (b *background) size() (cols, rows int) {
	if b.canvas == nil {
		return 0, 0
	}
	return b.canvas.Cols(), b.canvas.Rows()
}

func seedOrNow(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
