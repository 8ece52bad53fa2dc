package field

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func newRainFor(t *testing.T, w, h float64, seed int64) (*Animator, *rain, *countingSurface) {
	t.Helper()
	s := &countingSurface{w: w, h: h}
	a := New(KindRain, WithSeed(seed))
	a.Initialize(s)
	r, ok := a.sim.(*rain)
	if !ok {
		t.Fatalf("expected rain simulation, got %T", a.sim)
	}
	return a, r, s
}

func TestRainColumnCount(t *testing.T) {
	_, r, _ := newRainFor(t, 600, 400, 1)
	if got := len(r.streams); got != 72 {
		t.Fatalf("expected 72 emitters for 600px, got %d", got)
	}
	if got := DefaultRainConfig().ColumnWidth(); math.Abs(got-8.4) > 1e-9 {
		t.Fatalf("expected column width 8.4, got %v", got)
	}
}

func TestRainStreamsStartAboveSurface(t *testing.T) {
	_, r, _ := newRainFor(t, 300, 200, 2)
	for i, st := range r.streams {
		if st.Y > -100 {
			t.Fatalf("stream %d starts at %v, want <= -100", i, st.Y)
		}
		if st.Speed < 1 || st.Speed >= 6 {
			t.Fatalf("stream %d speed %v out of range", i, st.Speed)
		}
		if st.MaxLength < 5 || st.MaxLength > 34 {
			t.Fatalf("stream %d max length %d out of range", i, st.MaxLength)
		}
		if want := float64(i) * 8.4; math.Abs(st.X-want) > 1e-9 {
			t.Fatalf("stream %d at x=%v, want %v", i, st.X, want)
		}
	}
}

func TestRainResizeRebuildsPopulation(t *testing.T) {
	a, _, s := newRainFor(t, 600, 400, 3)
	s.w = 300
	a.Initialize(s)
	r := a.sim.(*rain)
	if got := len(r.streams); got != 36 {
		t.Fatalf("expected 36 emitters after resize, got %d", got)
	}
}

func TestRainTrailNeverExceedsMaxLength(t *testing.T) {
	a, r, _ := newRainFor(t, 320, 240, 4)
	for i := 0; i < 3000; i++ {
		a.Step(frame(i))
		for j, st := range r.streams {
			if len(st.Segments) > st.MaxLength {
				t.Fatalf("frame %d: stream %d has %d segments, max %d", i, j, len(st.Segments), st.MaxLength)
			}
			if st.Palette > Blue {
				t.Fatalf("frame %d: stream %d has palette %d", i, j, st.Palette)
			}
		}
	}
}

func TestRainStreamYOnlyIncreasesUntilRecycled(t *testing.T) {
	a, r, _ := newRainFor(t, 200, 160, 5)
	prev := make([]float64, len(r.streams))
	for j, st := range r.streams {
		prev[j] = st.Y
	}
	for i := 0; i < 2000; i++ {
		a.Step(frame(i))
		for j, st := range r.streams {
			if st.Y < prev[j] && st.Y > -100 {
				t.Fatalf("frame %d: stream %d moved up from %v to %v without a reset", i, j, prev[j], st.Y)
			}
			prev[j] = st.Y
		}
	}
}

type restingKey struct {
	stream int
	at     time.Time
	x      float64
}

func TestRainRestingSegmentsAreFrozen(t *testing.T) {
	a, r, _ := newRainFor(t, 160, 120, 6)
	seen := map[restingKey]float64{}
	checked := 0
	for i := 0; i < 4000; i++ {
		now := frame(i)
		a.Step(now)
		for j, st := range r.streams {
			for _, seg := range st.Segments {
				if !seg.Resting {
					continue
				}
				key := restingKey{stream: j, at: seg.RestingAt, x: seg.X}
				if y, ok := seen[key]; ok {
					checked++
					if y != seg.Y {
						t.Fatalf("resting segment moved from %v to %v", y, seg.Y)
					}
				}
				seen[key] = seg.Y
				if age := now.Sub(seg.RestingAt); age >= r.cfg.Lifespan {
					t.Fatalf("resting segment kept past its lifespan (%v)", age)
				}
			}
		}
	}
	if checked == 0 {
		t.Fatal("expected some segments to come to rest")
	}
}

func TestRestingOpacityFadesToZero(t *testing.T) {
	lifespan := 3 * time.Second
	prev := math.Inf(1)
	for age := time.Duration(0); age <= lifespan; age += 50 * time.Millisecond {
		got := restingOpacity(age, lifespan)
		if got > prev {
			t.Fatalf("opacity rose from %v to %v at %v", prev, got, age)
		}
		prev = got
	}
	if got := restingOpacity(0, lifespan); got != 0.8 {
		t.Fatalf("expected initial resting opacity 0.8, got %v", got)
	}
	if got := restingOpacity(lifespan, lifespan); got != 0 {
		t.Fatalf("expected opacity 0 at lifespan, got %v", got)
	}
	if got := restingOpacity(2*lifespan, lifespan); got != 0 {
		t.Fatalf("expected opacity 0 past lifespan, got %v", got)
	}
}

func TestTrailOpacity(t *testing.T) {
	if got := trailOpacity(4, 5); got != 1 {
		t.Fatalf("expected head opacity 1, got %v", got)
	}
	if got := trailOpacity(0, 5); got != 0.8 {
		t.Fatalf("expected tail opacity 0.8, got %v", got)
	}
}

func TestPaletteWeights(t *testing.T) {
	w := DefaultRainConfig().InitialWeights
	cases := []struct {
		r    float64
		want Palette
	}{
		{0, Pink}, {0.49, Pink}, {0.5, Purple}, {0.69, Purple},
		{0.7, Green}, {0.84, Green}, {0.85, Blue}, {0.999, Blue},
	}
	for _, tc := range cases {
		if got := w.pick(tc.r); got != tc.want {
			t.Fatalf("pick(%v) = %v, want %v", tc.r, got, tc.want)
		}
	}
}

func TestRainRecycleKeepsColumn(t *testing.T) {
	_, r, _ := newRainFor(t, 100, 100, 7)
	st := &r.streams[3]
	x := st.X
	st.Y = 10_000
	st.Segments = st.Segments[:0]
	r.step(frame(1), 1)
	if st.X != x {
		t.Fatalf("expected column x %v to survive recycle, got %v", x, st.X)
	}
	if st.Y > -100 {
		t.Fatalf("expected recycled stream above the surface, got %v", st.Y)
	}
}

func snapshotStreams(streams []Stream) []Stream {
	out := make([]Stream, len(streams))
	for i, st := range streams {
		out[i] = st
		out[i].Segments = append([]Segment(nil), st.Segments...)
	}
	return out
}

func TestRainZeroElapsedChangesNothing(t *testing.T) {
	a, r, _ := newRainFor(t, 240, 180, 8)
	var now time.Time
	for i := 0; i < 400; i++ {
		now = frame(i)
		a.Step(now)
	}
	before := snapshotStreams(r.streams)
	a.Step(now)
	if !reflect.DeepEqual(before, snapshotStreams(r.streams)) {
		t.Fatal("expected a step with an unchanged timestamp to leave every stream untouched")
	}
}

func TestRainKeepsWallTimeAtSlowTickRates(t *testing.T) {
	const interval = 200 * time.Millisecond
	s := &countingSurface{w: 300, h: 20000}
	a := New(KindRain, WithSeed(11), WithMaxStep(2*interval))
	a.Initialize(s)
	r := a.sim.(*rain)

	start := make([]float64, len(r.streams))
	for i, st := range r.streams {
		start[i] = st.Y
	}
	const steps = 5
	for i := 0; i <= steps; i++ {
		a.Step(epoch.Add(time.Duration(i) * interval))
	}
	elapsed := (steps * interval).Seconds()
	for i, st := range r.streams {
		want := st.Speed * 60 * elapsed
		if got := st.Y - start[i]; math.Abs(got-want) > 1e-6 {
			t.Fatalf("stream %d advanced %v over %vs, want %v", i, got, elapsed, want)
		}
	}
}

func TestRainStallIsCappedAtMaxStep(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
		want float64
	}{
		{"default", nil, 4},
		{"configured", []Option{WithMaxStep(500 * time.Millisecond)}, 30},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := &countingSurface{w: 300, h: 20000}
			a := New(KindRain, append([]Option{WithSeed(12)}, tc.opts...)...)
			a.Initialize(s)
			r := a.sim.(*rain)
			a.Step(epoch)
			before := r.streams[0].Y
			a.Step(epoch.Add(10 * time.Second))
			if got, want := r.streams[0].Y-before, r.streams[0].Speed*tc.want; math.Abs(got-want) > 1e-6 {
				t.Fatalf("10s stall advanced %v, want %v", got, want)
			}
		})
	}
}
