package field

import (
	"math"
	"math/rand"
	"time"
)

// Palette is the colour family of one stream.
type Palette uint8

const (
	Pink Palette = iota
	Purple
	Green
	Blue
)

func (p Palette) String() string {
	switch p {
	case Purple:
		return "purple"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "pink"
	}
}

type paletteColors struct {
	base, head, glow Color
}

var palettes = [...]paletteColors{
	Pink:   {base: Color{R: 255, G: 20, B: 147}, head: Color{R: 255, G: 220, B: 240}, glow: Color{R: 255, G: 20, B: 147, A: 0.7}},
	Purple: {base: Color{R: 180, G: 0, B: 255}, head: Color{R: 255, G: 220, B: 255}, glow: Color{R: 180, G: 0, B: 255, A: 0.7}},
	Green:  {base: Color{R: 0, G: 255, B: 70}, head: Color{R: 220, G: 255, B: 220}, glow: Color{R: 0, G: 255, B: 70, A: 0.7}},
	Blue:   {base: Color{R: 30, G: 144, B: 255}, head: Color{R: 220, G: 220, B: 255}, glow: Color{R: 30, G: 144, B: 255, A: 0.7}},
}

// paletteWeights is a cumulative distribution over Pink, Purple, Green, Blue.
type paletteWeights [4]float64

func (w paletteWeights) pick(r float64) Palette {
	for i, limit := range w {
		if r < limit {
			return Palette(i)
		}
	}
	return Blue
}

// RainConfig tunes the falling streams. Speeds and timers are per reference
// frame.
type RainConfig struct {
	SegmentSize    float64 // nominal size used for column spacing
	ColumnFactor   float64
	FloorHeight    float64
	FloorGlow      float64
	Lifespan       time.Duration // resting segment lifetime
	FadeAlpha      float64
	RecolorChance  float64
	InitialWeights paletteWeights
	ResetWeights   paletteWeights
}

// DefaultRainConfig matches the site background.
func DefaultRainConfig() RainConfig {
	return RainConfig{
		SegmentSize:    14,
		ColumnFactor:   0.6,
		FloorHeight:    2,
		FloorGlow:      0.4,
		Lifespan:       3000 * time.Millisecond,
		FadeAlpha:      0.05,
		RecolorChance:  0.2,
		InitialWeights: paletteWeights{0.5, 0.7, 0.85, 1},
		ResetWeights:   paletteWeights{0.35, 0.6, 0.8, 1},
	}
}

// ColumnWidth is the horizontal spacing between emitters.
func (c RainConfig) ColumnWidth() float64 { return c.SegmentSize * c.ColumnFactor }

// Segment is one particle of a stream's trail.
type Segment struct {
	X, Y      float64
	Created   time.Time
	Intensity float64
	Resting   bool
	RestingAt time.Time
}

// Stream is a column-bound emitter of falling segments.
type Stream struct {
	X           float64
	Y           float64
	Speed       float64
	MaxLength   int
	Timer       float64
	Palette     Palette
	SegmentSize float64
	Segments    []Segment
}

type rain struct {
	cfg     RainConfig
	rng     *rand.Rand
	width   float64
	height  float64
	streams []Stream
}

func newRain(cfg RainConfig, rng *rand.Rand) *rain {
	return &rain{cfg: cfg, rng: rng}
}

func (r *rain) reset(width, height float64) {
	r.width, r.height = width, height
	columns := int(math.Ceil(width / r.cfg.ColumnWidth()))
	r.streams = make([]Stream, columns)
	for i := range r.streams {
		r.streams[i] = Stream{
			X:           float64(i) * r.cfg.ColumnWidth(),
			Y:           -100 - r.rng.Float64()*height,
			Speed:       1 + r.rng.Float64()*5,
			MaxLength:   5 + r.rng.Intn(30),
			Timer:       r.rng.Float64() * 10,
			Palette:     r.cfg.InitialWeights.pick(r.rng.Float64()),
			SegmentSize: 12 + float64(r.rng.Intn(6)),
		}
	}
}

func (r *rain) floorY() float64 { return r.height - r.cfg.FloorHeight }

func (r *rain) step(now time.Time, frames float64) {
	floorY := r.floorY()
	for i := range r.streams {
		st := &r.streams[i]

		// advance
		if frames > 0 {
			dy := st.Speed * frames
			st.Y += dy
			for j := range st.Segments {
				seg := &st.Segments[j]
				if seg.Resting {
					continue
				}
				seg.Y += dy
				if seg.Y+st.SegmentSize > floorY {
					seg.Y = floorY - 2
					seg.Resting = true
					seg.RestingAt = now
				}
			}
		}

		// spawn
		if frames > 0 {
			st.Timer -= frames
			if st.Timer <= 0 && len(st.Segments) < st.MaxLength {
				st.Segments = append(st.Segments, Segment{
					X:         st.X + (r.rng.Float64()*6 - 3),
					Y:         st.Y,
					Created:   now,
					Intensity: 0.2 + r.rng.Float64()*0.8,
				})
				st.Timer = 2 + r.rng.Float64()*8
			}
		}

		// cull
		kept := st.Segments[:0]
		for _, seg := range st.Segments {
			if seg.Resting {
				if now.Sub(seg.RestingAt) < r.cfg.Lifespan {
					kept = append(kept, seg)
				}
				continue
			}
			if seg.Y < r.height {
				kept = append(kept, seg)
			}
		}
		st.Segments = kept

		if st.Y-float64(st.MaxLength)*st.SegmentSize > r.height && len(st.Segments) == 0 {
			r.recycle(st)
		}
	}
}

// recycle resets a finished stream in place above the visible area.
func (r *rain) recycle(st *Stream) {
	st.Y = -100 - r.rng.Float64()*500
	st.Speed = 1 + r.rng.Float64()*5
	st.MaxLength = 5 + r.rng.Intn(30)
	st.Segments = st.Segments[:0]
	if r.rng.Float64() < r.cfg.RecolorChance {
		st.Palette = r.cfg.ResetWeights.pick(r.rng.Float64())
	}
}

// restingOpacity fades a floor segment to zero over lifespan.
func restingOpacity(age, lifespan time.Duration) float64 {
	if lifespan <= 0 {
		return 0
	}
	return math.Max(0, 1-float64(age)/float64(lifespan)) * 0.8
}

// trailOpacity is the opacity of a falling segment by its place in the trail.
func trailOpacity(index, length int) float64 {
	if index == length-1 {
		return 1
	}
	return 0.8 - float64(index)/float64(length)*0.7
}

func (r *rain) draw(s Surface, now time.Time) {
	s.Fade(r.cfg.FadeAlpha)
	r.drawFloor(s)

	for i := range r.streams {
		st := &r.streams[i]
		pal := palettes[st.Palette]
		width := st.SegmentSize / 3
		for j, seg := range st.Segments {
			head := j == len(st.Segments)-1 && !seg.Resting

			var alpha float64
			if seg.Resting {
				alpha = restingOpacity(now.Sub(seg.RestingAt), r.cfg.Lifespan)
			} else {
				alpha = trailOpacity(j, len(st.Segments))
			}
			if alpha <= 0 {
				continue
			}

			c := pal.base
			if head {
				c = pal.head
			}
			h := st.SegmentSize * seg.Intensity
			if seg.Resting {
				h = 2
			}
			s.FillRect(seg.X, seg.Y, width, h, c.WithAlpha(alpha))
			if head || seg.Resting {
				s.Dot(seg.X+width/2, seg.Y+h, pal.glow.WithAlpha(pal.glow.A*alpha))
			}
		}
	}
}

func (r *rain) drawFloor(s Surface) {
	floorY := r.floorY()
	glow := r.cfg.FloorGlow
	s.FillRect(0, floorY-30, r.width, 20, Color{R: 40, G: 40, B: 40, A: glow * 0.15})
	s.FillRect(0, floorY-10, r.width, 10+r.cfg.FloorHeight, Color{R: 70, G: 70, B: 70, A: glow * 0.5})
	s.FillRect(0, floorY, r.width, math.Max(1, r.cfg.FloorHeight*0.5), Color{R: 100, G: 100, B: 100, A: glow * 0.4})
}

func (r *rain) release() {
	r.streams = nil
}
