package ambience

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

const (
	meterFrames = 512
	meterBands  = 8
	meterDecay  = 0.35
)

// sampleRing keeps the most recent interleaved stereo samples played.
type sampleRing struct {
	mu  sync.Mutex
	buf []int16
	w   int
	n   int
	odd []byte
}

func newSampleRing(frames int) *sampleRing {
	return &sampleRing{buf: make([]int16, frames*channelCount)}
}

func (r *sampleRing) writePCM(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.odd) > 0 {
		p = append(r.odd, p...)
		r.odd = nil
	}
	written := 0
	for ; len(p) >= 2; p = p[2:] {
		r.buf[r.w] = int16(binary.LittleEndian.Uint16(p))
		r.w = (r.w + 1) % len(r.buf)
		written++
	}
	if len(p) == 1 {
		r.odd = []byte{p[0]}
	}
	r.n = min(r.n+written, len(r.buf))
}

// latest copies the newest samples into dst and reports how many it had.
func (r *sampleRing) latest(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := min(len(dst), r.n)
	start := (r.w - n + len(r.buf)) % len(r.buf)
	for i := range n {
		dst[i] = r.buf[(start+i)%len(r.buf)]
	}
	return n
}

// tap records everything read through it.
type tap struct {
	r    io.Reader
	ring *sampleRing
}

func (t tap) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.ring.writePCM(p[:n])
	}
	return n, err
}

// Meter turns recent output into smoothed, log-spaced band levels.
type Meter struct {
	mu      sync.Mutex
	ring    *sampleRing
	samples []int16
	re, im  []float64
	bands   []float64
}

func newMeter(ring *sampleRing, bands int) *Meter {
	return &Meter{
		ring:    ring,
		samples: make([]int16, meterFrames*channelCount),
		re:      make([]float64, meterFrames),
		im:      make([]float64, meterFrames),
		bands:   make([]float64, bands),
	}
}

// Levels returns one value per band in [0,1], relative to the loudest band.
// Until a full window has played every level is zero.
func (m *Meter) Levels() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]float64, len(m.bands))
	if m.ring.latest(m.samples) < len(m.samples) {
		return out
	}

	for i := range meterFrames {
		mono := (float64(m.samples[2*i]) + float64(m.samples[2*i+1])) / 65536
		hann := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(meterFrames-1)))
		m.re[i] = mono * hann
		m.im[i] = 0
	}
	fft(m.re, m.im)

	bins := meterFrames / 2
	peak := 0.01
	for b := range m.bands {
		lo := max(1, int(math.Pow(float64(bins), float64(b)/float64(len(m.bands)))))
		hi := min(bins, max(lo+1, int(math.Pow(float64(bins), float64(b+1)/float64(len(m.bands))))))
		var sum float64
		for i := lo; i < hi; i++ {
			sum += math.Hypot(m.re[i], m.im[i])
		}
		mag := sum / float64(hi-lo)
		m.bands[b] = m.bands[b]*meterDecay + mag*(1-meterDecay)
		peak = math.Max(peak, m.bands[b])
	}
	for i, v := range m.bands {
		out[i] = v / peak
	}
	return out
}
