package ambience

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/rand"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

const (
	SampleRate    = 44100
	channelCount  = 2
	bytesPerFrame = channelCount * 2
)

var errEmptyTrack = errors.New("track has no audio")

// loopReader restarts its source at EOF so a track plays forever.
type loopReader struct {
	src io.ReadSeeker
}

func (l *loopReader) Read(p []byte) (int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		n, err := l.src.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
		if _, err := l.src.Seek(0, io.SeekStart); err != nil {
			return 0, err
		}
	}
	return 0, errEmptyTrack
}

// streamReader encodes a beep stream as 16-bit little-endian stereo PCM.
type streamReader struct {
	s   beep.Streamer
	buf [][2]float64
}

func newStreamReader(s beep.Streamer) *streamReader {
	return &streamReader{s: s}
}

func (r *streamReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]
	n, ok := r.s.Stream(buf)
	for i := range n {
		putFrame(p, i, floatToInt(buf[i][0]), floatToInt(buf[i][1]))
	}
	if n == 0 && !ok {
		if err := r.s.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return n * bytesPerFrame, nil
}

func floatToInt(v float64) int {
	return int(math.Max(-1, math.Min(v, 1)) * 32767)
}

// rainNoise is low-passed white noise with slow swells and sparse droplet
// ticks.
type rainNoise struct {
	rng    *rand.Rand
	lp     [2]float64
	swell  float64
	target float64
	until  int
	drop   float64
}

func newRainNoise(seed int64) *rainNoise {
	return &rainNoise{rng: rand.New(rand.NewSource(seed)), swell: 0.6, target: 0.6}
}

func (r *rainNoise) Stream(samples [][2]float64) (int, bool) {
	const smoothing = 0.08
	for i := range samples {
		if r.until <= 0 {
			r.target = 0.45 + r.rng.Float64()*0.4
			r.until = SampleRate/2 + r.rng.Intn(SampleRate)
		}
		r.until--
		r.swell += (r.target - r.swell) * 0.00005

		if r.rng.Float64() < 0.0004 {
			r.drop = 0.3 + r.rng.Float64()*0.3
		}
		r.drop *= 0.995

		for ch := range 2 {
			white := r.rng.Float64()*2 - 1
			r.lp[ch] += (white - r.lp[ch]) * smoothing
			samples[i][ch] = r.lp[ch]*r.swell*2 + r.drop*(r.rng.Float64()*2-1)*0.5
		}
	}
	return len(samples), true
}

func (r *rainNoise) Err() error { return nil }

// RainStreamer is the synthesized rain used when no track is configured.
func RainStreamer(seed int64) beep.Streamer {
	return &effects.Volume{Streamer: newRainNoise(seed), Base: 2, Volume: -1}
}
