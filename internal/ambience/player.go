// Package ambience plays an endlessly looping background soundtrack.
package ambience

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Stream is an endless PCM source with a display title.
type Stream struct {
	io.Reader
	Title string
	close func() error
}

// Close releases the underlying file, if any.
func (s *Stream) Close() error {
	if s.close == nil {
		return nil
	}
	err := s.close()
	s.close = nil
	return err
}

// OpenStream opens path as a looping track. An empty path yields the
// synthesized rain.
func OpenStream(path string) (*Stream, error) {
	if path == "" {
		return &Stream{Reader: newStreamReader(RainStreamer(time.Now().UnixNano())), Title: "rain"}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := openDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Stream{
		Reader: &loopReader{src: dec},
		Title:  TrackTitle(path),
		close:  f.Close,
	}, nil
}

var (
	otoCtx     *oto.Context
	otoOnce    sync.Once
	otoInitErr error
)

func initOto() (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return otoCtx, otoInitErr
}

// Player feeds a Stream to the audio device.
type Player struct {
	mu     sync.Mutex
	stream *Stream
	out    *oto.Player
	meter  *Meter
	volume float64
	muted  bool
	closed bool
}

// Start begins playback of s. The player owns s afterwards.
func Start(s *Stream, volume float64, muted bool) (*Player, error) {
	ctx, err := initOto()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("initialising audio: %w", err)
	}
	ring := newSampleRing(meterFrames)
	p := &Player{stream: s, volume: volume, muted: muted, meter: newMeter(ring, meterBands)}
	p.out = ctx.NewPlayer(tap{r: s, ring: ring})
	p.applyVolume()
	p.out.Play()
	return p, nil
}

func (p *Player) applyVolume() {
	if p.out == nil {
		return
	}
	v := p.volume
	if p.muted {
		v = 0
	}
	p.out.SetVolume(v)
}

// Title is the name of what is playing.
func (p *Player) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return ""
	}
	return p.stream.Title
}

// ToggleMute flips the mute state and returns the new one.
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	p.applyVolume()
	return p.muted
}

// Muted reports whether output is silenced.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Levels reports the spectrum of what was just played, one value in [0,1]
// per band.
func (p *Player) Levels() []float64 {
	if p.meter == nil {
		return nil
	}
	return p.meter.Levels()
}

// Close stops playback and releases the stream.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.out != nil {
		p.out.Pause()
		p.out.Close()
	}
	if p.stream != nil {
		p.stream.Close()
	}
}
