package ambience

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
)

func TestFFTImpulseIsFlat(t *testing.T) {
	re := make([]float64, 16)
	im := make([]float64, 16)
	re[0] = 1
	fft(re, im)
	for i := range re {
		if mag := math.Hypot(re[i], im[i]); math.Abs(mag-1) > 1e-9 {
			t.Fatalf("bin %d magnitude = %v, want 1", i, mag)
		}
	}
}

func sinePCM(bin, frames int) []byte {
	var buf bytes.Buffer
	for i := range frames {
		v := int16(16000 * math.Sin(2*math.Pi*float64(bin)*float64(i)/meterFrames))
		binary.Write(&buf, binary.LittleEndian, v)
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func TestMeterFindsTone(t *testing.T) {
	ring := newSampleRing(meterFrames)
	m := newMeter(ring, meterBands)

	if levels := m.Levels(); levels[0] != 0 || len(levels) != meterBands {
		t.Fatalf("expected silence before a full window, got %v", levels)
	}

	// Bin 100 lands in the band covering bins 64..127.
	if _, err := io.ReadAll(tap{r: bytes.NewReader(sinePCM(100, meterFrames)), ring: ring}); err != nil {
		t.Fatal(err)
	}
	levels := m.Levels()
	if levels[6] != 1 {
		t.Fatalf("expected the tone's band to peak, got %v", levels)
	}
	for b, v := range levels {
		if b != 6 && v > 0.5 {
			t.Fatalf("band %d = %v, expected well below the tone", b, v)
		}
	}
}

func TestSampleRingKeepsOddByte(t *testing.T) {
	ring := newSampleRing(2)
	ring.writePCM([]byte{0x34})
	ring.writePCM([]byte{0x12, 0xff, 0x7f})

	got := make([]int16, 2)
	ring.latest(got)
	if got[0] != 0x1234 || got[1] != 0x7fff {
		t.Fatalf("unexpected samples %#v", got)
	}
}
