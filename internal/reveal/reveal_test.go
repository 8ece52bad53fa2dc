package reveal

import (
	"math/rand"
	"strings"
	"testing"
	"time"
)

func TestFrameRevealsLeadingRunes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	start := time.Unix(0, 0)
	e := New("HELLO", 1000*time.Millisecond, start)

	got := []rune(e.View(start.Add(400*time.Millisecond), rng))
	if len(got) != 5 {
		t.Fatalf("expected 5 runes, got %d (%q)", len(got), string(got))
	}
	if string(got[:2]) != "HE" {
		t.Fatalf("expected leading %q, got %q", "HE", string(got[:2]))
	}
	for i, r := range got[2:] {
		if !strings.ContainsRune(Placeholder, r) {
			t.Fatalf("rune %d = %q is not a placeholder", i+2, r)
		}
	}
}

func TestFrameKeepsWhitespace(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	got := []rune(Frame("go is fun", 0, rng))
	for _, i := range []int{2, 5} {
		if got[i] != ' ' {
			t.Fatalf("expected space at %d, got %q", i, got[i])
		}
	}
}

func TestFrameFlickersBetweenCalls(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	text := strings.Repeat("abcdefgh", 4)
	first := Frame(text, 0.1, rng)
	second := Frame(text, 0.1, rng)
	if first == second {
		t.Fatal("expected the unrevealed tail to change between frames")
	}
}

func TestFrameComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	if got := Frame("done", 1, rng); got != "done" {
		t.Fatalf("Frame(p=1) = %q", got)
	}
	if got := Frame("done", 1.5, rng); got != "done" {
		t.Fatalf("Frame(p=1.5) = %q", got)
	}
}

func TestFrameHandlesMultibyteText(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	got := []rune(Frame("héllo wörld", 0.5, rng))
	if len(got) != 11 {
		t.Fatalf("expected 11 runes, got %d", len(got))
	}
	if string(got[:5]) != "héllo" {
		t.Fatalf("expected %q revealed, got %q", "héllo", string(got[:5]))
	}
}

func TestEffectProgress(t *testing.T) {
	start := time.Unix(10, 0)
	e := New("x", time.Second, start)
	cases := []struct {
		at   time.Duration
		want float64
	}{
		{-time.Second, 0},
		{0, 0},
		{250 * time.Millisecond, 0.25},
		{time.Second, 1},
		{5 * time.Second, 1},
	}
	for _, tc := range cases {
		if got := e.Progress(start.Add(tc.at)); got != tc.want {
			t.Fatalf("Progress(%v) = %v, want %v", tc.at, got, tc.want)
		}
	}
	if e.Done(start.Add(999 * time.Millisecond)) {
		t.Fatal("expected effect to still be running")
	}
	if !e.Done(start.Add(time.Second)) {
		t.Fatal("expected effect to be done")
	}
}

func TestEffectZeroDurationIsImmediate(t *testing.T) {
	e := New("instant", 0, time.Unix(0, 0))
	if got := e.View(time.Unix(0, 0), nil); got != "instant" {
		t.Fatalf("expected immediate text, got %q", got)
	}
}
