// Package reveal scrambles text and uncovers it left to right over a fixed
// duration.
package reveal

import (
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// Placeholder holds the runes shown in place of not-yet-revealed letters.
const Placeholder = "01░▒▓█▄▀■□▣▢@#*%$!?;:+=-_&^~"

var placeholderRunes = []rune(Placeholder)

// DefaultDuration is how long a content box takes to uncover.
const DefaultDuration = 1000 * time.Millisecond

// Frame returns text with its first floor(n*p) runes uncovered. Remaining
// letters and digits are replaced by fresh placeholder runes on every call;
// spaces and punctuation stay put so the layout does not jump.
func Frame(text string, p float64, rng *rand.Rand) string {
	if p >= 1 {
		return text
	}
	if p < 0 {
		p = 0
	}
	runes := []rune(text)
	shown := int(math.Floor(float64(len(runes)) * p))

	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		if i < shown || !scrambled(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(placeholderRunes[rng.Intn(len(placeholderRunes))])
	}
	return b.String()
}

func scrambled(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Effect uncovers one piece of text starting at Start.
type Effect struct {
	Text     string
	Duration time.Duration
	Start    time.Time
}

// New starts an effect for text at now.
func New(text string, d time.Duration, now time.Time) Effect {
	return Effect{Text: text, Duration: d, Start: now}
}

// Progress is the uncovered fraction at now, in [0,1].
func (e Effect) Progress(now time.Time) float64 {
	if e.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(e.Start)) / float64(e.Duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Done reports whether the text is fully uncovered at now.
func (e Effect) Done(now time.Time) bool { return e.Progress(now) >= 1 }

// View renders the effect at now. Once done it returns the text unchanged.
func (e Effect) View(now time.Time, rng *rand.Rand) string {
	p := e.Progress(now)
	if p >= 1 {
		return e.Text
	}
	return Frame(e.Text, p, rng)
}
