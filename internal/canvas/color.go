package canvas

import (
	"fmt"
	"os"
	"strings"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Profile is the colour depth ANSI output is reduced to.
type Profile uint8

const (
	ProfileNone Profile = iota
	ProfileANSI16
	ProfileANSI256
	ProfileTrueColor
)

var (
	profileOnce sync.Once
	detected    Profile
	seqCache    sync.Map
)

// DetectProfile inspects NO_COLOR, COLORTERM and TERM once per process.
func DetectProfile() Profile {
	profileOnce.Do(func() {
		detected = profileFromEnv(os.LookupEnv)
	})
	return detected
}

func profileFromEnv(lookup func(string) (string, bool)) Profile {
	if _, disabled := lookup("NO_COLOR"); disabled {
		return ProfileNone
	}
	term, _ := lookup("TERM")
	colorTerm, _ := lookup("COLORTERM")
	term = strings.ToLower(term)
	colorTerm = strings.ToLower(colorTerm)
	switch {
	case strings.Contains(colorTerm, "truecolor"), strings.Contains(colorTerm, "24bit"):
		return ProfileTrueColor
	case strings.Contains(term, "256color"):
		return ProfileANSI256
	case term == "", term == "dumb":
		return ProfileNone
	default:
		return ProfileANSI16
	}
}

var ansi16 = []colorful.Color{
	{R: 0, G: 0, B: 0},
	{R: 205.0 / 255, G: 49.0 / 255, B: 49.0 / 255},
	{R: 13.0 / 255, G: 188.0 / 255, B: 121.0 / 255},
	{R: 229.0 / 255, G: 229.0 / 255, B: 16.0 / 255},
	{R: 36.0 / 255, G: 114.0 / 255, B: 200.0 / 255},
	{R: 188.0 / 255, G: 63.0 / 255, B: 188.0 / 255},
	{R: 17.0 / 255, G: 168.0 / 255, B: 205.0 / 255},
	{R: 229.0 / 255, G: 229.0 / 255, B: 229.0 / 255},
}

type ansiState struct {
	profile Profile
	current uint32
}

func newANSIState(p Profile) ansiState {
	return ansiState{profile: p, current: ^uint32(0)}
}

func (s *ansiState) set(sb *strings.Builder, c colorful.Color) {
	if s.profile == ProfileNone {
		return
	}
	r, g, b := c.Clamped().RGB255()
	key := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if key == s.current {
		return
	}
	sb.WriteString(colorSequence(s.profile, c))
	s.current = key
}

func (s *ansiState) reset(sb *strings.Builder) {
	if s.profile == ProfileNone || s.current == ^uint32(0) {
		return
	}
	sb.WriteString("\x1b[0m")
	s.current = ^uint32(0)
}

func colorSequence(profile Profile, c colorful.Color) string {
	c = c.Clamped()
	r, g, b := c.RGB255()
	key := uint32(profile)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	if seq, ok := seqCache.Load(key); ok {
		return seq.(string)
	}

	var seq string
	switch profile {
	case ProfileTrueColor:
		seq = fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
	case ProfileANSI256:
		idx := 16 + 36*(int(r)*5/255) + 6*(int(g)*5/255) + int(b)*5/255
		seq = fmt.Sprintf("\x1b[38;5;%dm", idx)
	case ProfileANSI16:
		// Nearest by perceived distance; pure black maps to bright black so
		// faint trails stay visible on dark terminals.
		best, bestDist := 0, 1e9
		for i, p := range ansi16 {
			if d := c.DistanceLab(p); d < bestDist {
				best, bestDist = i, d
			}
		}
		if best == 0 {
			seq = "\x1b[90m"
		} else {
			seq = fmt.Sprintf("\x1b[%dm", 30+best)
		}
	}

	seqCache.Store(key, seq)
	return seq
}
