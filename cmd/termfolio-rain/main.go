// Command termfolio-rain runs the portfolio background full screen, drawn
// straight to the terminal with tcell.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lunarcatowo/termfolio/internal/canvas"
	"github.com/lunarcatowo/termfolio/internal/config"
	"github.com/lunarcatowo/termfolio/internal/field"
)

const nudgeStep = 0.004

type viewer struct {
	screen   tcell.Screen
	kind     field.Kind
	interval time.Duration
	anim     *field.Animator
	canvas   *canvas.Canvas
}

func newViewer(kind field.Kind, interval time.Duration) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	v := &viewer{screen: screen, kind: kind, interval: interval}
	v.anim = v.newAnimator()
	v.resize()
	return v, nil
}

func (v *viewer) newAnimator() *field.Animator {
	return field.New(v.kind, field.WithMaxStep(2*v.interval))
}

func (v *viewer) resize() {
	w, h := v.screen.Size()
	v.canvas = canvas.New(w, h)
	v.anim.Initialize(v.canvas)
	v.screen.Sync()
}

func (v *viewer) toggle() {
	v.anim.Teardown()
	v.kind = v.kind.Next()
	v.anim = v.newAnimator()
	v.canvas.Fade(1)
	v.anim.Initialize(v.canvas)
}

func (v *viewer) draw(now time.Time) {
	v.anim.Step(now)
	v.screen.Clear()
	v.canvas.Each(func(col, row int, cell canvas.Cell) {
		r, g, b := cell.Color.RGB255()
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
		v.screen.SetContent(col, row, cell.Rune(), nil, style)
	})
	v.screen.Show()
}

// handleEvent returns false when the viewer should exit.
func (v *viewer) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.anim.Nudge(-nudgeStep)
		case tcell.KeyRight:
			v.anim.Nudge(nudgeStep)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'b':
				v.toggle()
			}
		}
	case *tcell.EventResize:
		v.resize()
	}
	return true
}

func (v *viewer) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !v.handleEvent(ev) {
				return
			}
		case now := <-ticker.C:
			v.draw(now)
		}
	}
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	interval := cfg.FrameInterval()
	v, err := newViewer(cfg.Background, interval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	v.run(interval)
	v.anim.Teardown()
	v.screen.Fini()
}
