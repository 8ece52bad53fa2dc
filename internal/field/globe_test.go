package field

import (
	"math"
	"testing"
	"time"
)

func newGlobeFor(t *testing.T, seed int64) (*Animator, *globe, *countingSurface) {
	t.Helper()
	s := &countingSurface{w: 640, h: 480}
	a := New(KindGlobe, WithSeed(seed))
	a.Initialize(s)
	g, ok := a.sim.(*globe)
	if !ok {
		t.Fatalf("expected globe simulation, got %T", a.sim)
	}
	return a, g, s
}

func TestGlobeNodesOnSphere(t *testing.T) {
	_, g, _ := newGlobeFor(t, 1)
	if len(g.nodes) != 80 {
		t.Fatalf("expected 80 nodes, got %d", len(g.nodes))
	}
	hubs := 0
	for i, n := range g.nodes {
		if math.Abs(n.Pos.Len()-1) > 1e-9 {
			t.Fatalf("node %d off the sphere: |p| = %v", i, n.Pos.Len())
		}
		if n.Hub {
			hubs++
		}
	}
	if hubs != 12 {
		t.Fatalf("expected 12 hubs, got %d", hubs)
	}
}

func TestGlobeSeedingLinksEachHub(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		_, g, _ := newGlobeFor(t, seed)
		hubLinks := map[int]int{}
		regularLinks := map[int]int{}
		for _, arc := range g.arcs {
			if arc.From == arc.To {
				t.Fatalf("seed %d: arc connects node %d to itself", seed, arc.From)
			}
			if !g.nodes[arc.From].Hub {
				t.Fatalf("seed %d: seeded arc starts at regular node %d", seed, arc.From)
			}
			if g.nodes[arc.To].Hub {
				hubLinks[arc.From]++
				if !arc.Backbone {
					t.Fatalf("seed %d: hub-to-hub arc not marked backbone", seed)
				}
			} else {
				regularLinks[arc.From]++
			}
		}
		for i, n := range g.nodes {
			if !n.Hub {
				continue
			}
			if c := hubLinks[i]; c < 2 || c > 3 {
				t.Fatalf("seed %d: hub %d has %d hub arcs, want 2..3", seed, i, c)
			}
			if c := regularLinks[i]; c < 3 || c > 5 {
				t.Fatalf("seed %d: hub %d has %d regular arcs, want 3..5", seed, i, c)
			}
		}
	}
}

func TestGlobeSeedingPrefersNearestHubs(t *testing.T) {
	_, g, _ := newGlobeFor(t, 4)
	for _, arc := range g.arcs {
		if !arc.Backbone {
			continue
		}
		from := g.nodes[arc.From].Pos
		d := from.Dist(g.nodes[arc.To].Pos)
		closer := 0
		for j, n := range g.nodes {
			if j != arc.From && n.Hub && from.Dist(n.Pos) < d {
				closer++
			}
		}
		if closer > 2 {
			t.Fatalf("backbone arc %d->%d skips %d nearer hubs", arc.From, arc.To, closer)
		}
	}
}

func TestGlobeTailNeverPassesHead(t *testing.T) {
	a, g, _ := newGlobeFor(t, 5)
	for i := 0; i < 1500; i++ {
		a.Step(frame(i))
		for _, arc := range g.arcs {
			if arc.Tail > arc.Head {
				t.Fatalf("frame %d: tail %v ahead of head %v", i, arc.Tail, arc.Head)
			}
			if arc.Head < 0 || arc.Head > 1 || arc.Tail < 0 || arc.Tail > 1 {
				t.Fatalf("frame %d: progress out of range head=%v tail=%v", i, arc.Head, arc.Tail)
			}
			if arc.Tail >= 1 {
				t.Fatalf("frame %d: finished arc %d->%d still active", i, arc.From, arc.To)
			}
		}
	}
}

func TestGlobeCompletedArcsSpawnReplacements(t *testing.T) {
	a, g, _ := newGlobeFor(t, 6)
	seeded := len(g.arcs)
	// Long enough for every seeded arc to finish several times over.
	for i := 0; i < 2400; i++ {
		a.Step(frame(i))
	}
	if len(g.arcs) == 0 {
		t.Fatal("expected replacement arcs to keep the network alive")
	}
	// A finished arc lingers while its replacement is already growing.
	if len(g.arcs) > 2*seeded || len(g.arcs) > g.cfg.MaxArcs {
		t.Fatalf("expected population to stay bounded near %d, got %d", seeded, len(g.arcs))
	}
	if a.LiveResources() != len(g.arcs) {
		t.Fatalf("expected one stroke per arc, got %d strokes for %d arcs", a.LiveResources(), len(g.arcs))
	}
}

func TestGlobeZeroElapsedChangesNothing(t *testing.T) {
	a, g, _ := newGlobeFor(t, 7)
	var now time.Time
	for i := 0; i < 200; i++ {
		now = frame(i)
		a.Step(now)
	}
	type progress struct{ head, tail, age float64 }
	before := make([]progress, len(g.arcs))
	for i, arc := range g.arcs {
		before[i] = progress{arc.Head, arc.Tail, arc.Age}
	}
	angle := g.angle

	a.Step(now)
	if len(g.arcs) != len(before) {
		t.Fatalf("expected %d arcs, got %d", len(before), len(g.arcs))
	}
	for i, arc := range g.arcs {
		if got := (progress{arc.Head, arc.Tail, arc.Age}); got != before[i] {
			t.Fatalf("arc %d progressed with zero elapsed time: %+v -> %+v", i, before[i], got)
		}
	}
	if g.angle != angle {
		t.Fatalf("globe rotated with zero elapsed time: %v -> %v", angle, g.angle)
	}
}

func TestGlobeSpawnSkipsUnknownNode(t *testing.T) {
	_, g, _ := newGlobeFor(t, 8)
	n := len(g.arcs)
	g.spawnFrom(-1)
	g.spawnFrom(len(g.nodes))
	if len(g.arcs) != n {
		t.Fatalf("expected out-of-range spawns to be skipped, arcs %d -> %d", n, len(g.arcs))
	}
	g.spawnFrom(0)
	if len(g.arcs) != n+1 {
		t.Fatalf("expected spawn from node 0 to add an arc, got %d", len(g.arcs))
	}
	if last := g.arcs[len(g.arcs)-1]; last.From != 0 || last.To == 0 {
		t.Fatalf("unexpected spawned arc %d->%d", last.From, last.To)
	}
}

func TestGlobeResourcesReleasedOnResizeAndTeardown(t *testing.T) {
	a, g, s := newGlobeFor(t, 9)
	seeded := len(g.arcs)
	if seeded == 0 || a.LiveResources() != seeded {
		t.Fatalf("expected %d live strokes, got %d", seeded, a.LiveResources())
	}

	s.w, s.h = 320, 200
	a.Initialize(s)
	g2 := a.sim.(*globe)
	if a.LiveResources() != len(g2.arcs) {
		t.Fatalf("expected resize to release old strokes, live=%d arcs=%d", a.LiveResources(), len(g2.arcs))
	}

	a.Teardown()
	if a.LiveResources() != 0 {
		t.Fatalf("expected no live strokes after teardown, got %d", a.LiveResources())
	}
	a.Teardown()
}

func TestGlobeNudgeEasesSpin(t *testing.T) {
	a, g, _ := newGlobeFor(t, 10)
	a.Step(frame(0))
	a.Nudge(0.01)
	a.Step(frame(1))
	if g.rate >= g.target {
		t.Fatalf("expected spin rate to ease toward target, rate=%v target=%v", g.rate, g.target)
	}
	for i := 2; i < 400; i++ {
		a.Step(frame(i))
	}
	if math.Abs(g.rate-g.target) > 1e-4 {
		t.Fatalf("expected spin rate to settle at %v, got %v", g.target, g.rate)
	}

	a.Nudge(10)
	if g.target != g.cfg.MaxSpin {
		t.Fatalf("expected target clamped to %v, got %v", g.cfg.MaxSpin, g.target)
	}
}

func TestGlobeDrawsArcsAndNodes(t *testing.T) {
	a, _, s := newGlobeFor(t, 11)
	for i := 0; i < 30; i++ {
		a.Step(frame(i))
	}
	if s.lines == 0 {
		t.Fatal("expected arc segments to be drawn")
	}
	if s.dots < 80 {
		t.Fatalf("expected at least one dot per node, got %d", s.dots)
	}
}
