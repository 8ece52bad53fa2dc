package field

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/charmbracelet/harmonica"
)

// GlobeConfig tunes the orbiting network. Speeds, spin and delays expressed
// in frames are per reference frame.
type GlobeConfig struct {
	NodeCount    int
	HubCount     int
	Radius       float64
	ArcSegments  int
	ArcLift      float64
	HubLinks     [2]int // min, max backbone arcs per hub
	RegularLinks [2]int // min, max fan-out arcs per hub
	MinSpeed     float64
	MaxSpeed     float64
	TailDelay    float64
	SpawnDelay   time.Duration
	SpinRate     float64
	MaxSpin      float64
	Tilt         float64
	MaxArcs      int
}

// DefaultGlobeConfig matches the site background.
func DefaultGlobeConfig() GlobeConfig {
	return GlobeConfig{
		NodeCount:    80,
		HubCount:     12,
		Radius:       1,
		ArcSegments:  20,
		ArcLift:      0.6,
		HubLinks:     [2]int{2, 3},
		RegularLinks: [2]int{3, 5},
		MinSpeed:     0.008,
		MaxSpeed:     0.016,
		TailDelay:    40,
		SpawnDelay:   800 * time.Millisecond,
		SpinRate:     0.004,
		MaxSpin:      0.03,
		Tilt:         0.35,
		MaxArcs:      160,
	}
}

// Node is a fixed point on the sphere surface.
type Node struct {
	Pos Vec3
	Hub bool
}

// Arc is an animated connection from node From to node To. Head and Tail are
// the fractions of the curve already drawn and already erased.
type Arc struct {
	From, To int
	Points   []Vec3
	Head     float64
	Tail     float64
	Speed    float64
	Age      float64
	Done     bool
	Backbone bool

	stroke *Stroke
}

type globe struct {
	cfg   GlobeConfig
	rng   *rand.Rand
	pool  *strokePool
	nodes []Node
	arcs  []*Arc
	spare []*Arc

	events eventQueue
	due    []spawnEvent

	spring   harmonica.Spring
	angle    float64
	rate     float64
	rateVel  float64
	target   float64
	spinAcc  float64
	cx, cy   float64
	scale    float64
	order    []int
	sliceBuf []Vec3
}

func newGlobe(cfg GlobeConfig, rng *rand.Rand, pool *strokePool) *globe {
	return &globe{
		cfg:    cfg,
		rng:    rng,
		pool:   pool,
		spring: harmonica.NewSpring(harmonica.FPS(60), 4.0, 1.0),
		rate:   cfg.SpinRate,
		target: cfg.SpinRate,
	}
}

func (g *globe) reset(width, height float64) {
	g.release()
	g.cx, g.cy = width/2, height/2
	g.scale = 0.42 * math.Min(width, height) / g.cfg.Radius
	g.nodes = sampleSphere(g.rng, g.cfg.NodeCount, g.cfg.HubCount, g.cfg.Radius)
	g.seed()
}

// sampleSphere places n points uniformly on a sphere; the first hubs are hubs.
func sampleSphere(rng *rand.Rand, n, hubs int, radius float64) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		y := 2*rng.Float64() - 1
		phi := 2 * math.Pi * rng.Float64()
		r := math.Sqrt(1 - y*y)
		nodes[i] = Node{
			Pos: Vec3{X: r * math.Cos(phi), Y: y, Z: r * math.Sin(phi)}.Scale(radius),
			Hub: i < hubs,
		}
	}
	return nodes
}

// seed connects every hub to its nearest hubs and nearest regular nodes.
func (g *globe) seed() {
	for h := range g.nodes {
		if !g.nodes[h].Hub {
			continue
		}
		order := g.nearest(h)
		wantHubs := between(g.rng, g.cfg.HubLinks)
		wantRegular := between(g.rng, g.cfg.RegularLinks)
		hubs, regular := 0, 0
		for _, j := range order {
			if hubs >= wantHubs && regular >= wantRegular {
				break
			}
			if j == h || j < 0 || j >= len(g.nodes) {
				continue
			}
			if g.nodes[j].Hub {
				if hubs < wantHubs && g.addArc(h, j) {
					hubs++
				}
			} else if regular < wantRegular && g.addArc(h, j) {
				regular++
			}
		}
	}
}

// nearest returns every other node index ordered by distance from node i.
func (g *globe) nearest(i int) []int {
	g.order = g.order[:0]
	for j := range g.nodes {
		if j != i {
			g.order = append(g.order, j)
		}
	}
	origin := g.nodes[i].Pos
	sort.SliceStable(g.order, func(a, b int) bool {
		return origin.Dist(g.nodes[g.order[a]].Pos) < origin.Dist(g.nodes[g.order[b]].Pos)
	})
	return g.order
}

func between(rng *rand.Rand, bounds [2]int) int {
	lo, hi := bounds[0], bounds[1]
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func (g *globe) valid(i int) bool { return i >= 0 && i < len(g.nodes) }

// addArc starts a new arc between two nodes, reusing a spare record.
func (g *globe) addArc(from, to int) bool {
	if from == to || !g.valid(from) || !g.valid(to) {
		return false
	}
	if g.cfg.MaxArcs > 0 && len(g.arcs) >= g.cfg.MaxArcs {
		return false
	}

	var arc *Arc
	if k := len(g.spare); k > 0 {
		arc = g.spare[k-1]
		g.spare = g.spare[:k-1]
	} else {
		arc = &Arc{}
	}
	stroke := g.pool.get(g.cfg.ArcSegments + 1)
	a, b := g.nodes[from], g.nodes[to]
	*arc = Arc{
		From:     from,
		To:       to,
		Points:   SampleArc(stroke.Points, a.Pos, b.Pos, g.cfg.Radius, g.cfg.ArcLift),
		Speed:    g.cfg.MinSpeed + g.rng.Float64()*(g.cfg.MaxSpeed-g.cfg.MinSpeed),
		Backbone: a.Hub && b.Hub,
		stroke:   stroke,
	}
	g.arcs = append(g.arcs, arc)
	return true
}

// spawnFrom launches a replacement arc from node toward a random other node.
func (g *globe) spawnFrom(node int) {
	if !g.valid(node) || len(g.nodes) < 2 {
		return
	}
	to := g.rng.Intn(len(g.nodes) - 1)
	if to >= node {
		to++
	}
	g.addArc(node, to)
}

func (g *globe) step(now time.Time, frames float64) {
	g.due = g.events.drain(now, g.due[:0])

	if frames > 0 {
		for _, arc := range g.arcs {
			g.advance(arc, now, frames)
		}
		g.spin(frames)
	}

	for _, ev := range g.due {
		g.spawnFrom(ev.node)
	}

	kept := g.arcs[:0]
	for _, arc := range g.arcs {
		if arc.Tail >= 1 {
			g.retire(arc)
			continue
		}
		kept = append(kept, arc)
	}
	for i := len(kept); i < len(g.arcs); i++ {
		g.arcs[i] = nil
	}
	g.arcs = kept
}

func (g *globe) advance(arc *Arc, now time.Time, frames float64) {
	arc.Age += frames
	arc.Head = math.Min(1, arc.Head+arc.Speed*frames)
	if arc.Age >= g.cfg.TailDelay {
		arc.Tail = math.Min(arc.Head, arc.Tail+arc.Speed*frames)
	}
	if arc.Head >= 1 && !arc.Done {
		arc.Done = true
		delay := time.Duration(float64(g.cfg.SpawnDelay) * (0.5 + g.rng.Float64()))
		g.events.schedule(now.Add(delay), arc.To)
	}
}

func (g *globe) retire(arc *Arc) {
	g.pool.put(arc.stroke)
	arc.stroke = nil
	arc.Points = nil
	g.spare = append(g.spare, arc)
}

// spin eases the rotation rate toward its target one reference frame at a
// time and turns the globe.
func (g *globe) spin(frames float64) {
	g.spinAcc += frames
	for g.spinAcc >= 1 {
		g.rate, g.rateVel = g.spring.Update(g.rate, g.rateVel, g.target)
		g.spinAcc--
	}
	g.angle = math.Mod(g.angle+g.rate*frames, 2*math.Pi)
}

func (g *globe) nudge(delta float64) {
	g.target = math.Max(-g.cfg.MaxSpin, math.Min(g.cfg.MaxSpin, g.target+delta))
}

func (g *globe) project(p Vec3) (x, y, depth float64) {
	q := p.rotateY(g.angle).rotateX(g.cfg.Tilt)
	return g.cx + q.X*g.scale, g.cy - q.Y*g.scale, q.Z
}

var (
	rimColor     = Color{R: 70, G: 40, B: 90, A: 0.6}
	hubColor     = Color{R: 255, G: 105, B: 180}
	nodeColor    = Color{R: 150, G: 120, B: 200}
	backboneArc  = Color{R: 255, G: 20, B: 147}
	regularArc   = Color{R: 180, G: 0, B: 255}
	arcHeadColor = Color{R: 255, G: 220, B: 240, A: 1}
)

func (g *globe) draw(s Surface, now time.Time) {
	s.Fade(1)

	r := g.cfg.Radius * g.scale
	const rimDots = 96
	for i := 0; i < rimDots; i++ {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / rimDots)
		s.Dot(g.cx+cos*r, g.cy+sin*r, rimColor)
	}

	for _, n := range g.nodes {
		x, y, depth := g.project(n.Pos)
		c := nodeColor
		if n.Hub {
			c = hubColor
		}
		alpha := 0.9
		if depth < 0 {
			alpha = 0.25
		}
		s.Dot(x, y, c.WithAlpha(alpha))
	}

	for _, arc := range g.arcs {
		if !g.valid(arc.From) || !g.valid(arc.To) {
			continue
		}
		g.sliceBuf = VisibleSlice(g.sliceBuf[:0], arc.Points, arc.Tail, arc.Head)
		if len(g.sliceBuf) < 2 {
			continue
		}
		c, base := regularArc, 0.55
		if arc.Backbone {
			c, base = backboneArc, 0.9
		}
		px, py, pd := g.project(g.sliceBuf[0])
		for _, p := range g.sliceBuf[1:] {
			x, y, d := g.project(p)
			alpha := base
			if (pd+d)/2 < 0 {
				alpha *= 0.35
			}
			s.Line(px, py, x, y, c.WithAlpha(alpha))
			px, py, pd = x, y, d
		}
		if !arc.Done {
			s.Dot(px, py, arcHeadColor)
		}
	}
}

func (g *globe) release() {
	for i, arc := range g.arcs {
		g.pool.put(arc.stroke)
		arc.stroke = nil
		g.arcs[i] = nil
	}
	g.arcs = g.arcs[:0]
	g.spare = g.spare[:0]
	g.events.clear()
	g.due = g.due[:0]
}
