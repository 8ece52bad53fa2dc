package field

import "math"

// Stroke is a reusable point buffer backing one arc's curve.
type Stroke struct {
	Points []Vec3
	live   bool
}

// strokePool recycles stroke buffers so arcs spawned every few frames do not
// reallocate their curves.
type strokePool struct {
	free []*Stroke
	live int
}

func (p *strokePool) get(n int) *Stroke {
	var s *Stroke
	if k := len(p.free); k > 0 {
		s = p.free[k-1]
		p.free = p.free[:k-1]
	} else {
		s = &Stroke{}
	}
	if cap(s.Points) < n {
		s.Points = make([]Vec3, n)
	}
	s.Points = s.Points[:n]
	s.live = true
	p.live++
	return s
}

func (p *strokePool) put(s *Stroke) {
	if s == nil || !s.live {
		return
	}
	s.live = false
	p.live--
	p.free = append(p.free, s)
}

// ArcHeight is how far the midpoint of an arc between a and b rises above a
// sphere of the given radius. Wider separations bulge further.
func ArcHeight(a, b Vec3, radius, lift float64) float64 {
	angle := angleBetween(a, b)
	h := radius * lift * angle / math.Pi
	return math.Max(h, radius*0.05)
}

func angleBetween(a, b Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// controlPoint lifts the chord midpoint of a and b to radius+height.
func controlPoint(a, b Vec3, radius, height float64) Vec3 {
	mid := a.Add(b).Scale(0.5)
	dir := mid.Normalize()
	if mid.Len() < 1e-9 {
		// Antipodal endpoints: any direction perpendicular to a works.
		dir = a.Cross(Vec3{Y: 1})
		if dir.Len() < 1e-9 {
			dir = a.Cross(Vec3{X: 1})
		}
		dir = dir.Normalize()
	}
	return dir.Scale(radius + height)
}

// SampleArc fills out with the quadratic Bézier from a to b bulging away from
// the sphere. len(out) decides the sample count; out[0] is a and the last
// point is b. The result depends only on the inputs.
func SampleArc(out []Vec3, a, b Vec3, radius, lift float64) []Vec3 {
	n := len(out)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = a
		return out
	}
	c := controlPoint(a, b, radius, ArcHeight(a, b, radius, lift))
	segments := float64(n - 1)
	for i := range out {
		t := float64(i) / segments
		u := 1 - t
		out[i] = a.Scale(u * u).Add(c.Scale(2 * u * t)).Add(b.Scale(t * t))
	}
	out[0] = a
	out[n-1] = b
	return out
}

// VisibleSlice appends to out the part of the polyline between the fractional
// positions from and to (both in [0,1]), interpolating the cut ends.
func VisibleSlice(out, points []Vec3, from, to float64) []Vec3 {
	n := len(points)
	if n < 2 {
		return out
	}
	from, to = clamp01(from), clamp01(to)
	if to <= from {
		return out
	}
	segments := float64(n - 1)
	at := func(f float64) Vec3 {
		pos := f * segments
		i := int(pos)
		if i >= n-1 {
			return points[n-1]
		}
		return points[i].Lerp(points[i+1], pos-float64(i))
	}

	out = append(out, at(from))
	first := int(math.Floor(from*segments)) + 1
	last := int(math.Ceil(to*segments)) - 1
	for i := first; i <= last && i < n; i++ {
		out = append(out, points[i])
	}
	return append(out, at(to))
}
