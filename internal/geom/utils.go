package geom

import (
	"math"
	"math/rand/v2"
)

// vequalEpsilon is the squared distance below which two points are the same
// funnel vertex.
const vequalEpsilon = 0.00001

// polygonHeightTolerance is how far above or below a polygon a point may be
// and still count as standing on it.
const polygonHeightTolerance = 0.5

// DistanceToSquared returns the squared distance between a and b.
func DistanceToSquared(a, b Vector3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// Equal reports whether a and b are close enough to be the same vertex.
func Equal(a, b Vector3) bool {
	return DistanceToSquared(a, b) < vequalEpsilon
}

// TriArea2 returns twice the signed XZ area of triangle abc.
// Positive means abc is wound upward-facing (normal +Y); it also tells on
// which side of line ab the point c lies.
func TriArea2(a, b, c Vector3) float64 {
	ax := b.X - a.X
	az := b.Z - a.Z
	bx := c.X - a.X
	bz := c.Z - a.Z
	return bx*az - ax*bz
}

// Area returns the unsigned 3D area of triangle abc.
func Area(a, b, c Vector3) float64 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	cx := ab.Y*ac.Z - ab.Z*ac.Y
	cy := ab.Z*ac.X - ab.X*ac.Z
	cz := ab.X*ac.Y - ab.Y*ac.X
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// IsLeft reports whether c is strictly left of the directed line a→b when
// looking down from +Y.
func IsLeft(a, b, c Vector3) bool {
	return TriArea2(a, b, c) > 0
}

// IsRight reports whether c is strictly right of the directed line a→b.
func IsRight(a, b, c Vector3) bool {
	return TriArea2(a, b, c) < 0
}

// PointInPoly is the even-odd crossing test on the XZ plane.
// Points on the +X/+Z boundary edges count as outside.
func PointInPoly(poly []Vector3, pt Vector3) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Z <= pt.Z && pt.Z < pj.Z) || (pj.Z <= pt.Z && pt.Z < pi.Z) {
			if pt.X < (pj.X-pi.X)*(pt.Z-pi.Z)/(pj.Z-pi.Z)+pi.X {
				inside = !inside
			}
		}
	}
	return inside
}

// IsVectorInPolygon reports whether v lies over the polygon on XZ and within
// the polygon's vertical span (plus a small tolerance).
func IsVectorInPolygon(v Vector3, poly []Vector3) bool {
	if len(poly) == 0 {
		return false
	}
	lowest := math.Inf(1)
	highest := math.Inf(-1)
	for _, p := range poly {
		lowest = math.Min(lowest, p.Y)
		highest = math.Max(highest, p.Y)
	}
	if v.Y >= highest+polygonHeightTolerance || v.Y <= lowest-polygonHeightTolerance {
		return false
	}
	return PointInPoly(poly, v)
}

// Centroid returns the average of the given points.
func Centroid(points ...Vector3) Vector3 {
	var c Vector3
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(len(points)))
}

// RandomPointInTriangle samples a uniformly distributed point on triangle
// abc using barycentric coordinates.
func RandomPointInTriangle(rng *rand.Rand, a, b, c Vector3) Vector3 {
	u := rng.Float64()
	v := rng.Float64()
	if u+v > 1 {
		u = 1 - u
		v = 1 - v
	}
	return a.Add(b.Sub(a).Scale(u)).Add(c.Sub(a).Scale(v))
}

// ClosestPointOnTriangle returns the point of triangle abc closest to p.
func ClosestPointOnTriangle(p, a, b, c Vector3) Vector3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Scale(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Scale(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).Scale((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// Sample returns a random element of items, or the zero value and false when
// items is empty.
func Sample[T any](rng *rand.Rand, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[rng.IntN(len(items))], true
}
