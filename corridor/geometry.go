package corridor

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// rectBound builds an orb.Bound from an origin-and-size rectangle.
func rectBound(x, y, width, height float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{x, y},
		Max: orb.Point{x + width, y + height},
	}
}

// rectRing builds a closed 4-point ring for an axis-aligned rectangle,
// counter-clockwise starting at the min corner.
func rectRing(x, y, width, height float64) orb.Ring {
	return orb.Ring{
		{x, y},
		{x + width, y},
		{x + width, y + height},
		{x, y + height},
		{x, y},
	}
}

// boundsOverlap reports whether two bounds share interior area. Touching
// edges do not count as overlap, so corridors may sit flush against each
// other or against a zone.
func boundsOverlap(a, b orb.Bound) bool {
	return a.Min[0] < b.Max[0] && b.Min[0] < a.Max[0] &&
		a.Min[1] < b.Max[1] && b.Min[1] < a.Max[1]
}

// boundsNear reports whether two bounds overlap or have parallel edges
// within tol of each other. This is the merge-adjacency test: expanding one
// bound by tol and checking closed-interval intersection covers both cases.
func boundsNear(a, b orb.Bound, tol float64) bool {
	return a.Min[0]-tol <= b.Max[0] && b.Min[0]-tol <= a.Max[0] &&
		a.Min[1]-tol <= b.Max[1] && b.Min[1]-tol <= a.Max[1]
}

// boundsUnion returns the smallest bound covering both inputs.
func boundsUnion(a, b orb.Bound) orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(a.Min[0], b.Min[0]), math.Min(a.Min[1], b.Min[1])},
		Max: orb.Point{math.Max(a.Max[0], b.Max[0]), math.Max(a.Max[1], b.Max[1])},
	}
}

// intersectionArea returns the area of the overlap between two bounds,
// or zero when they do not overlap.
func intersectionArea(a, b orb.Bound) float64 {
	w := math.Min(a.Max[0], b.Max[0]) - math.Max(a.Min[0], b.Min[0])
	h := math.Min(a.Max[1], b.Max[1]) - math.Max(a.Min[1], b.Min[1])
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// zonePolygonArea returns the planar area of a zone polygon, zero for
// degenerate polygons.
func zonePolygonArea(z Zone) float64 {
	if len(z.Polygon) < 3 {
		return 0
	}
	ring := make(orb.Ring, len(z.Polygon))
	for i, c := range z.Polygon {
		ring[i] = orb.Point{c[0], c[1]}
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return math.Abs(planar.Area(ring))
}

// roundTo rounds v to the given number of decimal places. Deduplication
// keys use fixed-precision rounding instead of exact float comparison to
// absorb accumulated drift.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// finiteRect reports whether a rectangle's coordinates are all finite.
func finiteRect(x, y, width, height float64) bool {
	for _, v := range [4]float64{x, y, width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
