package corridor

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Quality score weights for facing-pair scoring. Distance and overlap carry
// most of the signal; alignment and density symmetry refine the ranking.
const (
	distanceWeight  = 0.35
	overlapWeight   = 0.35
	alignmentWeight = 0.20
	densityWeight   = 0.10
)

// gapFillRatio caps a recommended corridor's thickness at this fraction of
// the available gap between two facing rows.
const gapFillRatio = 0.8

// GroupIntoRows clusters ilots into horizontal rows. Ilots are sorted by
// vertical center and swept once: an ilot joins the running row when its
// center is within tolerance of the row's running average, otherwise the
// row is closed and a new one starts. Every ilot lands in exactly one row.
//
// Ilots with non-finite coordinates are skipped. An empty input yields no
// rows.
func GroupIntoRows(ilots []Ilot, tolerance float64) []Row {
	type member struct {
		index   int
		centerY float64
	}

	members := make([]member, 0, len(ilots))
	for i, il := range ilots {
		if !finiteRect(il.X, il.Y, il.Width, il.Height) {
			continue
		}
		members = append(members, member{index: i, centerY: il.CenterY()})
	}
	if len(members) == 0 {
		return nil
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].centerY < members[j].centerY
	})

	var rows []Row
	var current []member
	var sumY float64

	flush := func() {
		if len(current) == 0 {
			return
		}
		indices := make([]int, len(current))
		for i, m := range current {
			indices[i] = m.index
		}
		rows = append(rows, buildRow(ilots, indices))
		current = current[:0]
		sumY = 0
	}

	for _, m := range members {
		if len(current) > 0 {
			avg := sumY / float64(len(current))
			if math.Abs(m.centerY-avg) > tolerance {
				flush()
			}
		}
		current = append(current, m)
		sumY += m.centerY
	}
	flush()

	return rows
}

// buildRow computes the derived attributes of a row from its member indices.
func buildRow(ilots []Ilot, indices []int) Row {
	row := Row{
		Ilots: indices,
		MinX:  math.MaxFloat64,
		MinY:  math.MaxFloat64,
		MaxX:  -math.MaxFloat64,
		MaxY:  -math.MaxFloat64,
	}

	var sumY float64
	for _, idx := range indices {
		il := ilots[idx]
		row.MinX = math.Min(row.MinX, il.X)
		row.MaxX = math.Max(row.MaxX, il.X+il.Width)
		row.MinY = math.Min(row.MinY, il.Y)
		row.MaxY = math.Max(row.MaxY, il.Y+il.Height)
		sumY += il.CenterY()
	}
	row.AvgY = sumY / float64(len(indices))

	// Alignment: inverse of the variance of member center-Y positions.
	// A perfectly aligned row scores 1.0.
	var variance float64
	for _, idx := range indices {
		d := ilots[idx].CenterY() - row.AvgY
		variance += d * d
	}
	variance /= float64(len(indices))
	row.Alignment = 1 / (1 + variance)

	if w := row.Width(); w > 0 {
		row.Density = float64(len(indices)) / w
	} else {
		row.Density = float64(len(indices))
	}

	return row
}

// FindFacingPairs examines every unordered row pair and keeps those within
// the configured distance band that share enough horizontal overlap. Results
// are sorted by descending quality so downstream greedy logic favors the
// best aisles first; the sort is stable to keep tie order deterministic.
func FindFacingPairs(rows []Row, opts Options) []FacingPair {
	opts = opts.normalized()

	var pairs []FacingPair
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			pair, ok := facingPair(rows, i, j, opts)
			if ok {
				pairs = append(pairs, pair)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Quality > pairs[j].Quality
	})

	return pairs
}

// facingPair evaluates one row pair against the facing criteria.
func facingPair(rows []Row, i, j int, opts Options) (FacingPair, bool) {
	a, b := rows[i], rows[j]
	if a.AvgY > b.AvgY {
		a, b = b, a
		i, j = j, i
	}

	centerDist := b.AvgY - a.AvgY
	gap := math.Max(0, b.MinY-a.MaxY)
	distance := (centerDist + gap) / 2

	overlapWidth := math.Min(a.MaxX, b.MaxX) - math.Max(a.MinX, b.MinX)
	widerWidth := math.Max(a.Width(), b.Width())
	var overlapRatio float64
	if overlapWidth > 0 && widerWidth > 0 {
		overlapRatio = overlapWidth / widerWidth
	}

	if distance < opts.MinRowDistance || distance > opts.MaxRowDistance {
		return FacingPair{}, false
	}
	if overlapRatio < opts.MinOverlap {
		return FacingPair{}, false
	}

	quality := distanceWeight*distanceScore(distance, opts.MinRowDistance, opts.MaxRowDistance) +
		overlapWeight*overlapRatio +
		alignmentWeight*(a.Alignment+b.Alignment)/2 +
		densityWeight*densitySymmetry(a.Density, b.Density)

	region := orb.Bound{
		Min: orb.Point{math.Max(a.MinX, b.MinX), a.MaxY},
		Max: orb.Point{math.Min(a.MaxX, b.MaxX), b.MinY},
	}

	return FacingPair{
		RowA:         i,
		RowB:         j,
		Distance:     distance,
		OverlapRatio: overlapRatio,
		Quality:      quality,
		Region:       region,
	}, true
}

// distanceScore peaks at the midpoint of the allowed distance band and
// decays linearly toward the band edges.
func distanceScore(distance, minDist, maxDist float64) float64 {
	halfRange := (maxDist - minDist) / 2
	if halfRange <= 0 {
		return 1
	}
	mid := (minDist + maxDist) / 2
	score := 1 - math.Abs(distance-mid)/halfRange
	return math.Max(0, score)
}

// densitySymmetry rewards rows with similar unit density on both sides of
// the aisle: min/max of the two densities, 1.0 when equal.
func densitySymmetry(a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	if hi <= 0 {
		return 0
	}
	return lo / hi
}

// CorridorRecommendations turns facing pairs into horizontal corridor
// candidates. The corridor is centered in the gap between the two rows with
// its thickness clamped to gapFillRatio of the gap height, never exceeding
// the requested width. Pairs whose rows overlap vertically (no usable gap)
// produce no candidate.
func CorridorRecommendations(rows []Row, pairs []FacingPair, corridorWidth float64) []Corridor {
	var corridors []Corridor
	for _, pair := range pairs {
		lower, upper := rows[pair.RowA], rows[pair.RowB]
		if lower.AvgY > upper.AvgY {
			lower, upper = upper, lower
		}

		gapHeight := upper.MinY - lower.MaxY
		if gapHeight <= 0 {
			continue
		}

		thickness := math.Min(corridorWidth, gapHeight*gapFillRatio)
		if thickness <= 0 {
			continue
		}

		x := pair.Region.Min[0]
		width := pair.Region.Max[0] - pair.Region.Min[0]
		if width <= 0 {
			continue
		}
		y := lower.MaxY + (gapHeight-thickness)/2

		corridors = append(corridors, Corridor{
			ID:          uuid.NewString(),
			Type:        TypeFacingAisle,
			Orientation: OrientationHorizontal,
			X:           x,
			Y:           y,
			Width:       width,
			Height:      thickness,
			Area:        width * thickness,
			Polygon:     rectRing(x, y, width, thickness),
			Priority:    pair.Quality,
			Connects: []string{
				fmt.Sprintf("row-%d(%d)", pair.RowA, len(rows[pair.RowA].Ilots)),
				fmt.Sprintf("row-%d(%d)", pair.RowB, len(rows[pair.RowB].Ilots)),
			},
		})
	}
	return corridors
}
