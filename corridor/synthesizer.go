package corridor

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Synthesizer turns placed ilots and a floor-plan context into a validated,
// non-overlapping corridor network. It is stateless between calls: every
// stage builds fresh value types, and inputs are never mutated.
type Synthesizer struct {
	plan  FloorPlan
	ilots []Ilot
	opts  Options
}

// NewSynthesizer builds a synthesizer for one floor plan. Option consistency
// is checked here so configuration errors surface before any computation.
func NewSynthesizer(plan FloorPlan, ilots []Ilot, opts Options) (*Synthesizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("corridor options: %w", err)
	}
	return &Synthesizer{
		plan:  plan,
		ilots: sanitizeIlots(ilots),
		opts:  opts.normalized(),
	}, nil
}

// sanitizeIlots drops ilots with non-finite coordinates or non-positive
// extents. Malformed units degrade to absence rather than aborting the run.
func sanitizeIlots(ilots []Ilot) []Ilot {
	clean := make([]Ilot, 0, len(ilots))
	for _, il := range ilots {
		if !finiteRect(il.X, il.Y, il.Width, il.Height) {
			continue
		}
		if il.Width <= 0 || il.Height <= 0 {
			continue
		}
		clean = append(clean, il)
	}
	return clean
}

// Generate runs the full pipeline: horizontal and vertical candidate
// generation, per-orientation optimization, cross-orientation conflict
// resolution, and validation against the floor-plan context.
func (s *Synthesizer) Generate() Result {
	var horizontal, vertical []Corridor
	if s.opts.horizontalEnabled() {
		horizontal = s.HorizontalCandidates()
	}
	if s.opts.verticalEnabled() {
		vertical = s.VerticalCandidates()
	}

	horizontal = s.OptimizeCorridors(horizontal)
	vertical = s.OptimizeCorridors(vertical)

	resolved := s.ResolveConflicts(horizontal, vertical)
	valid, invalid := s.ValidateCorridors(resolved)

	var totalArea float64
	for _, c := range valid {
		totalArea += c.Area
	}

	return Result{
		Corridors: valid,
		Invalid:   invalid,
		Arrows:    GenerateFlowArrows(valid, s.plan.Entrances),
		Statistics: Statistics{
			HorizontalCount:       len(horizontal),
			VerticalCount:         len(vertical),
			FinalCount:            len(valid),
			RemovedDueToConflicts: len(horizontal) + len(vertical) - len(resolved),
			TotalArea:             totalArea,
		},
	}
}

// HorizontalCandidates derives aisle candidates from facing row pairs.
// Each candidate's priority is the pair quality scaled by the horizontal
// priority weight, which is how horizontal aisles later win contested
// space over vertical ones.
func (s *Synthesizer) HorizontalCandidates() []Corridor {
	rows := GroupIntoRows(s.ilots, s.opts.RowTolerance)
	if len(rows) < 2 {
		return nil
	}
	pairs := FindFacingPairs(rows, s.opts)
	corridors := CorridorRecommendations(rows, pairs, s.opts.CorridorWidth)

	for i := range corridors {
		corridors[i].Priority *= s.opts.HorizontalPriority
	}
	return corridors
}

// columnBucketDecimals controls how ilot X-centers are rounded when
// approximating column membership (one decimal place).
const columnBucketDecimals = 1

// VerticalCandidates derives corridor candidates from vertical gaps inside
// ilot columns. Ilots are bucketed by rounded X-center; within each column
// of two or more members, every consecutive vertical gap that clears the
// margin by at least the minimum corridor length becomes a candidate with
// the flat vertical priority (no row-quality signal exists here).
func (s *Synthesizer) VerticalCandidates() []Corridor {
	columns := make(map[float64][]int)
	for i, il := range s.ilots {
		key := roundTo(il.CenterX(), columnBucketDecimals)
		columns[key] = append(columns[key], i)
	}

	// Deterministic column order.
	keys := make([]float64, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	var corridors []Corridor
	for _, key := range keys {
		members := columns[key]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			return s.ilots[members[i]].Y < s.ilots[members[j]].Y
		})

		for i := 0; i < len(members)-1; i++ {
			upper := s.ilots[members[i]]
			lower := s.ilots[members[i+1]]

			gap := lower.Y - (upper.Y + upper.Height)
			if gap-s.opts.Margin < s.opts.MinCorridorLength {
				continue
			}

			// Span the union of the two ilots' X-extents.
			x := math.Min(upper.X, lower.X)
			maxX := math.Max(upper.X+upper.Width, lower.X+lower.Width)
			width := maxX - x

			height := math.Min(s.opts.CorridorWidth, gap-s.opts.Margin)
			y := upper.Y + upper.Height + (gap-height)/2

			corridors = append(corridors, Corridor{
				ID:          uuid.NewString(),
				Type:        TypeColumnGap,
				Orientation: OrientationVertical,
				X:           x,
				Y:           y,
				Width:       width,
				Height:      height,
				Area:        width * height,
				Polygon:     rectRing(x, y, width, height),
				Priority:    s.opts.VerticalPriority,
				Connects:    []string{upper.ID, lower.ID},
			})
		}
	}
	return corridors
}

// dedupKeyDecimals is the fixed precision of geometric dedup keys.
const dedupKeyDecimals = 3

// dedupKey identifies geometrically identical candidates. Coordinates are
// rounded to avoid exact float comparison.
func dedupKey(c Corridor) string {
	return fmt.Sprintf("%s|%s|%.3f|%.3f|%.3f|%.3f",
		c.Orientation, c.Type,
		roundTo(c.X, dedupKeyDecimals), roundTo(c.Y, dedupKeyDecimals),
		roundTo(c.Width, dedupKeyDecimals), roundTo(c.Height, dedupKeyDecimals))
}

// OptimizeCorridors deduplicates and merges one orientation's candidate
// list. Duplicates (same rounded geometry) keep the higher-priority copy.
// Then the highest-priority remaining candidate repeatedly absorbs any
// same-orientation candidate that is adjacent within the adjacency
// tolerance or AABB-overlapping, expanding to the merged bounding box,
// until no further merge applies; the result is emitted and the scan
// continues with the rest. Running the result through again is a no-op.
func (s *Synthesizer) OptimizeCorridors(candidates []Corridor) []Corridor {
	if len(candidates) == 0 {
		return nil
	}

	// Pass 1: dedup by rounded geometry, keeping the higher priority.
	byKey := make(map[string]Corridor, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := dedupKey(c)
		existing, ok := byKey[key]
		if !ok {
			byKey[key] = c
			order = append(order, key)
			continue
		}
		if c.Priority > existing.Priority {
			byKey[key] = c
		}
	}

	pool := make([]Corridor, 0, len(order))
	for _, key := range order {
		pool = append(pool, byKey[key])
	}

	// Pass 2: greedy merge to a fixpoint. Merging can expand a corridor
	// into range of one emitted earlier, so the pass repeats until the set
	// stops shrinking; re-optimizing the output is then a no-op.
	for {
		merged := s.mergePass(pool)
		if len(merged) == len(pool) {
			return merged
		}
		pool = merged
	}
}

// mergePass performs one greedy merge sweep, highest priority first. The
// sort is stable so input order decides priority ties.
func (s *Synthesizer) mergePass(pool []Corridor) []Corridor {
	pool = append([]Corridor{}, pool...)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Priority > pool[j].Priority
	})

	var merged []Corridor
	for len(pool) > 0 {
		current := pool[0]
		pool = pool[1:]

		for {
			absorbed := false
			remaining := pool[:0]
			for _, other := range pool {
				if other.Orientation == current.Orientation &&
					boundsNear(current.Bound(), other.Bound(), s.opts.AdjacencyTolerance) {
					current = mergeCorridors(current, other)
					absorbed = true
				} else {
					remaining = append(remaining, other)
				}
			}
			pool = remaining
			if !absorbed {
				break
			}
		}

		merged = append(merged, current)
	}

	return merged
}

// mergeCorridors absorbs other into base: the geometry expands to the union
// bounding box, priority takes the max, and provenance is recorded.
func mergeCorridors(base, other Corridor) Corridor {
	union := boundsUnion(base.Bound(), other.Bound())

	merged := base
	merged.X = union.Min[0]
	merged.Y = union.Min[1]
	merged.Width = union.Max[0] - union.Min[0]
	merged.Height = union.Max[1] - union.Min[1]
	merged.Area = merged.Width * merged.Height
	merged.Polygon = rectRing(merged.X, merged.Y, merged.Width, merged.Height)
	merged.Priority = math.Max(base.Priority, other.Priority)

	merged.Connects = append(append([]string{}, base.Connects...), other.Connects...)
	merged.MergedFrom = append(append([]string{}, base.MergedFrom...), other.ID)
	merged.MergedFrom = append(merged.MergedFrom, other.MergedFrom...)

	return merged
}

// ResolveConflicts combines both optimized candidate lists and greedily
// keeps corridors in descending priority order, skipping any whose bounding
// box overlaps an already-kept corridor. The sort is stable, so candidates
// with equal priority are resolved in input order; horizontal candidates
// carry the priority multiplier and therefore win contested space.
func (s *Synthesizer) ResolveConflicts(horizontal, vertical []Corridor) []Corridor {
	combined := make([]Corridor, 0, len(horizontal)+len(vertical))
	combined = append(combined, horizontal...)
	combined = append(combined, vertical...)

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Priority > combined[j].Priority
	})

	var kept []Corridor
	for _, candidate := range combined {
		conflict := false
		for _, k := range kept {
			if boundsOverlap(candidate.Bound(), k.Bound()) {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// ValidateCorridors partitions candidates into valid and invalid. A
// corridor is invalid when its bounding box intersects a forbidden-zone or
// entrance bounding box, or when it covers more of any ilot's area than the
// overlap tolerance allows. Zone checks deliberately use the zone's
// bounding box, not the exact polygon, matching the upstream pipeline.
func (s *Synthesizer) ValidateCorridors(candidates []Corridor) (valid, invalid []Corridor) {
	for _, c := range candidates {
		if s.corridorBlocked(c) {
			invalid = append(invalid, c)
		} else {
			valid = append(valid, c)
		}
	}
	return valid, invalid
}

// corridorBlocked applies the architectural constraints to one corridor.
func (s *Synthesizer) corridorBlocked(c Corridor) bool {
	bound := c.Bound()

	for _, zone := range s.plan.ForbiddenZones {
		if zonePolygonArea(zone) <= 0 {
			continue
		}
		if zb, ok := zone.Bound(); ok && boundsOverlap(bound, zb) {
			return true
		}
	}
	for _, zone := range s.plan.Entrances {
		if zonePolygonArea(zone) <= 0 {
			continue
		}
		if zb, ok := zone.Bound(); ok && boundsOverlap(bound, zb) {
			return true
		}
	}

	cutLimit := 1 - s.opts.OverlapTolerance
	for _, il := range s.ilots {
		area := il.Area()
		if area <= 0 {
			continue
		}
		if intersectionArea(bound, il.Bound())/area > cutLimit {
			return true
		}
	}

	return false
}
