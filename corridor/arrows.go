package corridor

import (
	"math"

	"github.com/paulmach/orb"
)

// ArrowDirection is a cardinal flow direction marker.
type ArrowDirection string

const (
	ArrowUp    ArrowDirection = "up"
	ArrowDown  ArrowDirection = "down"
	ArrowLeft  ArrowDirection = "left"
	ArrowRight ArrowDirection = "right"
)

// Arrow kinds distinguish steady circulation markers from entrance inflow.
const (
	ArrowCirculation  = "circulation"
	ArrowEntranceFlow = "entrance-flow"
)

// Arrow is a directional circulation marker placed along a corridor
// centerline or an entrance approach path.
type Arrow struct {
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Direction ArrowDirection `json:"direction"`
	Kind      string         `json:"kind"`
}

// Arrow placement spacing along corridors and entrance paths, in
// floor-plan units.
const (
	corridorArrowSpacing = 4.0
	entranceArrowSpacing = 3.0
	arrowPairOffset      = 0.3
)

// GenerateFlowArrows places circulation markers for a finished corridor
// network: bidirectional arrow pairs along each corridor's centerline, plus
// inflow arrows from each entrance toward its nearest corridor. The output
// is a pure annotation layer; corridors are not modified.
func GenerateFlowArrows(corridors []Corridor, entrances []Zone) []Arrow {
	var arrows []Arrow
	for _, c := range corridors {
		arrows = append(arrows, corridorArrows(c)...)
	}
	for _, e := range entrances {
		arrows = append(arrows, entranceArrows(e, corridors)...)
	}
	return arrows
}

// corridorArrows emits bidirectional arrow pairs along a corridor's
// centerline, one pair per spacing interval with a minimum of three.
func corridorArrows(c Corridor) []Arrow {
	var arrows []Arrow

	if c.Orientation == OrientationHorizontal {
		n := stationCount(c.Width, corridorArrowSpacing)
		cy := c.Y + c.Height/2
		for i := 0; i < n; i++ {
			x := c.X + c.Width*(float64(i)+0.5)/float64(n)
			arrows = append(arrows,
				Arrow{X: x, Y: cy, Direction: ArrowRight, Kind: ArrowCirculation},
				Arrow{X: x, Y: cy + arrowPairOffset, Direction: ArrowLeft, Kind: ArrowCirculation},
			)
		}
		return arrows
	}

	n := stationCount(c.Height, corridorArrowSpacing)
	cx := c.X + c.Width/2
	for i := 0; i < n; i++ {
		y := c.Y + c.Height*(float64(i)+0.5)/float64(n)
		arrows = append(arrows,
			Arrow{X: cx, Y: y, Direction: ArrowUp, Kind: ArrowCirculation},
			Arrow{X: cx + arrowPairOffset, Y: y, Direction: ArrowDown, Kind: ArrowCirculation},
		)
	}
	return arrows
}

// entranceArrows emits inflow arrows from an entrance toward the center of
// the nearest corridor, one per spacing interval with a minimum of two.
func entranceArrows(entrance Zone, corridors []Corridor) []Arrow {
	center, ok := entrance.Center()
	if !ok || len(corridors) == 0 {
		return nil
	}

	nearest, ok := nearestCorridor(center, corridors)
	if !ok {
		return nil
	}

	target := nearest.Bound().Center()
	dx := target[0] - center[0]
	dy := target[1] - center[1]
	distance := math.Hypot(dx, dy)
	if distance == 0 {
		return nil
	}

	var dir ArrowDirection
	if math.Abs(dx) > math.Abs(dy) {
		dir = ArrowRight
		if dx < 0 {
			dir = ArrowLeft
		}
	} else {
		dir = ArrowUp
		if dy < 0 {
			dir = ArrowDown
		}
	}

	n := int(distance / entranceArrowSpacing)
	if n < 2 {
		n = 2
	}

	arrows := make([]Arrow, 0, n)
	for i := 0; i < n; i++ {
		t := (float64(i) + 0.5) / float64(n)
		arrows = append(arrows, Arrow{
			X:         center[0] + dx*t,
			Y:         center[1] + dy*t,
			Direction: dir,
			Kind:      ArrowEntranceFlow,
		})
	}
	return arrows
}

// stationCount converts a corridor extent into an arrow station count with
// a floor of three.
func stationCount(extent, spacing float64) int {
	n := int(extent / spacing)
	if n < 3 {
		n = 3
	}
	return n
}

// nearestCorridor returns the corridor whose bounding-box center is closest
// to the given point.
func nearestCorridor(p orb.Point, corridors []Corridor) (Corridor, bool) {
	if len(corridors) == 0 {
		return Corridor{}, false
	}

	best := corridors[0]
	bestDist := math.Inf(1)
	for _, c := range corridors {
		center := c.Bound().Center()
		d := math.Hypot(p[0]-center[0], p[1]-center[1])
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best, true
}
