package corridor

import (
	"github.com/paulmach/orb"
)

// Orientation identifies the axis a corridor runs along.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// Corridor type labels, carried through dedup keys and output JSON.
const (
	TypeFacingAisle = "facing-aisle" // horizontal, between two facing rows
	TypeColumnGap   = "column-gap"   // vertical, in the gap of an ilot column
)

// Ilot is a placed rectangular workspace unit. It is produced by the
// upstream placement stage and is read-only here: the synthesizer never
// repairs or repositions ilots, it only routes corridors around them.
type Ilot struct {
	ID     string  `json:"id"`
	Type   string  `json:"type,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the ilot footprint area.
func (il Ilot) Area() float64 {
	return il.Width * il.Height
}

// CenterX returns the horizontal center of the ilot.
func (il Ilot) CenterX() float64 {
	return il.X + il.Width/2
}

// CenterY returns the vertical center of the ilot.
func (il Ilot) CenterY() float64 {
	return il.Y + il.Height/2
}

// Bound returns the ilot's axis-aligned bounding box.
func (il Ilot) Bound() orb.Bound {
	return rectBound(il.X, il.Y, il.Width, il.Height)
}

// Bounds is the rectangular extent of a floor plan.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// IsZero reports whether the bounds are unset or degenerate.
func (b Bounds) IsZero() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

// Wall is a single wall segment from the CAD ingestion stage. Walls are part
// of the floor-plan context but are not consulted by corridor validation.
type Wall struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Zone is a polygonal region of the floor plan (forbidden zone or entrance).
// Validation uses only the polygon's bounding box, matching the upstream
// pipeline's approximation.
type Zone struct {
	ID      string       `json:"id,omitempty"`
	Polygon [][2]float64 `json:"polygon"`
}

// Bound returns the zone polygon's bounding box. A zone with fewer than
// three points yields an empty bound that intersects nothing.
func (z Zone) Bound() (orb.Bound, bool) {
	if len(z.Polygon) < 3 {
		return orb.Bound{}, false
	}
	ring := make(orb.Ring, len(z.Polygon))
	for i, c := range z.Polygon {
		ring[i] = orb.Point{c[0], c[1]}
	}
	return ring.Bound(), true
}

// Center returns the vertex centroid of the zone polygon.
func (z Zone) Center() (orb.Point, bool) {
	if len(z.Polygon) == 0 {
		return orb.Point{}, false
	}
	var sx, sy float64
	for _, c := range z.Polygon {
		sx += c[0]
		sy += c[1]
	}
	n := float64(len(z.Polygon))
	return orb.Point{sx / n, sy / n}, true
}

// FloorPlan is the architectural context consumed for validation: overall
// bounds, wall segments, forbidden zones, and entrances. Missing collections
// decode as empty, never as errors.
type FloorPlan struct {
	Bounds         Bounds `json:"bounds"`
	Walls          []Wall `json:"walls"`
	ForbiddenZones []Zone `json:"forbiddenZones"`
	Entrances      []Zone `json:"entrances"`
}

// Row is a horizontal cluster of ilots whose vertical centers fall within
// the configured tolerance of a running average. Rows reference member
// ilots by index into the input slice rather than by pointer, so a Row is
// a pure value that cannot alias synthesizer state.
type Row struct {
	Ilots []int `json:"ilots"`

	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
	AvgY float64 `json:"avgY"`

	// Alignment is 1/(1+variance) of member center-Y positions, in (0,1].
	Alignment float64 `json:"alignment"`
	// Density is member count divided by row width.
	Density float64 `json:"density"`
}

// Width returns the horizontal extent of the row.
func (r Row) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent of the row.
func (r Row) Height() float64 {
	return r.MaxY - r.MinY
}

// CenterX returns the horizontal center of the row.
func (r Row) CenterX() float64 {
	return (r.MinX + r.MaxX) / 2
}

// FacingPair relates two rows judged to face each other across a walkable
// gap. RowA and RowB are indices into the detector's row slice, RowA < RowB
// by AvgY.
type FacingPair struct {
	RowA int `json:"rowA"`
	RowB int `json:"rowB"`

	// Distance is the average of the center-to-center vertical distance and
	// the physical gap between the nearer edges (zero when the rows overlap).
	Distance float64 `json:"distance"`
	// OverlapRatio is the shared X-span divided by the wider row's width.
	OverlapRatio float64 `json:"overlapRatio"`
	// Quality is the composite aisle score in [0,1].
	Quality float64 `json:"quality"`

	// Region is the recommended corridor bounding region between the rows.
	Region orb.Bound `json:"-"`
}

// Corridor is a rectangular circulation region, the sole persisted output
// of a synthesis call.
type Corridor struct {
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Orientation Orientation `json:"orientation"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Area   float64 `json:"area"`

	// Polygon is the closed 4-point outline in floor-plan coordinates.
	Polygon orb.Ring `json:"polygon"`

	// Priority breaks ties when two candidates claim overlapping space.
	Priority float64 `json:"priority"`

	// Connects records provenance: row labels ("row-2") for horizontal
	// corridors, ilot IDs for vertical ones.
	Connects []string `json:"connects,omitempty"`

	// MergedFrom lists the IDs of candidates absorbed during optimization.
	MergedFrom []string `json:"mergedFrom,omitempty"`
}

// Bound returns the corridor's axis-aligned bounding box.
func (c Corridor) Bound() orb.Bound {
	return rectBound(c.X, c.Y, c.Width, c.Height)
}

// Statistics summarizes one synthesis run for observability.
type Statistics struct {
	HorizontalCount       int     `json:"horizontalCount"`
	VerticalCount         int     `json:"verticalCount"`
	FinalCount            int     `json:"finalCount"`
	RemovedDueToConflicts int     `json:"removedDueToConflicts"`
	TotalArea             float64 `json:"totalArea"`
}

// Result is the output of Synthesizer.Generate.
type Result struct {
	Corridors  []Corridor `json:"corridors"`
	Invalid    []Corridor `json:"invalid"`
	Arrows     []Arrow    `json:"arrows,omitempty"`
	Statistics Statistics `json:"statistics"`
}

// PlanConfig binds a plan ID to the MQTT topic its placement payloads
// arrive on.
type PlanConfig struct {
	ID    string `yaml:"id" json:"id"`
	Topic string `yaml:"topic" json:"topic"`
}

// MQTTConfig holds MQTT connection settings.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config is the full service configuration file.
type Config struct {
	MQTT      MQTTConfig   `yaml:"mqtt" json:"mqtt"`
	Plans     []PlanConfig `yaml:"plans" json:"plans"`
	Synthesis Options      `yaml:"synthesis" json:"synthesis"`
}

// GetPlanByID returns the plan config for the given ID.
func (c *Config) GetPlanByID(id string) *PlanConfig {
	for i := range c.Plans {
		if c.Plans[i].ID == id {
			return &c.Plans[i]
		}
	}
	return nil
}
