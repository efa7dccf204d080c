package corridor

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// PlanRequest is the payload the placement stage publishes: a floor-plan
// context plus the placed ilots, with an optional per-request synthesis
// option override.
type PlanRequest struct {
	FloorPlan FloorPlan `json:"floorPlan"`
	Ilots     []Ilot    `json:"ilots"`
	Options   *Options  `json:"options,omitempty"`
}

// DecodePlanData decodes a plan request from raw JSON or gzip-compressed
// JSON. Missing collections default to empty and missing bounds are derived
// from the content; upstream omissions never become errors.
func DecodePlanData(data []byte) (*PlanRequest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	jsonBytes := data
	if isGzip(data) {
		inflated, err := inflateGzip(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing payload: %w", err)
		}
		jsonBytes = inflated
	}

	var req PlanRequest
	if err := json.Unmarshal(jsonBytes, &req); err != nil {
		return nil, fmt.Errorf("parsing plan JSON: %w", err)
	}

	normalizePlanRequest(&req)
	return &req, nil
}

// ParsePlanFile reads and decodes a plan request from a file.
func ParsePlanFile(path string) (*PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return DecodePlanData(data)
}

// normalizePlanRequest applies safe defaults: nil collections become empty
// slices, and zero bounds are recomputed from ilots and zones so validation
// has a usable extent to work with.
func normalizePlanRequest(req *PlanRequest) {
	if req.Ilots == nil {
		req.Ilots = []Ilot{}
	}
	if req.FloorPlan.Walls == nil {
		req.FloorPlan.Walls = []Wall{}
	}
	if req.FloorPlan.ForbiddenZones == nil {
		req.FloorPlan.ForbiddenZones = []Zone{}
	}
	if req.FloorPlan.Entrances == nil {
		req.FloorPlan.Entrances = []Zone{}
	}

	if req.FloorPlan.Bounds.IsZero() {
		req.FloorPlan.Bounds = deriveBounds(req)
	}
}

// deriveBounds computes floor-plan bounds from the ilots and zone polygons.
func deriveBounds(req *PlanRequest) Bounds {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	grow := func(x, y float64) {
		if math.IsNaN(x) || math.IsNaN(y) {
			return
		}
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	for _, il := range req.Ilots {
		grow(il.X, il.Y)
		grow(il.X+il.Width, il.Y+il.Height)
	}
	for _, zones := range [][]Zone{req.FloorPlan.ForbiddenZones, req.FloorPlan.Entrances} {
		for _, z := range zones {
			for _, c := range z.Polygon {
				grow(c[0], c[1])
			}
		}
	}
	for _, w := range req.FloorPlan.Walls {
		grow(w.X1, w.Y1)
		grow(w.X2, w.Y2)
	}

	if math.IsInf(minX, 1) {
		return Bounds{}
	}
	return Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

// isGzip checks for the gzip magic bytes.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// inflateGzip decompresses gzip-compressed data.
func inflateGzip(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer reader.Close()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing gzip data: %w", err)
	}
	return decompressed, nil
}
