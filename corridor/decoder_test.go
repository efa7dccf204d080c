package corridor

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

const samplePlanJSON = `{
	"floorPlan": {
		"bounds": {"minX": 0, "minY": 0, "maxX": 50, "maxY": 30},
		"walls": [{"x1": 0, "y1": 0, "x2": 50, "y2": 0}],
		"forbiddenZones": [{"id": "stairs", "polygon": [[10, 10], [14, 10], [14, 14], [10, 14]]}],
		"entrances": [{"id": "door", "polygon": [[0, 12], [1, 12], [1, 16], [0, 16]]}]
	},
	"ilots": [
		{"id": "u1", "x": 2, "y": 2, "width": 3, "height": 2},
		{"id": "u2", "x": 6, "y": 2, "width": 3, "height": 2}
	]
}`

func TestDecodePlanData_JSON(t *testing.T) {
	req, err := DecodePlanData([]byte(samplePlanJSON))
	if err != nil {
		t.Fatalf("DecodePlanData() error: %v", err)
	}

	if len(req.Ilots) != 2 {
		t.Fatalf("Ilot count = %d, want 2", len(req.Ilots))
	}
	if req.Ilots[0].ID != "u1" || req.Ilots[0].Width != 3 {
		t.Errorf("Ilot[0] = %+v", req.Ilots[0])
	}
	if len(req.FloorPlan.Walls) != 1 {
		t.Errorf("Wall count = %d, want 1", len(req.FloorPlan.Walls))
	}
	if len(req.FloorPlan.ForbiddenZones) != 1 || req.FloorPlan.ForbiddenZones[0].ID != "stairs" {
		t.Errorf("ForbiddenZones = %+v", req.FloorPlan.ForbiddenZones)
	}
	if req.FloorPlan.Bounds.MaxX != 50 {
		t.Errorf("Bounds = %+v", req.FloorPlan.Bounds)
	}
	if req.Options != nil {
		t.Errorf("Options = %+v, want nil when absent", req.Options)
	}
}

func TestDecodePlanData_Gzip(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(samplePlanJSON)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := DecodePlanData(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePlanData(gzip) error: %v", err)
	}
	if len(req.Ilots) != 2 {
		t.Errorf("Ilot count = %d, want 2", len(req.Ilots))
	}
}

func TestDecodePlanData_Errors(t *testing.T) {
	if _, err := DecodePlanData(nil); err == nil {
		t.Error("Empty payload should fail")
	}
	if _, err := DecodePlanData([]byte("not json")); err == nil {
		t.Error("Malformed JSON should fail")
	}
	// Gzip magic bytes with garbage behind them.
	if _, err := DecodePlanData([]byte{0x1f, 0x8b, 0xff, 0xff}); err == nil {
		t.Error("Corrupt gzip should fail")
	}
}

func TestDecodePlanData_Defaults(t *testing.T) {
	req, err := DecodePlanData([]byte(`{"ilots": [{"id": "u1", "x": 1, "y": 2, "width": 3, "height": 4}]}`))
	if err != nil {
		t.Fatalf("DecodePlanData() error: %v", err)
	}

	if req.FloorPlan.Walls == nil || req.FloorPlan.ForbiddenZones == nil || req.FloorPlan.Entrances == nil {
		t.Error("Missing collections should default to empty slices")
	}

	// Bounds derived from the single ilot.
	b := req.FloorPlan.Bounds
	if b.MinX != 1 || b.MinY != 2 || b.MaxX != 4 || b.MaxY != 6 {
		t.Errorf("Derived bounds = %+v, want [1,2]-[4,6]", b)
	}
}

func TestDecodePlanData_DeriveBoundsFromZones(t *testing.T) {
	payload := `{
		"floorPlan": {
			"forbiddenZones": [{"polygon": [[5, 5], [20, 5], [20, 25], [5, 25]]}]
		}
	}`
	req, err := DecodePlanData([]byte(payload))
	if err != nil {
		t.Fatalf("DecodePlanData() error: %v", err)
	}

	b := req.FloorPlan.Bounds
	if b.MinX != 5 || b.MinY != 5 || b.MaxX != 20 || b.MaxY != 25 {
		t.Errorf("Derived bounds = %+v, want [5,5]-[20,25]", b)
	}
}

func TestDecodePlanData_NoContent(t *testing.T) {
	req, err := DecodePlanData([]byte(`{}`))
	if err != nil {
		t.Fatalf("DecodePlanData() error: %v", err)
	}
	if !req.FloorPlan.Bounds.IsZero() {
		t.Errorf("Bounds = %+v, want zero when nothing constrains them", req.FloorPlan.Bounds)
	}
	if len(req.Ilots) != 0 {
		t.Errorf("Ilots = %+v, want empty", req.Ilots)
	}
}

func TestDecodePlanData_OptionsOverride(t *testing.T) {
	payload := `{
		"ilots": [],
		"options": {"corridorWidth": 2.5, "generateVertical": false}
	}`
	req, err := DecodePlanData([]byte(payload))
	if err != nil {
		t.Fatalf("DecodePlanData() error: %v", err)
	}
	if req.Options == nil {
		t.Fatal("Options should be decoded")
	}
	if req.Options.CorridorWidth != 2.5 {
		t.Errorf("CorridorWidth = %.2f, want 2.5", req.Options.CorridorWidth)
	}
	if req.Options.GenerateVertical == nil || *req.Options.GenerateVertical {
		t.Error("generateVertical: false should decode as explicit false")
	}
	if req.Options.GenerateHorizontal != nil {
		t.Error("generateHorizontal should stay unset")
	}
}

func TestParsePlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(samplePlanJSON), 0644); err != nil {
		t.Fatal(err)
	}

	req, err := ParsePlanFile(path)
	if err != nil {
		t.Fatalf("ParsePlanFile() error: %v", err)
	}
	if len(req.Ilots) != 2 {
		t.Errorf("Ilot count = %d, want 2", len(req.Ilots))
	}

	if _, err := ParsePlanFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ParsePlanFile() should fail for a missing file")
	}
}
