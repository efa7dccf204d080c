package corridor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options configures one synthesis run. All fields have working defaults;
// zero values are replaced by DefaultOptions values during normalization so
// a partially populated config file behaves sensibly.
type Options struct {
	// CorridorWidth is the target thickness of horizontal aisles.
	CorridorWidth float64 `yaml:"corridorWidth" json:"corridorWidth"`
	// Margin is the minimum clearance before a vertical gap is usable.
	Margin float64 `yaml:"margin" json:"margin"`
	// MinCorridorLength is the minimum usable length of a vertical corridor.
	MinCorridorLength float64 `yaml:"minCorridorLength" json:"minCorridorLength"`

	// RowTolerance is the max deviation of an ilot's vertical center from
	// the running row average for it to join the row.
	RowTolerance float64 `yaml:"rowTolerance" json:"rowTolerance"`
	// MinRowDistance and MaxRowDistance bound the facing-row distance band.
	MinRowDistance float64 `yaml:"minRowDistance" json:"minRowDistance"`
	MaxRowDistance float64 `yaml:"maxRowDistance" json:"maxRowDistance"`
	// MinOverlap is the minimum horizontal overlap ratio for facing rows.
	MinOverlap float64 `yaml:"minOverlap" json:"minOverlap"`

	// HorizontalPriority and VerticalPriority weight candidates during
	// conflict resolution. Horizontal aisles default higher so they win
	// contested space.
	HorizontalPriority float64 `yaml:"horizontalPriority" json:"horizontalPriority"`
	VerticalPriority   float64 `yaml:"verticalPriority" json:"verticalPriority"`

	// AdjacencyTolerance is the slack used when merging adjacent candidates.
	AdjacencyTolerance float64 `yaml:"adjacencyTolerance" json:"adjacencyTolerance"`
	// OverlapTolerance is the max allowed corridor/ilot cut ratio: a
	// corridor covering more than (1 - OverlapTolerance) of an ilot's area
	// is rejected.
	OverlapTolerance float64 `yaml:"overlapTolerance" json:"overlapTolerance"`

	// GenerateHorizontal and GenerateVertical toggle the two candidate
	// generators. Pointers distinguish "unset" from explicit false in YAML.
	GenerateHorizontal *bool `yaml:"generateHorizontal,omitempty" json:"generateHorizontal,omitempty"`
	GenerateVertical   *bool `yaml:"generateVertical,omitempty" json:"generateVertical,omitempty"`
}

// DefaultOptions returns the recognized defaults for corridor synthesis.
func DefaultOptions() Options {
	return Options{
		CorridorWidth:      1.5,
		Margin:             0.5,
		MinCorridorLength:  1.0,
		RowTolerance:       3.0,
		MinRowDistance:     2.0,
		MaxRowDistance:     8.0,
		MinOverlap:         0.6,
		HorizontalPriority: 1.5,
		VerticalPriority:   1.0,
		AdjacencyTolerance: 0.15,
		OverlapTolerance:   0.2,
	}
}

// normalized fills zero-valued fields with defaults and returns the result.
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.CorridorWidth <= 0 {
		o.CorridorWidth = def.CorridorWidth
	}
	if o.Margin <= 0 {
		o.Margin = def.Margin
	}
	if o.MinCorridorLength <= 0 {
		o.MinCorridorLength = def.MinCorridorLength
	}
	if o.RowTolerance <= 0 {
		o.RowTolerance = def.RowTolerance
	}
	if o.MinRowDistance <= 0 {
		o.MinRowDistance = def.MinRowDistance
	}
	if o.MaxRowDistance <= 0 {
		o.MaxRowDistance = def.MaxRowDistance
	}
	if o.MinOverlap <= 0 {
		o.MinOverlap = def.MinOverlap
	}
	if o.HorizontalPriority <= 0 {
		o.HorizontalPriority = def.HorizontalPriority
	}
	if o.VerticalPriority <= 0 {
		o.VerticalPriority = def.VerticalPriority
	}
	if o.AdjacencyTolerance <= 0 {
		o.AdjacencyTolerance = def.AdjacencyTolerance
	}
	if o.OverlapTolerance <= 0 {
		o.OverlapTolerance = def.OverlapTolerance
	}
	return o
}

// horizontalEnabled reports whether horizontal generation is on (default true).
func (o Options) horizontalEnabled() bool {
	return o.GenerateHorizontal == nil || *o.GenerateHorizontal
}

// verticalEnabled reports whether vertical generation is on (default true).
func (o Options) verticalEnabled() bool {
	return o.GenerateVertical == nil || *o.GenerateVertical
}

// Validate checks option consistency. Configuration errors are reported here,
// at construction time, rather than surfacing mid-computation.
func (o Options) Validate() error {
	o = o.normalized()
	if o.MinRowDistance > o.MaxRowDistance {
		return fmt.Errorf("minRowDistance (%.2f) must not exceed maxRowDistance (%.2f)",
			o.MinRowDistance, o.MaxRowDistance)
	}
	if o.MinOverlap > 1 {
		return fmt.Errorf("minOverlap (%.2f) must be at most 1", o.MinOverlap)
	}
	if o.OverlapTolerance > 1 {
		return fmt.Errorf("overlapTolerance (%.2f) must be at most 1", o.OverlapTolerance)
	}
	return nil
}

// LoadConfig loads the service configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if config.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker is required")
	}
	if len(config.Plans) == 0 {
		return nil, fmt.Errorf("at least one plan must be defined")
	}
	for i, pc := range config.Plans {
		if pc.ID == "" {
			return nil, fmt.Errorf("plan[%d].id is required", i)
		}
		if pc.Topic == "" {
			return nil, fmt.Errorf("plan[%d].topic is required for %s", i, pc.ID)
		}
	}

	if err := config.Synthesis.Validate(); err != nil {
		return nil, fmt.Errorf("synthesis options: %w", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
