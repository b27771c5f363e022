// Package mission maps each supported survey to the ordered feature set its candidates carry.
//
// All schemas are package-level values built once at init and never mutated, so every
// function here is safe to call from any goroutine without locking.
package mission

// Kind distinguishes free numeric features from ones restricted to a list of options.
type Kind string

const (
	KindNumeric    Kind = "numeric"
	KindEnumerated Kind = "enumerated"
)

// Bounds constrain a numeric feature. Step is a UI hint only.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Option is one allowed value of an enumerated feature.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FeatureDescriptor describes one input column of a mission.
type FeatureDescriptor struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Unit    string   `json:"unit,omitempty"`
	Kind    Kind     `json:"kind"`
	Bounds  *Bounds  `json:"bounds,omitempty"`
	Options []Option `json:"options,omitempty"`
}

// HasOption reports whether token is one of the descriptor's option values.
func (d FeatureDescriptor) HasOption(token string) bool {
	for _, o := range d.Options {
		if o.Value == token {
			return true
		}
	}
	return false
}

// PhysicalFields names the features that feed the presentation layer: light curve,
// habitability zone and planet size. DepthScale converts the depth feature to ppm.
type PhysicalFields struct {
	EqTemp     string  `json:"eq_temp"`
	Radius     string  `json:"radius"`
	Depth      string  `json:"depth"`
	DepthScale float64 `json:"depth_scale"`
	Duration   string  `json:"duration"`
}

// Schema is the ordered feature list for one mission. Order drives both display and
// CSV column order.
type Schema struct {
	MissionID string              `json:"mission"`
	Title     string              `json:"title"`
	Features  []FeatureDescriptor `json:"features"`
	Physical  PhysicalFields      `json:"physical"`
}

// Feature looks up a descriptor by name.
func (s Schema) Feature(name string) (FeatureDescriptor, bool) {
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return FeatureDescriptor{}, false
}

// Names returns the feature names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

func numeric(name, label, unit string, min, max, step float64) FeatureDescriptor {
	return FeatureDescriptor{
		Name:   name,
		Label:  label,
		Unit:   unit,
		Kind:   KindNumeric,
		Bounds: &Bounds{Min: min, Max: max, Step: step},
	}
}

func enumerated(name, label string, options ...Option) FeatureDescriptor {
	return FeatureDescriptor{Name: name, Label: label, Kind: KindEnumerated, Options: options}
}

func flag(name, label string) FeatureDescriptor {
	return enumerated(name, label,
		Option{Value: "0", Label: "Not set"},
		Option{Value: "1", Label: "Set"},
	)
}
