package physics

import (
	"fmt"
	"math"
	"os"
	"sort"

	apperrors "exodash/internal/errors"

	"gopkg.in/yaml.v3"
)

// Band is one bucket of a step function. A value v falls in the first band with
// v <= Upper; the last band of a table is open-ended (Upper = +Inf).
type Band struct {
	Upper       float64 `json:"upper" yaml:"upper"`
	Label       string  `json:"label" yaml:"label"`
	Severity    string  `json:"severity,omitempty" yaml:"severity,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Breakpoints is the single table both classifiers read from.
type Breakpoints struct {
	Name  string `json:"name" yaml:"name"`
	Zones []Band `json:"zones" yaml:"zones"`
	Sizes []Band `json:"sizes" yaml:"sizes"`
}

// Named breakpoint sets. The two temperature tables disagree on the cold cutoff
// (200 K vs 273 K); which one is authoritative is still open with product.
const (
	SetDashboard = "dashboard"
	SetResults   = "results"
)

var inf = math.Inf(1)

var planetSizes = []Band{
	{Upper: 1.25, Label: "Earth-like", Description: "Rocky world comparable in size to Earth"},
	{Upper: 2.0, Label: "Super-Earth", Description: "Larger than Earth, possibly rocky with a thick atmosphere"},
	{Upper: 6.0, Label: "Neptune-like", Description: "Ice or gas giant similar to Neptune"},
	{Upper: 15.0, Label: "Jupiter-like", Description: "Gas giant comparable to Jupiter"},
	{Upper: inf, Label: "Super-Jupiter", Description: "Gas giant larger than Jupiter"},
}

var builtin = map[string]Breakpoints{
	SetDashboard: {
		Name: SetDashboard,
		Zones: []Band{
			{Upper: 200, Label: "Too Cold", Severity: "info"},
			{Upper: 320, Label: "Habitable Zone", Severity: "success"},
			{Upper: 1000, Label: "Hot", Severity: "warning"},
			{Upper: inf, Label: "Too Hot", Severity: "danger"},
		},
		Sizes: planetSizes,
	},
	SetResults: {
		Name: SetResults,
		Zones: []Band{
			{Upper: 273, Label: "Too Cold", Severity: "info"},
			{Upper: 373, Label: "Habitable Zone", Severity: "success"},
			{Upper: 1000, Label: "Hot", Severity: "warning"},
			{Upper: inf, Label: "Too Hot", Severity: "danger"},
		},
		Sizes: planetSizes,
	},
}

// Builtin returns a copy of a named breakpoint set.
func Builtin(name string) (Breakpoints, error) {
	b, ok := builtin[name]
	if !ok {
		return Breakpoints{}, apperrors.ConfigInvalid(fmt.Sprintf("unknown breakpoint set %q", name))
	}
	return b.clone(), nil
}

// BuiltinNames lists the shipped sets.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for k := range builtin {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// yamlBand lets a file omit the upper bound of the final band.
type yamlBand struct {
	Upper       *float64 `yaml:"upper"`
	Label       string   `yaml:"label"`
	Severity    string   `yaml:"severity"`
	Description string   `yaml:"description"`
}

type yamlTable struct {
	Name  string     `yaml:"name"`
	Zones []yamlBand `yaml:"zones"`
	Sizes []yamlBand `yaml:"sizes"`
}

// ParseYAML decodes and validates a breakpoint table.
func ParseYAML(data []byte) (Breakpoints, error) {
	var t yamlTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Breakpoints{}, &apperrors.AppError{Code: apperrors.CodeConfigInvalid, Message: "malformed breakpoint file", Cause: err}
	}
	b := Breakpoints{Name: t.Name, Zones: fromYAML(t.Zones), Sizes: fromYAML(t.Sizes)}
	if b.Name == "" {
		b.Name = "custom"
	}
	if err := b.Validate(); err != nil {
		return Breakpoints{}, err
	}
	return b, nil
}

// LoadFile reads a YAML breakpoint table from disk.
func LoadFile(path string) (Breakpoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Breakpoints{}, apperrors.Wrapf(err, "failed to read breakpoint file %s", path)
	}
	return ParseYAML(data)
}

func fromYAML(in []yamlBand) []Band {
	out := make([]Band, len(in))
	for i, b := range in {
		upper := inf
		if b.Upper != nil {
			upper = *b.Upper
		}
		out[i] = Band{Upper: upper, Label: b.Label, Severity: b.Severity, Description: b.Description}
	}
	return out
}

// Validate checks both tables are non-empty, strictly increasing and open-ended.
func (b Breakpoints) Validate() error {
	if err := validateBands("zones", b.Zones); err != nil {
		return err
	}
	return validateBands("sizes", b.Sizes)
}

func validateBands(table string, bands []Band) error {
	if len(bands) == 0 {
		return apperrors.ConfigInvalid(fmt.Sprintf("%s: at least one band is required", table))
	}
	for i, band := range bands {
		if band.Label == "" {
			return apperrors.ConfigInvalid(fmt.Sprintf("%s[%d]: label is required", table, i))
		}
		if math.IsNaN(band.Upper) {
			return apperrors.ConfigInvalid(fmt.Sprintf("%s[%d]: upper bound is NaN", table, i))
		}
		if i > 0 && band.Upper <= bands[i-1].Upper {
			return apperrors.ConfigInvalid(fmt.Sprintf("%s[%d]: upper bound %v must exceed %v", table, i, band.Upper, bands[i-1].Upper))
		}
	}
	if last := bands[len(bands)-1]; !math.IsInf(last.Upper, 1) {
		return apperrors.ConfigInvalid(fmt.Sprintf("%s: final band must be open-ended", table))
	}
	return nil
}

func (b Breakpoints) clone() Breakpoints {
	out := Breakpoints{Name: b.Name}
	out.Zones = append([]Band(nil), b.Zones...)
	out.Sizes = append([]Band(nil), b.Sizes...)
	return out
}
