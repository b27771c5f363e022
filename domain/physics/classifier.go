// Package physics buckets continuous planet measurements into display categories.
package physics

import "math"

// UnknownLabel is returned for absent or non-finite input.
const UnknownLabel = "Unknown"

// Zone is a habitability bucket. Index is the band position, -1 for unknown.
type Zone struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Index    int    `json:"index"`
}

// Category is a planet-size bucket. Index is the band position, -1 for unknown.
type Category struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Index       int    `json:"index"`
}

// Classifier applies one breakpoint table. The zero value is not usable; build it
// with New.
type Classifier struct {
	table Breakpoints
}

// New returns a classifier over a validated table.
func New(table Breakpoints) (*Classifier, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Classifier{table: table.clone()}, nil
}

// MustBuiltin is for tests and defaults where the set name is a constant.
func MustBuiltin(name string) *Classifier {
	b, err := Builtin(name)
	if err != nil {
		panic(err)
	}
	c, err := New(b)
	if err != nil {
		panic(err)
	}
	return c
}

// Table exposes the breakpoints in use, for display next to the labels.
func (c *Classifier) Table() Breakpoints {
	return c.table.clone()
}

// HabitabilityZone buckets an equilibrium temperature in Kelvin.
func (c *Classifier) HabitabilityZone(eqTempKelvin *float64) Zone {
	i := bucket(c.table.Zones, eqTempKelvin)
	if i < 0 {
		return Zone{Label: UnknownLabel, Severity: "unknown", Index: -1}
	}
	b := c.table.Zones[i]
	return Zone{Label: b.Label, Severity: b.Severity, Index: i}
}

// PlanetCategory buckets a radius in Earth radii.
func (c *Classifier) PlanetCategory(radiusEarth *float64) Category {
	i := bucket(c.table.Sizes, radiusEarth)
	if i < 0 {
		return Category{Label: UnknownLabel, Description: "Radius not available", Index: -1}
	}
	b := c.table.Sizes[i]
	return Category{Label: b.Label, Description: b.Description, Index: i}
}

// bucket returns the first band whose upper bound is >= v, so a boundary value lands
// in the lower bucket.
func bucket(bands []Band, v *float64) int {
	if v == nil || math.IsNaN(*v) {
		return -1
	}
	for i, b := range bands {
		if *v <= b.Upper {
			return i
		}
	}
	return len(bands) - 1
}
