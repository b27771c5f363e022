package physics

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	apperrors "exodash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestKeplerScenario(t *testing.T) {
	for _, set := range BuiltinNames() {
		c := MustBuiltin(set)
		assert.Equal(t, "Too Cold", c.HabitabilityZone(ptr(188)).Label, set)
		assert.Equal(t, "Earth-like", c.PlanetCategory(ptr(1.17)).Label, set)
	}
}

func TestBoundariesGoToLowerBucket(t *testing.T) {
	c := MustBuiltin(SetDashboard)

	assert.Equal(t, "Too Cold", c.HabitabilityZone(ptr(200)).Label)
	assert.Equal(t, "Habitable Zone", c.HabitabilityZone(ptr(200.0001)).Label)
	assert.Equal(t, "Habitable Zone", c.HabitabilityZone(ptr(320)).Label)
	assert.Equal(t, "Hot", c.HabitabilityZone(ptr(1000)).Label)
	assert.Equal(t, "Too Hot", c.HabitabilityZone(ptr(1000.5)).Label)

	assert.Equal(t, "Earth-like", c.PlanetCategory(ptr(1.25)).Label)
	assert.Equal(t, "Super-Earth", c.PlanetCategory(ptr(2.0)).Label)
	assert.Equal(t, "Neptune-like", c.PlanetCategory(ptr(6.0)).Label)
	assert.Equal(t, "Jupiter-like", c.PlanetCategory(ptr(15.0)).Label)
	assert.Equal(t, "Super-Jupiter", c.PlanetCategory(ptr(15.01)).Label)

	r := MustBuiltin(SetResults)
	assert.Equal(t, "Too Cold", r.HabitabilityZone(ptr(273)).Label)
	assert.Equal(t, "Habitable Zone", r.HabitabilityZone(ptr(373)).Label)
}

func TestMonotonic(t *testing.T) {
	for _, set := range BuiltinNames() {
		c := MustBuiltin(set)
		prevZone, prevSize := -1, -1
		for v := -50.0; v <= 3000; v += 0.5 {
			z := c.HabitabilityZone(ptr(v)).Index
			s := c.PlanetCategory(ptr(v / 100)).Index
			assert.GreaterOrEqual(t, z, prevZone, "%s zone at %v", set, v)
			assert.GreaterOrEqual(t, s, prevSize, "%s size at %v", set, v/100)
			prevZone, prevSize = z, s
		}
		assert.Equal(t, len(c.Table().Zones)-1, prevZone)
	}
}

func TestUnknownForAbsentInput(t *testing.T) {
	c := MustBuiltin(SetDashboard)

	z := c.HabitabilityZone(nil)
	assert.Equal(t, UnknownLabel, z.Label)
	assert.Equal(t, -1, z.Index)
	assert.Equal(t, UnknownLabel, c.PlanetCategory(nil).Label)
	assert.Equal(t, UnknownLabel, c.PlanetCategory(ptr(math.NaN())).Label)
	assert.Equal(t, "Too Hot", c.HabitabilityZone(ptr(math.Inf(1))).Label)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
name: product-draft
zones:
  - {upper: 250, label: Frozen, severity: info}
  - {upper: 350, label: Temperate, severity: success}
  - {label: Scorched, severity: danger}
sizes:
  - {upper: 1.5, label: Small}
  - {label: Large}
`)
	table, err := ParseYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "product-draft", table.Name)
	assert.True(t, math.IsInf(table.Zones[2].Upper, 1))

	c, err := New(table)
	require.NoError(t, err)
	assert.Equal(t, "Frozen", c.HabitabilityZone(ptr(250)).Label)
	assert.Equal(t, "Scorched", c.HabitabilityZone(ptr(351)).Label)
	assert.Equal(t, "Large", c.PlanetCategory(ptr(1.6)).Label)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zones:\n  - {label: Any}\nsizes:\n  - {label: Any}\n"), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom", table.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInvalidTables(t *testing.T) {
	tests := map[string]string{
		"not increasing": "zones:\n  - {upper: 300, label: A}\n  - {upper: 200, label: B}\n  - {label: C}\nsizes:\n  - {label: S}\n",
		"closed final":   "zones:\n  - {upper: 300, label: A}\nsizes:\n  - {label: S}\n",
		"empty sizes":    "zones:\n  - {label: A}\n",
		"missing label":  "zones:\n  - {upper: 1}\n  - {label: B}\nsizes:\n  - {label: S}\n",
		"malformed":      "zones: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseYAML([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
		})
	}
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("nope")
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{SetDashboard, SetResults}, BuiltinNames())
}
