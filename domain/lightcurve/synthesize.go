// Package lightcurve renders an idealised transit as a normalised brightness series.
package lightcurve

import (
	"math"

	apperrors "exodash/internal/errors"

	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultPoints is the series length used when callers have no preference.
	DefaultPoints = 100

	// SamplesPerHour scales transit duration to window width before clipping.
	SamplesPerHour = 3.0

	MinWindow = 10
	MaxWindow = 40

	// RampFraction of the window spent in ingress, and again in egress.
	RampFraction = 0.1
)

// Sample is one point of the series. Brightness is relative flux in [0, 1].
type Sample struct {
	Time       int     `json:"time"`
	Brightness float64 `json:"brightness"`
}

// Synthesize builds a trapezoidal transit of depthPPM lasting durationHours, centered in
// a series of pointCount samples. The result depends only on its arguments.
func Synthesize(depthPPM, durationHours float64, pointCount int) ([]Sample, error) {
	switch {
	case math.IsNaN(depthPPM) || math.IsInf(depthPPM, 0) || depthPPM < 0:
		return nil, apperrors.InvalidInput("transit depth must be a finite value >= 0 ppm")
	case math.IsNaN(durationHours) || math.IsInf(durationHours, 0) || durationHours <= 0:
		return nil, apperrors.InvalidInput("transit duration must be a finite value > 0 hours")
	case pointCount <= 0:
		return nil, apperrors.InvalidInput("point count must be positive")
	}

	width := WindowWidth(durationHours, pointCount)
	start := (pointCount - width) / 2
	ramp := int(math.Floor(float64(width) * RampFraction))
	if ramp < 1 {
		ramp = 1
	}
	depth := depthPPM / 1e6

	out := make([]Sample, pointCount)
	for i := range out {
		b := 1.0
		if p := i - start; p >= 0 && p < width {
			frac := 1.0
			if p < ramp {
				frac = float64(p+1) / float64(ramp)
			}
			if q := width - 1 - p; q < ramp {
				frac = math.Min(frac, float64(q+1)/float64(ramp))
			}
			b = 1 - depth*frac
		}
		out[i] = Sample{Time: i, Brightness: clamp01(b)}
	}
	return out, nil
}

// WindowWidth is the in-transit sample count for a duration, clipped to
// [MinWindow, MaxWindow] and never wider than the series.
func WindowWidth(durationHours float64, pointCount int) int {
	w := int(math.Round(durationHours * SamplesPerHour))
	if w < MinWindow {
		w = MinWindow
	}
	if w > MaxWindow {
		w = MaxWindow
	}
	if w > pointCount {
		w = pointCount
	}
	return w
}

// MinBrightness returns the deepest point of the series, 1 for an empty one.
func MinBrightness(samples []Sample) float64 {
	if len(samples) == 0 {
		return 1
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Brightness
	}
	return floats.Min(values)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
