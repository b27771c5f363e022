package batch

import (
	"math"
	"sort"

	"exodash/domain/candidate"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBins is the number of equal-width confidence buckets in a Summary.
const HistogramBins = 10

// Bin is one confidence histogram bucket, [Lower, Upper) except the last which
// includes 1.0.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Summary aggregates the verdicts of a finished job.
type Summary struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Total    int `json:"total"`

	MeanConfidence   float64 `json:"mean_confidence"`
	MedianConfidence float64 `json:"median_confidence"`
	StdDevConfidence float64 `json:"stddev_confidence"`
	Histogram        []Bin   `json:"confidence_histogram"`
}

// PositiveRate is the share of positive verdicts, 0 for an empty batch.
func (s Summary) PositiveRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Positive) / float64(s.Total)
}

// Summarize counts verdicts and describes their confidence distribution.
func Summarize(verdicts []candidate.Verdict) Summary {
	s := Summary{Total: len(verdicts)}
	confidences := make([]float64, len(verdicts))
	for i, v := range verdicts {
		if v.IsPositive {
			s.Positive++
		} else {
			s.Negative++
		}
		confidences[i] = v.Confidence
	}
	if len(confidences) == 0 {
		s.Histogram = emptyHistogram()
		return s
	}

	s.MeanConfidence, _ = stats.Mean(confidences)
	s.MedianConfidence, _ = stats.Median(confidences)
	s.StdDevConfidence, _ = stats.StandardDeviation(confidences)
	s.Histogram = histogram(confidences)
	return s
}

func dividers() []float64 {
	d := make([]float64, HistogramBins+1)
	for i := range d {
		d[i] = float64(i) / HistogramBins
	}
	// stat.Histogram bins are half-open; nudge the top edge so 1.0 lands in the last bin
	d[HistogramBins] = math.Nextafter(1, 2)
	return d
}

func histogram(confidences []float64) []Bin {
	sorted := make([]float64, len(confidences))
	for i, c := range confidences {
		sorted[i] = math.Min(math.Max(c, 0), 1)
	}
	sort.Float64s(sorted)

	d := dividers()
	counts := stat.Histogram(nil, d, sorted, nil)
	bins := emptyHistogram()
	for i := range bins {
		bins[i].Count = int(counts[i])
	}
	return bins
}

func emptyHistogram() []Bin {
	bins := make([]Bin, HistogramBins)
	for i := range bins {
		bins[i] = Bin{Lower: float64(i) / HistogramBins, Upper: float64(i+1) / HistogramBins}
	}
	return bins
}
