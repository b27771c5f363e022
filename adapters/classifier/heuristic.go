package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"

	"exodash/domain/candidate"
	"exodash/domain/mission"
)

// HeuristicModelLabel tags verdicts that did not come from the trained model.
const HeuristicModelLabel = "offline-heuristic"

// Kepler's detection threshold for the multiple event statistic.
const minTransitSNR = 7.1

// Heuristic scores a candidate from a handful of vetting rules of thumb: plausible
// radius, plausible depth, signal-to-noise and any false-positive flags. It backs the
// labelled offline fallback and the local development model; it is not a substitute
// for the trained classifier.
func Heuristic(record candidate.Record) candidate.Verdict {
	score := 0.5
	var reasons []string

	schema, err := mission.SchemaFor(record.Mission)
	if err == nil {
		if r, ok := record.Float(schema.Physical.Radius); ok {
			if r > 0.5 && r < 20 {
				score += 0.15
				reasons = append(reasons, fmt.Sprintf("radius %.2f R⊕ is planetary", r))
			} else {
				score -= 0.2
				reasons = append(reasons, fmt.Sprintf("radius %.2f R⊕ is implausible for a planet", r))
			}
		}
		if d, ok := record.Float(schema.Physical.Depth); ok {
			ppm := d * schema.Physical.DepthScale
			if ppm > 50 && ppm < 30000 {
				score += 0.1
				reasons = append(reasons, fmt.Sprintf("depth %.0f ppm fits a planetary transit", ppm))
			} else {
				score -= 0.15
				reasons = append(reasons, fmt.Sprintf("depth %.0f ppm suggests an eclipsing binary or noise", ppm))
			}
		}
	} else {
		reasons = append(reasons, "mission unknown, physical checks skipped")
	}

	if snr, ok := record.Float("koi_model_snr"); ok {
		if snr >= minTransitSNR {
			score += 0.15
			reasons = append(reasons, fmt.Sprintf("SNR %.1f above detection threshold", snr))
		} else {
			score -= 0.15
			reasons = append(reasons, fmt.Sprintf("SNR %.1f below detection threshold", snr))
		}
	}

	for _, name := range record.Names() {
		if strings.HasPrefix(name, "koi_fpflag_") && record.Get(name).String() == "1" {
			score -= 0.35
			reasons = append(reasons, fmt.Sprintf("false-positive flag `%s` is set", name))
		}
	}

	score = math.Max(0.01, math.Min(0.99, score))
	positive := score >= 0.5
	confidence := score
	if !positive {
		confidence = 1 - score
	}
	confidence = math.Round(confidence*1000) / 1000

	var b strings.Builder
	if positive {
		b.WriteString("**Heuristic:** consistent with a planetary transit.\n\n")
	} else {
		b.WriteString("**Heuristic:** likely a false positive.\n\n")
	}
	for _, r := range reasons {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}

	return candidate.Verdict{
		IsPositive:  positive,
		Confidence:  confidence,
		Explanation: strings.TrimSpace(b.String()),
		ModelLabel:  HeuristicModelLabel,
	}
}

// HeuristicClassifier serves Heuristic through the ports.Classifier interface.
type HeuristicClassifier struct{}

func (HeuristicClassifier) Classify(_ context.Context, record candidate.Record) (candidate.Verdict, error) {
	return Heuristic(record), nil
}

func (HeuristicClassifier) ClassifyBatch(_ context.Context, records []candidate.Record) ([]candidate.Verdict, error) {
	out := make([]candidate.Verdict, len(records))
	for i, r := range records {
		out[i] = Heuristic(r)
	}
	return out, nil
}
