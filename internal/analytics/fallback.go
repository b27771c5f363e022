package analytics

import "exodash/ports"

// FallbackVersion identifies the bundled snapshot so screens can say which one they show.
const FallbackVersion = "bundled-2024.2"

// fallbackSnapshot is served when the model service cannot provide analytics. It is
// never mutated; Fallback() hands out copies.
var fallbackSnapshot = ports.ModelAnalytics{
	FeatureImportance: []ports.FeatureImportance{
		{Feature: "koi_model_snr", Importance: 0.214},
		{Feature: "koi_fpflag_ss", Importance: 0.162},
		{Feature: "koi_fpflag_co", Importance: 0.141},
		{Feature: "koi_fpflag_nt", Importance: 0.117},
		{Feature: "koi_prad", Importance: 0.082},
		{Feature: "koi_depth", Importance: 0.071},
		{Feature: "koi_period", Importance: 0.058},
		{Feature: "koi_duration", Importance: 0.047},
		{Feature: "koi_teq", Importance: 0.039},
		{Feature: "koi_impact", Importance: 0.035},
		{Feature: "koi_fpflag_ec", Importance: 0.019},
		{Feature: "koi_insol", Importance: 0.015},
	},
	PerformanceMetrics: map[string]float64{
		"accuracy":  0.912,
		"precision": 0.897,
		"recall":    0.884,
		"f1_score":  0.890,
		"roc_auc":   0.962,
	},
	ConfusionMatrix: map[string]int{
		"true_positive":  1942,
		"false_positive": 223,
		"true_negative":  2381,
		"false_negative": 255,
	},
	ModelInfo: map[string]interface{}{
		"name":          "stacked-ensemble",
		"training_rows": 9564,
		"missions":      []string{"Kepler", "K2", "TESS"},
	},
}

// Fallback returns a copy of the bundled snapshot flagged as a fallback.
func Fallback() ports.ModelAnalytics {
	s := fallbackSnapshot
	s.FeatureImportance = append([]ports.FeatureImportance(nil), fallbackSnapshot.FeatureImportance...)
	s.PerformanceMetrics = make(map[string]float64, len(fallbackSnapshot.PerformanceMetrics))
	for k, v := range fallbackSnapshot.PerformanceMetrics {
		s.PerformanceMetrics[k] = v
	}
	s.ConfusionMatrix = make(map[string]int, len(fallbackSnapshot.ConfusionMatrix))
	for k, v := range fallbackSnapshot.ConfusionMatrix {
		s.ConfusionMatrix[k] = v
	}
	s.ModelInfo = make(map[string]interface{}, len(fallbackSnapshot.ModelInfo))
	for k, v := range fallbackSnapshot.ModelInfo {
		s.ModelInfo[k] = v
	}
	s.Fallback = true
	s.FallbackVersion = FallbackVersion
	return s
}
