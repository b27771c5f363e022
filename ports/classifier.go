package ports

import (
	"context"

	"exodash/domain/candidate"
)

// Classifier is the remote model service. Implementations must return verdicts for a
// batch in the same order as the records.
type Classifier interface {
	Classify(ctx context.Context, record candidate.Record) (candidate.Verdict, error)
	ClassifyBatch(ctx context.Context, records []candidate.Record) ([]candidate.Verdict, error)
}

// AnalyticsSource serves the advisory model analytics snapshot.
type AnalyticsSource interface {
	Analytics(ctx context.Context) (ModelAnalytics, error)
}

// FeatureImportance is one bar of the importance chart.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelAnalytics is the informational snapshot shown next to results. Fallback is set
// when the snapshot did not come from the remote service.
type ModelAnalytics struct {
	FeatureImportance  []FeatureImportance    `json:"feature_importance"`
	PerformanceMetrics map[string]float64     `json:"performance_metrics"`
	ConfusionMatrix    map[string]int         `json:"confusion_matrix"`
	ModelInfo          map[string]interface{} `json:"model_info"`
	Fallback           bool                   `json:"fallback"`
	FallbackVersion    string                 `json:"fallback_version,omitempty"`
}
