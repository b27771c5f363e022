// Package analytics serves the advisory model analytics panel, substituting a bundled
// snapshot when the model service cannot answer.
package analytics

import (
	"context"
	"log"
	"sort"

	"exodash/ports"
)

// Service loads analytics from a source with fallback.
type Service struct {
	source ports.AnalyticsSource
}

// NewService wraps source. A nil source always yields the fallback.
func NewService(source ports.AnalyticsSource) *Service {
	return &Service{source: source}
}

// Load never fails: any remote error is logged and answered with Fallback().
// Feature importance is returned sorted by descending weight.
func (s *Service) Load(ctx context.Context) ports.ModelAnalytics {
	if s.source == nil {
		return Fallback()
	}
	a, err := s.source.Analytics(ctx)
	if err != nil {
		log.Printf("[Analytics] Model service analytics unavailable, serving %s: %v", FallbackVersion, err)
		return Fallback()
	}
	if len(a.FeatureImportance) == 0 && len(a.PerformanceMetrics) == 0 {
		log.Printf("[Analytics] Model service returned an empty snapshot, serving %s", FallbackVersion)
		return Fallback()
	}
	sort.SliceStable(a.FeatureImportance, func(i, j int) bool {
		return a.FeatureImportance[i].Importance > a.FeatureImportance[j].Importance
	})
	a.Fallback = false
	a.FallbackVersion = ""
	return a
}
