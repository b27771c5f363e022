// Package batch defines the bulk-classification job model shared by the ingestion
// pipeline, its codecs and the HTTP surface.
package batch

import (
	"strings"

	"exodash/domain/candidate"
)

// State is the lifecycle position of a batch job.
type State string

const (
	StateIdle       State = "idle"
	StateParsing    State = "parsing"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether the job has settled.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Result column names appended to exported rows, in order.
const (
	ColumnIsExoplanet = "is_exoplanet"
	ColumnConfidence  = "confidence"
	ColumnDetails     = "details"
	ColumnModelType   = "model_type"
)

// ResultColumns are appended after the feature columns on export.
var ResultColumns = []string{ColumnIsExoplanet, ColumnConfidence, ColumnDetails, ColumnModelType}

// Placeholder is written for empty verdict text so that every exported cell is non-empty
// and the file parses back.
const Placeholder = "n/a"

// Table is a parsed upload: the header in file order and one record per data row.
type Table struct {
	Header  []string
	Rows    []candidate.Record
	Mission string
}

// FeatureColumns drops result columns from a header, so re-uploading an export does
// not duplicate them.
func FeatureColumns(header []string) []string {
	out := make([]string, 0, len(header))
	for _, h := range header {
		if isResultColumn(h) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func isResultColumn(name string) bool {
	for _, c := range ResultColumns {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}

// CellValue renders the value a row holds for column, reading the mission column from
// the record itself.
func CellValue(r candidate.Record, column string) string {
	if strings.EqualFold(column, candidate.MissionKey) {
		return r.Mission
	}
	return r.Get(column).String()
}

// VerdictText substitutes Placeholder for empty verdict strings.
func VerdictText(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
