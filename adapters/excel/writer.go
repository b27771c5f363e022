// Package excel renders classified batches as XLSX workbooks.
package excel

import (
	"fmt"
	"log"
	"strings"
	"time"

	"exodash/domain/batch"
	"exodash/domain/candidate"
	apperrors "exodash/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	ResultsSheet = "Results"
	SummarySheet = "Summary"
)

// Export builds a workbook with one Results row per candidate and a Summary sheet.
// Numeric feature values are written as numbers, everything else as text.
func Export(header []string, rows []candidate.Record, verdicts []candidate.Verdict, summary batch.Summary) ([]byte, error) {
	if len(rows) != len(verdicts) {
		return nil, apperrors.InternalError(fmt.Sprintf("%d rows but %d verdicts", len(rows), len(verdicts)))
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return nil, apperrors.Wrap(err, "failed to name results sheet")
	}
	if err := writeResults(f, header, rows, verdicts); err != nil {
		return nil, err
	}
	if err := writeSummary(f, summary); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialise workbook")
	}
	log.Printf("[Excel] Workbook with %d rows written in %.2fms", len(rows), float64(time.Since(start).Nanoseconds())/1e6)
	return buf.Bytes(), nil
}

func writeResults(f *excelize.File, header []string, rows []candidate.Record, verdicts []candidate.Verdict) error {
	features := batch.FeatureColumns(header)

	titles := make([]interface{}, 0, len(features)+len(batch.ResultColumns))
	for _, h := range features {
		titles = append(titles, h)
	}
	for _, h := range batch.ResultColumns {
		titles = append(titles, h)
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &titles); err != nil {
		return apperrors.Wrap(err, "failed to write results header")
	}
	if err := boldRow(f, ResultsSheet, 1); err != nil {
		return err
	}

	for i, r := range rows {
		cells := make([]interface{}, 0, len(titles))
		for _, col := range features {
			cells = append(cells, cellValue(r, col))
		}
		v := verdicts[i]
		cells = append(cells, v.IsPositive, v.Confidence, batch.VerdictText(v.Explanation), batch.VerdictText(v.ModelLabel))

		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.Wrap(err, "failed to address results row")
		}
		if err := f.SetSheetRow(ResultsSheet, addr, &cells); err != nil {
			return apperrors.Wrapf(err, "failed to write results row %d", i+1)
		}
	}

	err := f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return apperrors.Wrap(err, "failed to freeze results header")
}

func writeSummary(f *excelize.File, s batch.Summary) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return apperrors.Wrap(err, "failed to add summary sheet")
	}
	lines := [][]interface{}{
		{"metric", "value"},
		{"total", s.Total},
		{"positive", s.Positive},
		{"negative", s.Negative},
		{"positive_rate", s.PositiveRate()},
		{"mean_confidence", s.MeanConfidence},
		{"median_confidence", s.MedianConfidence},
		{"stddev_confidence", s.StdDevConfidence},
		{},
		{"confidence_from", "confidence_to", "count"},
	}
	for _, b := range s.Histogram {
		lines = append(lines, []interface{}{b.Lower, b.Upper, b.Count})
	}
	for i := range lines {
		if len(lines[i]) == 0 {
			continue
		}
		addr, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, addr, &lines[i]); err != nil {
			return apperrors.Wrap(err, "failed to write summary")
		}
	}
	if err := boldRow(f, SummarySheet, 1); err != nil {
		return err
	}
	return boldRow(f, SummarySheet, 10)
}

func boldRow(f *excelize.File, sheet string, row int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.Wrap(err, "failed to create header style")
	}
	return apperrors.Wrap(f.SetRowStyle(sheet, row, row, style), "failed to style header row")
}

func cellValue(r candidate.Record, column string) interface{} {
	if strings.EqualFold(column, candidate.MissionKey) {
		return r.Mission
	}
	v := r.Get(column)
	if x, ok := v.Float(); ok {
		return x
	}
	return v.String()
}
