package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"exodash/domain/batch"
	"exodash/domain/candidate"
	apperrors "exodash/internal/errors"
)

// Write emits the feature columns of header followed by the result columns, one line
// per row. rows and verdicts must be the same length.
func Write(w io.Writer, header []string, rows []candidate.Record, verdicts []candidate.Verdict) error {
	if len(rows) != len(verdicts) {
		return apperrors.InternalError(fmt.Sprintf("%d rows but %d verdicts", len(rows), len(verdicts)))
	}
	features := batch.FeatureColumns(header)

	cw := csv.NewWriter(w)
	out := make([]string, 0, len(features)+len(batch.ResultColumns))
	out = append(out, features...)
	out = append(out, batch.ResultColumns...)
	if err := cw.Write(out); err != nil {
		return apperrors.Wrap(err, "failed to write csv header")
	}

	for i, r := range rows {
		out = out[:0]
		for _, col := range features {
			out = append(out, batch.CellValue(r, col))
		}
		v := verdicts[i]
		out = append(out,
			strconv.FormatBool(v.IsPositive),
			strconv.FormatFloat(v.Confidence, 'f', -1, 64),
			batch.VerdictText(v.Explanation),
			batch.VerdictText(v.ModelLabel),
		)
		if err := cw.Write(out); err != nil {
			return apperrors.Wrapf(err, "failed to write csv row %d", i+1)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Wrap(err, "failed to flush csv")
	}
	return nil
}

// Bytes is Write into a buffer.
func Bytes(header []string, rows []candidate.Record, verdicts []candidate.Verdict) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, header, rows, verdicts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Template renders a mission upload template: the header, then sampleRow when given.
func Template(header, sampleRow []string) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, apperrors.Wrap(err, "failed to write template header")
	}
	if sampleRow != nil {
		if err := cw.Write(sampleRow); err != nil {
			return nil, apperrors.Wrap(err, "failed to write template row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, apperrors.Wrap(err, "failed to flush template")
	}
	return buf.Bytes(), nil
}
