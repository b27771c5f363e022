// Package csvio reads uploaded candidate tables and writes classified results as
// RFC-4180 CSV.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"exodash/domain/batch"
	"exodash/domain/candidate"
	"exodash/domain/core"
	"exodash/domain/mission"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Parse reads a header row followed by data rows. Any malformed data row fails the
// whole table with a CsvParseError naming its 1-based position among data rows.
func Parse(data []byte) (*batch.Table, error) {
	return Read(bytes.NewReader(data))
}

// Read is Parse over a stream. A leading UTF-8 byte order mark is dropped.
func Read(r io.Reader) (*batch.Table, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1

	raw, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &core.CsvParseError{Row: 0, Message: "file is empty, a header row is required"}
	}
	if err != nil {
		return nil, &core.CsvParseError{Row: 0, Message: parseMessage(err)}
	}
	header, err := normalizeHeader(raw)
	if err != nil {
		return nil, err
	}

	detected, _ := mission.Detect(header)
	canonicalize(header, detected)
	table := &batch.Table{Header: header, Mission: detected}
	row := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, &core.CsvParseError{Row: row, Message: parseMessage(err)}
		}
		if blankLine(rec) {
			row--
			continue
		}
		record, err := toRecord(header, rec, table.Mission, row)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func normalizeHeader(raw []string) ([]string, error) {
	header := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, &core.CsvParseError{Row: 0, Message: fmt.Sprintf("header column %d is empty", i+1)}
		}
		key := strings.ToLower(h)
		if seen[key] {
			return nil, &core.CsvParseError{Row: 0, Message: fmt.Sprintf("duplicate header column %q", h)}
		}
		seen[key] = true
		header[i] = h
	}
	return header, nil
}

// canonicalize renames columns that match a known name case-insensitively to that
// name, so values are stored and exported under the schema spelling.
func canonicalize(header []string, detected string) {
	schema, err := mission.SchemaFor(detected)
	for i, h := range header {
		if strings.EqualFold(h, candidate.MissionKey) {
			header[i] = candidate.MissionKey
			continue
		}
		if err != nil {
			continue
		}
		for _, f := range schema.Features {
			if strings.EqualFold(h, f.Name) {
				header[i] = f.Name
				break
			}
		}
	}
}

// blankLine matches whitespace-only lines; encoding/csv already drops truly empty ones.
func blankLine(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}

func toRecord(header, rec []string, detected string, row int) (candidate.Record, error) {
	if len(rec) != len(header) {
		return candidate.Record{}, &core.CsvParseError{
			Row:     row,
			Message: fmt.Sprintf("expected %d fields, got %d", len(header), len(rec)),
		}
	}
	record := candidate.NewRecord(detected)
	for i, cell := range rec {
		if strings.TrimSpace(cell) == "" {
			return candidate.Record{}, &core.CsvParseError{
				Row:     row,
				Message: fmt.Sprintf("missing value for column %q", header[i]),
			}
		}
		if header[i] == candidate.MissionKey {
			record.Mission = strings.TrimSpace(cell)
			continue
		}
		record.Values[header[i]] = candidate.Coerce(cell)
	}
	return record, nil
}

func parseMessage(err error) string {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
