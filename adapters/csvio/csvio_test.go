package csvio

import (
	"errors"
	"strings"
	"testing"

	"exodash/domain/batch"
	"exodash/domain/candidate"
	"exodash/domain/core"
	"exodash/domain/mission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	data := "pl_orbper,pl_rade,note\n3.2,1.1,first\n\n4.5,2.0,\"second, quoted\"\n"
	table, err := Parse([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"pl_orbper", "pl_rade", "note"}, table.Header)
	require.Len(t, table.Rows, 2)
	x, ok := table.Rows[0].Float("pl_orbper")
	assert.True(t, ok)
	assert.Equal(t, 3.2, x)
	assert.Equal(t, "second, quoted", table.Rows[1].Get("note").String())
	assert.False(t, table.Rows[1].Get("note").IsNumber())
}

func TestParseMissingValueNamesRow(t *testing.T) {
	data := "a,b\n1,2\n3,4\n5,\n7,8\n"
	_, err := Parse([]byte(data))
	require.Error(t, err)

	var pe *core.CsvParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Row)
	assert.Contains(t, pe.Message, `"b"`)
}

func TestParseRowErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		row  int
	}{
		{"too few fields", "a,b\n1\n", 1},
		{"too many fields", "a,b\n1,2\n1,2,3\n", 2},
		{"bare quote", "a,b\n1,2\n1,x\"y\n", 2},
		{"blank lines do not count", "a,b\n1,2\n   \n\n3\n", 2},
		{"empty file", "", 0},
		{"duplicate header", "a,A\n1,2\n", 0},
		{"empty header cell", "a,,c\n1,2,3\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			var pe *core.CsvParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.row, pe.Row)
		})
	}
}

func TestParseStripsBOMAndDetectsMission(t *testing.T) {
	schema, err := mission.SchemaFor(mission.TESS)
	require.NoError(t, err)
	body, err := Template(schema.CSVHeader(), schema.CSVSample())
	require.NoError(t, err)

	table, err := Parse(append([]byte("\xef\xbb\xbf"), body...))
	require.NoError(t, err)
	assert.Equal(t, schema.CSVHeader()[0], table.Header[0])
	assert.Equal(t, mission.TESS, table.Mission)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, mission.TESS, table.Rows[0].Mission)
}

func TestParseMissionColumn(t *testing.T) {
	table, err := Parse([]byte("mission,x\nK2,1\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "K2", table.Rows[0].Mission)
	assert.False(t, table.Rows[0].Get("mission").IsSet())
}

func TestParseCanonicalizesDetectedHeader(t *testing.T) {
	schema, err := mission.SchemaFor(mission.Kepler)
	require.NoError(t, err)
	upper := make([]string, 0, len(schema.Features)+1)
	for _, name := range schema.CSVHeader() {
		upper = append(upper, strings.ToUpper(name))
	}
	upper = append(upper, "Comment")
	body, err := Template(upper, append(schema.CSVSample(), "kept as is"))
	require.NoError(t, err)

	table, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, mission.Kepler, table.Mission)
	assert.Equal(t, append(schema.CSVHeader(), "Comment"), table.Header)
	require.Len(t, table.Rows, 1)
	x, ok := table.Rows[0].Float("koi_period")
	assert.True(t, ok)
	assert.Equal(t, 129.9, x)
	assert.False(t, table.Rows[0].Get("KOI_PERIOD").IsSet())
	assert.Equal(t, "kept as is", table.Rows[0].Get("Comment").String())
}

func TestCapitalizedMissionColumnRoundTrip(t *testing.T) {
	table, err := Parse([]byte("Mission,pl_orbper\nK2,1.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{candidate.MissionKey, "pl_orbper"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "K2", table.Rows[0].Mission)

	verdicts := []candidate.Verdict{{IsPositive: true, Confidence: 0.7, Explanation: "x", ModelLabel: "m"}}
	out, err := Bytes(table.Header, table.Rows, verdicts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "mission,pl_orbper,is_exoplanet,confidence,details,model_type\nK2,1.5,"))

	again, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, again.Rows, 1)
	assert.Equal(t, "K2", again.Rows[0].Mission)
}

func TestCellValueMissionColumnIgnoresCase(t *testing.T) {
	r := candidate.NewRecord("TESS")
	assert.Equal(t, "TESS", batch.CellValue(r, "Mission"))
	assert.Equal(t, "TESS", batch.CellValue(r, candidate.MissionKey))
}

func TestWriteRoundTrip(t *testing.T) {
	rows := []candidate.Record{
		candidate.NewRecord("").With("period", candidate.Number(10.5)).With("name", candidate.Text("KOI-1")),
		candidate.NewRecord("").With("period", candidate.Number(3)).With("name", candidate.Text("KOI-2")),
	}
	verdicts := []candidate.Verdict{
		{IsPositive: true, Confidence: 0.91, Explanation: "borderline, re-check", ModelLabel: "xgb"},
		{IsPositive: false, Confidence: 0.12},
	}
	out, err := Bytes([]string{"period", "name"}, rows, verdicts)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"borderline, re-check"`)

	table, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, append([]string{"period", "name"}, batch.ResultColumns...), table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "borderline, re-check", table.Rows[0].Get(batch.ColumnDetails).String())
	assert.Equal(t, "0.91", table.Rows[0].Get(batch.ColumnConfidence).String())
	assert.Equal(t, "true", table.Rows[0].Get(batch.ColumnIsExoplanet).String())
	assert.Equal(t, batch.Placeholder, table.Rows[1].Get(batch.ColumnDetails).String())
	assert.Equal(t, batch.Placeholder, table.Rows[1].Get(batch.ColumnModelType).String())

	// exporting a re-uploaded export does not duplicate result columns
	again, err := Bytes(table.Header, table.Rows, verdicts)
	require.NoError(t, err)
	firstLine := strings.SplitN(string(again), "\n", 2)[0]
	assert.Equal(t, "period,name,is_exoplanet,confidence,details,model_type", firstLine)
}

func TestWriteLengthMismatch(t *testing.T) {
	_, err := Bytes([]string{"a"}, []candidate.Record{candidate.NewRecord("")}, nil)
	assert.Error(t, err)
}
