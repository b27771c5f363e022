package classifier

import (
	"context"
	"testing"

	"exodash/domain/candidate"
	"exodash/domain/mission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicSamplesArePositive(t *testing.T) {
	for _, id := range mission.Missions() {
		sample, err := mission.SampleFor(id)
		require.NoError(t, err)
		v := Heuristic(sample)
		assert.True(t, v.IsPositive, id)
		assert.Equal(t, HeuristicModelLabel, v.ModelLabel)
		assert.GreaterOrEqual(t, v.Confidence, 0.5)
		assert.LessOrEqual(t, v.Confidence, 1.0)
	}
}

func TestHeuristicFlagsDominate(t *testing.T) {
	sample, _ := mission.SampleFor(mission.Kepler)
	flagged := sample.With("koi_fpflag_ss", candidate.Text("1")).With("koi_fpflag_co", candidate.Number(1))

	v := Heuristic(flagged)
	assert.False(t, v.IsPositive)
	assert.Contains(t, v.Explanation, "koi_fpflag_ss")
	assert.Contains(t, v.Explanation, "koi_fpflag_co")
}

func TestHeuristicIsDeterministic(t *testing.T) {
	sample, _ := mission.SampleFor(mission.TESS)
	assert.Equal(t, Heuristic(sample), Heuristic(sample))
}

func TestHeuristicClassifierBatch(t *testing.T) {
	a, _ := mission.SampleFor(mission.K2)
	b := candidate.NewRecord("")
	out, err := HeuristicClassifier{}.ClassifyBatch(context.Background(), []candidate.Record{a, b})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, out[1].Explanation, "mission unknown")
}
