package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exodash/adapters/classifier"
	"exodash/domain/candidate"
	"exodash/domain/mission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *classifier.Client {
	t.Helper()
	srv := httptest.NewServer(newRouter(0))
	t.Cleanup(srv.Close)

	cfg := classifier.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Timeout = 5 * time.Second
	c, err := classifier.NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestClientAgainstMockService(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	sample, err := mission.SampleFor(mission.Kepler)
	require.NoError(t, err)

	v, err := c.Classify(ctx, sample)
	require.NoError(t, err)
	want := classifier.Heuristic(sample)
	assert.Equal(t, want.IsPositive, v.IsPositive)
	assert.InDelta(t, want.Confidence, v.Confidence, 1e-9)
	assert.Equal(t, classifier.HeuristicModelLabel, v.ModelLabel)

	tess, err := mission.SampleFor(mission.TESS)
	require.NoError(t, err)
	verdicts, err := c.ClassifyBatch(ctx, []candidate.Record{sample, tess})
	require.NoError(t, err)
	require.Len(t, verdicts, 2)
	assert.Equal(t, classifier.Heuristic(tess).IsPositive, verdicts[1].IsPositive)

	a, err := c.Analytics(ctx)
	require.NoError(t, err)
	assert.False(t, a.Fallback)
	assert.NotEmpty(t, a.FeatureImportance)
	assert.Equal(t, "mockclassifier", a.ModelInfo["served_by"])
}

func TestMalformedRequestRejected(t *testing.T) {
	srv := httptest.NewServer(newRouter(0))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader("[1, 2"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
