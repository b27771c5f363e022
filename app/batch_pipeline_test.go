package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"exodash/adapters/csvio"
	"exodash/domain/batch"
	"exodash/domain/candidate"
	"exodash/domain/core"
	"exodash/domain/mission"
	apperrors "exodash/internal/errors"
	"exodash/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fastProgress = progress.Config{Tick: time.Millisecond, Step: 10, Cap: 90}

// tessCSV renders n sample rows with a varying period column.
func tessCSV(t *testing.T, n int) []byte {
	t.Helper()
	schema, err := mission.SchemaFor(mission.TESS)
	require.NoError(t, err)
	sample := schema.CSVSample()

	var b strings.Builder
	b.WriteString(strings.Join(schema.CSVHeader(), ",") + "\n")
	for i := 0; i < n; i++ {
		row := append([]string(nil), sample...)
		row[0] = fmt.Sprintf("%d", i+1)
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	return []byte(b.String())
}

func verdictsFor(n int) []candidate.Verdict {
	out := make([]candidate.Verdict, n)
	for i := range out {
		out[i] = candidate.Verdict{IsPositive: i%2 == 0, Confidence: float64(i%10) / 10, Explanation: "ok", ModelLabel: "stacked"}
	}
	return out
}

func readyJob(t *testing.T, c *MockClassifier, data []byte, opts BatchOptions) *BatchJob {
	t.Helper()
	job, err := NewBatchJob(c, opts)
	require.NoError(t, err)
	require.NoError(t, job.LoadFile(data, "text/csv"))
	require.NoError(t, job.Parse())
	return job
}

func TestFiveHundredRowProgress(t *testing.T) {
	release := make(chan struct{})
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.MatchedBy(func(rs []candidate.Record) bool { return len(rs) == 500 })).
		Run(blockUntil(release)).
		Return(verdictsFor(500), nil).Once()

	log := &snapshotLog{}
	job := readyJob(t, c, tessCSV(t, 500), BatchOptions{Progress: fastProgress, Observer: log.observe})
	assert.Equal(t, mission.TESS, job.Snapshot().Mission)
	assert.Equal(t, 500, job.Snapshot().Rows)

	done := make(chan error, 1)
	go func() { done <- job.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return job.Snapshot().Progress == fastProgress.Cap }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, batch.StateSubmitting, job.Snapshot().State)
	assert.NotContains(t, log.progress(), 100)

	close(release)
	require.NoError(t, <-done)

	seen := log.progress()
	hundreds := 0
	for _, p := range seen {
		if p == 100 {
			hundreds++
		}
	}
	assert.Equal(t, 1, hundreds)
	assert.Equal(t, 100, seen[len(seen)-1])
	assert.Equal(t, batch.StateDone, job.Snapshot().State)

	summary, err := job.Summary()
	require.NoError(t, err)
	assert.Equal(t, 500, summary.Total)
	assert.Equal(t, 250, summary.Positive)

	// no ticks after completion
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, log.progress(), len(seen))
	c.AssertExpectations(t)
}

func TestMalformedRowFailsWholeBatch(t *testing.T) {
	data := []byte("pl_orbper,pl_rade\n1,2\n3,4\n5,\n7,8\n9,10\n")
	c := &MockClassifier{}
	job, err := NewBatchJob(c, BatchOptions{Progress: fastProgress})
	require.NoError(t, err)
	require.NoError(t, job.LoadFile(data, "text/csv"))

	err = job.Parse()
	var pe *core.CsvParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Row)

	s := job.Snapshot()
	assert.Equal(t, batch.StateFailed, s.State)
	assert.Equal(t, 0, s.Rows)
	assert.Equal(t, 3, s.ErrorRow)

	var notReady *core.NotReadyError
	assert.True(t, errors.As(job.Submit(context.Background()), &notReady))
	_, err = job.Summary()
	assert.True(t, errors.As(err, &notReady))
	_, err = job.ExportCSV()
	assert.True(t, errors.As(err, &notReady))
	c.AssertNotCalled(t, "ClassifyBatch", mock.Anything, mock.Anything)
}

func TestLoadFileMimeTypes(t *testing.T) {
	job, err := NewBatchJob(&MockClassifier{}, BatchOptions{})
	require.NoError(t, err)

	for _, mt := range []string{"text/csv", "text/csv; charset=utf-8", "application/csv", "application/vnd.ms-excel", "TEXT/CSV"} {
		assert.NoError(t, job.LoadFile([]byte("a\n1\n"), mt), mt)
	}
	for _, mt := range []string{"application/json", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "", "text/"} {
		var unsupported *core.UnsupportedFormatError
		assert.True(t, errors.As(job.LoadFile([]byte("a\n1\n"), mt), &unsupported), mt)
	}
}

func TestSubmitRequiresRows(t *testing.T) {
	c := &MockClassifier{}
	job, err := NewBatchJob(c, BatchOptions{})
	require.NoError(t, err)

	var notReady *core.NotReadyError
	assert.True(t, errors.As(job.Submit(context.Background()), &notReady))
	assert.True(t, errors.As(job.Parse(), &notReady))

	require.NoError(t, job.LoadFile([]byte("a,b\n"), "text/csv"))
	require.NoError(t, job.Parse())
	assert.True(t, errors.As(job.Submit(context.Background()), &notReady))
}

func TestSecondSubmitRejected(t *testing.T) {
	release := make(chan struct{})
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).Run(blockUntil(release)).Return(verdictsFor(3), nil).Once()
	job := readyJob(t, c, tessCSV(t, 3), BatchOptions{Progress: fastProgress})

	done := make(chan error, 1)
	go func() { done <- job.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return job.Snapshot().State == batch.StateSubmitting }, time.Second, time.Millisecond)

	var busy *core.AlreadyInProgressError
	assert.True(t, errors.As(job.Submit(context.Background()), &busy))
	assert.True(t, errors.As(job.LoadFile([]byte("a\n1\n"), "text/csv"), &busy))

	close(release)
	require.NoError(t, <-done)
	c.AssertNumberOfCalls(t, "ClassifyBatch", 1)
}

func TestResetDuringSubmitIsNoOp(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).Run(blockUntil(release)).Return(verdictsFor(4), nil).Once()

	log := &snapshotLog{}
	job := readyJob(t, c, tessCSV(t, 4), BatchOptions{Progress: fastProgress, Observer: log.observe})

	done := make(chan error, 1)
	go func() { done <- job.Submit(context.Background()) }()
	require.Eventually(t, func() bool { return job.Snapshot().Progress > 0 }, time.Second, time.Millisecond)

	job.Reset()
	assert.ErrorIs(t, <-done, core.ErrSuperseded)

	s := job.Snapshot()
	assert.Equal(t, batch.StateIdle, s.State)
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, 0, s.Rows)
	assert.NotContains(t, log.progress(), 100)

	// no ticks after reset
	n := len(log.progress())
	time.Sleep(10 * time.Millisecond)
	assert.Len(t, log.progress(), n)
}

func TestSubmitFailureKeepsRowsForRetry(t *testing.T) {
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).
		Return(nil, apperrors.ExternalServiceError("classifier", errors.New("status 503: overloaded"))).Once()
	c.On("ClassifyBatch", mock.Anything, mock.Anything).Return(verdictsFor(2), nil).Once()
	job := readyJob(t, c, tessCSV(t, 2), BatchOptions{Progress: fastProgress})

	require.Error(t, job.Submit(context.Background()))
	s := job.Snapshot()
	assert.Equal(t, batch.StateFailed, s.State)
	assert.Contains(t, s.Error, "overloaded")
	assert.NotEqual(t, 100, s.Progress)

	require.NoError(t, job.Submit(context.Background()))
	assert.Equal(t, batch.StateDone, job.Snapshot().State)
}

func TestVerdictCountMismatchFails(t *testing.T) {
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).Return(verdictsFor(2), nil).Once()
	job := readyJob(t, c, tessCSV(t, 3), BatchOptions{Progress: fastProgress})

	err := job.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExternalService, apperrors.GetCode(err))
	assert.Equal(t, batch.StateFailed, job.Snapshot().State)
	_, err = job.Summary()
	assert.Error(t, err)
}

func TestExportRoundTrip(t *testing.T) {
	c := &MockClassifier{}
	verdicts := []candidate.Verdict{
		{IsPositive: true, Confidence: 0.55, Explanation: "borderline, re-check", ModelLabel: "stacked"},
		{IsPositive: false, Confidence: 0.08, Explanation: `says "no"`},
	}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).Return(verdicts, nil).Once()
	job := readyJob(t, c, tessCSV(t, 2), BatchOptions{Progress: fastProgress})
	require.NoError(t, job.Submit(context.Background()))

	out, err := job.ExportCSV()
	require.NoError(t, err)
	table, err := csvio.Parse(out)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, mission.TESS, table.Mission)
	assert.Equal(t, "borderline, re-check", table.Rows[0].Get(batch.ColumnDetails).String())
	assert.Equal(t, `says "no"`, table.Rows[1].Get(batch.ColumnDetails).String())
	assert.Equal(t, batch.Placeholder, table.Rows[1].Get(batch.ColumnModelType).String())
	period, _ := table.Rows[1].Float("pl_orbper")
	assert.Equal(t, 2.0, period)

	xlsx, err := job.ExportXLSX()
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx)

	results, err := job.Results()
	require.NoError(t, err)
	assert.Equal(t, verdicts[1], results[1].Verdict)
}

func TestChunkedSubmissionKeepsOrder(t *testing.T) {
	fc := &funcClassifier{batch: func(rs []candidate.Record) ([]candidate.Verdict, error) {
		out := make([]candidate.Verdict, len(rs))
		for i, r := range rs {
			period, _ := r.Float("pl_orbper")
			out[i] = candidate.Verdict{IsPositive: true, Confidence: period / 10, Explanation: "chunk"}
		}
		return out, nil
	}}
	job, err := NewBatchJob(fc, BatchOptions{Progress: fastProgress, ChunkSize: 2, Concurrency: 2})
	require.NoError(t, err)
	require.NoError(t, job.LoadFile(tessCSV(t, 5), "text/csv"))
	require.NoError(t, job.Parse())

	require.NoError(t, job.Submit(context.Background()))
	assert.Equal(t, 3, fc.Calls())

	results, err := job.Results()
	require.NoError(t, err)
	for i, r := range results {
		assert.InDelta(t, float64(i+1)/10, r.Verdict.Confidence, 1e-12)
	}
}

func TestChunkFailureFailsJob(t *testing.T) {
	fc := &funcClassifier{batch: func(rs []candidate.Record) ([]candidate.Verdict, error) {
		if period, _ := rs[0].Float("pl_orbper"); period == 3 {
			return nil, apperrors.ExternalServiceError("classifier", errors.New("status 500"))
		}
		return make([]candidate.Verdict, len(rs)), nil
	}}
	job, err := NewBatchJob(fc, BatchOptions{Progress: fastProgress, ChunkSize: 2, Concurrency: 1})
	require.NoError(t, err)
	require.NoError(t, job.LoadFile(tessCSV(t, 6), "text/csv"))
	require.NoError(t, job.Parse())

	err = job.Submit(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows 3-4")
	assert.Equal(t, batch.StateFailed, job.Snapshot().State)
}

func TestRegistry(t *testing.T) {
	log := &snapshotLog{}
	r := NewBatchRegistry(&MockClassifier{}, BatchOptions{Progress: fastProgress}, log.observe)

	job, err := r.Create()
	require.NoError(t, err)
	got, err := r.Get(job.ID())
	require.NoError(t, err)
	assert.Same(t, job, got)

	require.NoError(t, job.LoadFile([]byte("a\n1\n"), "text/csv"))
	assert.NotEmpty(t, log.progress())

	require.NoError(t, r.Remove(job.ID()))
	assert.Equal(t, 0, r.Len())
	_, err = r.Get(job.ID())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	assert.Error(t, r.Remove(job.ID()))
}

func TestRegistryEvictsOldestSettledJob(t *testing.T) {
	log := &snapshotLog{}
	r := NewBatchRegistry(&MockClassifier{}, BatchOptions{Progress: fastProgress, MaxJobs: 2}, log.observe)

	first, err := r.Create()
	require.NoError(t, err)
	require.NoError(t, first.LoadFile([]byte("a\n1\n"), "text/csv"))
	require.NoError(t, first.Parse())
	time.Sleep(2 * time.Millisecond)
	second, err := r.Create()
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	third, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	_, err = r.Get(first.ID())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
	s := first.Snapshot()
	assert.Equal(t, batch.StateIdle, s.State)
	assert.Equal(t, 0, s.Rows)

	for _, job := range []*BatchJob{second, third} {
		_, err := r.Get(job.ID())
		assert.NoError(t, err)
	}
}

func TestRegistryKeepsSubmittingJobs(t *testing.T) {
	release := make(chan struct{})
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).Run(blockUntil(release)).Return(verdictsFor(2), nil).Once()
	r := NewBatchRegistry(c, BatchOptions{Progress: fastProgress, MaxJobs: 1, JobTTL: time.Millisecond}, nil)

	busy, err := r.Create()
	require.NoError(t, err)
	require.NoError(t, busy.LoadFile(tessCSV(t, 2), "text/csv"))
	require.NoError(t, busy.Parse())
	require.NoError(t, busy.Start(context.Background()))
	time.Sleep(5 * time.Millisecond)

	_, err = r.Create()
	require.NoError(t, err)
	_, err = r.Get(busy.ID())
	require.NoError(t, err)
	assert.Equal(t, batch.StateSubmitting, busy.Snapshot().State)

	close(release)
	require.Eventually(t, func() bool { return busy.Snapshot().State == batch.StateDone }, time.Second, time.Millisecond)
}

func TestRegistryExpiresStaleJobs(t *testing.T) {
	r := NewBatchRegistry(&MockClassifier{}, BatchOptions{Progress: fastProgress, JobTTL: 5 * time.Millisecond}, nil)

	stale, err := r.Create()
	require.NoError(t, err)
	require.NoError(t, stale.LoadFile([]byte("a\n1\n"), "text/csv"))
	time.Sleep(20 * time.Millisecond)

	fresh, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
	_, err = r.Get(fresh.ID())
	assert.NoError(t, err)

	var notReady *core.NotReadyError
	assert.True(t, errors.As(stale.Parse(), &notReady))
}

func TestLoadFileSupersedesRunningParse(t *testing.T) {
	replaced := make(chan struct{})
	var once sync.Once
	var job *BatchJob
	observe := func(s BatchSnapshot) {
		if s.State != batch.StateParsing {
			return
		}
		// a new upload arrives while the previous one is still being parsed
		once.Do(func() {
			go func() {
				defer close(replaced)
				assert.NoError(t, job.LoadFile([]byte("a\n1\n"), "text/csv"))
			}()
		})
	}
	var err error
	job, err = NewBatchJob(&MockClassifier{}, BatchOptions{Progress: fastProgress, Observer: observe})
	require.NoError(t, err)
	require.NoError(t, job.LoadFile(tessCSV(t, 5000), "text/csv"))

	err = job.Parse()
	<-replaced
	if err != nil {
		assert.ErrorIs(t, err, core.ErrSuperseded)
	}

	// whichever finished first, the new upload is what remains
	s := job.Snapshot()
	assert.Equal(t, batch.StateIdle, s.State)
	assert.Equal(t, 0, s.Rows)
	require.NoError(t, job.Parse())
	assert.Equal(t, 1, job.Snapshot().Rows)
}

func TestExportKeepsCapitalizedMissionColumn(t *testing.T) {
	c := &MockClassifier{}
	c.On("ClassifyBatch", mock.Anything, mock.Anything).
		Return([]candidate.Verdict{{IsPositive: true, Confidence: 0.7, Explanation: "x", ModelLabel: "m"}}, nil).Once()
	job := readyJob(t, c, []byte("Mission,pl_orbper\nK2,1.5\n"), BatchOptions{Progress: fastProgress})
	require.NoError(t, job.Submit(context.Background()))

	out, err := job.ExportCSV()
	require.NoError(t, err)
	table, err := csvio.Parse(out)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "K2", table.Rows[0].Mission)
	x, ok := table.Rows[0].Float("pl_orbper")
	assert.True(t, ok)
	assert.Equal(t, 1.5, x)
}
