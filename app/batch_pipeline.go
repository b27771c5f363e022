package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
	"sync"
	"time"

	"exodash/adapters/csvio"
	"exodash/adapters/excel"
	"exodash/domain/batch"
	"exodash/domain/candidate"
	"exodash/domain/core"
	apperrors "exodash/internal/errors"
	"exodash/internal/progress"
	"exodash/ports"

	"golang.org/x/sync/errgroup"
)

// csvMimeTypes are the declared types accepted for upload. Browsers on Windows report
// .csv files as application/vnd.ms-excel.
var csvMimeTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
}

// BatchOptions configures a BatchJob. Zero values pick the defaults.
type BatchOptions struct {
	Progress progress.Config
	// ChunkSize splits submissions into several bulk requests when positive.
	ChunkSize   int
	Concurrency int
	// MaxJobs and JobTTL bound a BatchRegistry; single jobs ignore them.
	MaxJobs int
	JobTTL  time.Duration
	// Observer receives every state or progress change. It is called with the job lock
	// held, so it must not call back into the job.
	Observer func(BatchSnapshot)
}

// BatchSnapshot is a read-only view of a job.
type BatchSnapshot struct {
	ID        core.JobID  `json:"id"`
	State     batch.State `json:"state"`
	Progress  int         `json:"progress"`
	Rows      int         `json:"rows"`
	Mission   string      `json:"mission,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorRow  int         `json:"error_row,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BatchResult pairs one parsed row with its verdict.
type BatchResult struct {
	Row     candidate.Record  `json:"row"`
	Verdict candidate.Verdict `json:"verdict"`
}

// BatchJob parses an uploaded table, classifies every row in bulk and aggregates the
// verdicts. Rows and verdicts are all-or-nothing: a malformed row or a failed request
// leaves nothing to summarize or export.
type BatchJob struct {
	id         core.JobID
	classifier ports.Classifier
	opts       BatchOptions

	mu        sync.Mutex
	state     batch.State
	raw       []byte
	header    []string
	mission   string
	rows      []candidate.Record
	verdicts  []candidate.Verdict
	progress  int
	err       error
	gen       uint64
	cancel    context.CancelFunc
	ticker    *progress.Ticker
	updatedAt time.Time
}

// NewBatchJob creates an idle job.
func NewBatchJob(classifier ports.Classifier, opts BatchOptions) (*BatchJob, error) {
	if opts.Progress == (progress.Config{}) {
		opts.Progress = progress.DefaultConfig()
	}
	if err := opts.Progress.Validate(); err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &BatchJob{
		id:         core.NewJobID(),
		classifier: classifier,
		opts:       opts,
		state:      batch.StateIdle,
		updatedAt:  time.Now(),
	}, nil
}

// ID identifies the job.
func (j *BatchJob) ID() core.JobID {
	return j.id
}

// LoadFile stores an upload for parsing. Only comma-separated text is accepted;
// media-type parameters such as charset are ignored.
func (j *BatchJob) LoadFile(data []byte, mimeType string) error {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || !csvMimeTypes[strings.ToLower(mediaType)] {
		return &core.UnsupportedFormatError{MimeType: mimeType}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == batch.StateSubmitting {
		return &core.AlreadyInProgressError{Operation: "load file"}
	}
	// a parse still running over the previous upload must not install its rows
	j.gen++
	j.clear()
	j.raw = append([]byte(nil), data...)
	j.emit()
	return nil
}

// Parse turns the stored upload into typed rows. The first malformed row fails the
// whole job with a CsvParseError.
func (j *BatchJob) Parse() error {
	j.mu.Lock()
	if j.state == batch.StateSubmitting || j.state == batch.StateParsing {
		j.mu.Unlock()
		return &core.AlreadyInProgressError{Operation: "parse"}
	}
	if j.raw == nil {
		state := j.state
		j.mu.Unlock()
		return &core.NotReadyError{Operation: "parse", State: string(state)}
	}
	raw := j.raw
	j.gen++
	gen := j.gen
	j.rows, j.verdicts, j.err = nil, nil, nil
	j.progress = 0
	j.setState(batch.StateParsing)
	j.mu.Unlock()

	start := time.Now()
	table, err := csvio.Parse(raw)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.gen != gen {
		return core.ErrSuperseded
	}
	if err != nil {
		log.Printf("[BatchJob] %s parse failed: %v", j.id, err)
		j.fail(err)
		return err
	}
	j.header = table.Header
	j.mission = table.Mission
	j.rows = table.Rows
	log.Printf("[BatchJob] %s parsed %d rows (mission %q) in %.2fms",
		j.id, len(j.rows), j.mission, float64(time.Since(start).Nanoseconds())/1e6)
	j.setState(batch.StateReady)
	return nil
}

// Submit classifies every parsed row, from Ready or to retry a failed submission.
// Progress advances on a fixed cadence toward a cap below 100 while the request is
// outstanding and becomes 100 only on success. A Reset during the request cancels it;
// the late result is dropped with core.ErrSuperseded.
func (j *BatchJob) Submit(ctx context.Context) error {
	run, err := j.begin(ctx)
	if err != nil {
		return err
	}
	return run()
}

// Start is Submit with the request moved to a background goroutine. State errors are
// returned immediately; the outcome is visible through Snapshot and the observer.
func (j *BatchJob) Start(ctx context.Context) error {
	run, err := j.begin(ctx)
	if err != nil {
		return err
	}
	go func() { _ = run() }()
	return nil
}

// begin moves the job to Submitting and returns the request to run.
func (j *BatchJob) begin(ctx context.Context) (func() error, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.state == batch.StateSubmitting:
		return nil, &core.AlreadyInProgressError{Operation: "submit"}
	case !(j.state == batch.StateReady || j.state == batch.StateFailed) || len(j.rows) == 0:
		return nil, &core.NotReadyError{Operation: "submit", State: string(j.state)}
	}
	rows := j.rows
	j.gen++
	gen := j.gen
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.verdicts, j.err = nil, nil
	j.progress = 0
	j.setState(batch.StateSubmitting)
	ticker := progress.Start(j.opts.Progress.Tick, func() { j.tick(gen) })
	j.ticker = ticker

	return func() error {
		start := time.Now()
		verdicts, err := j.classify(ctx, rows)
		// stopped outside the lock: Stop waits for a tick that may be waiting on mu
		ticker.Stop()
		cancel()
		return j.finish(gen, len(rows), verdicts, err, time.Since(start))
	}, nil
}

func (j *BatchJob) finish(gen uint64, rowCount int, verdicts []candidate.Verdict, err error, took time.Duration) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.gen != gen {
		log.Printf("[BatchJob] %s discarding response for reset submission", j.id)
		return core.ErrSuperseded
	}
	j.ticker, j.cancel = nil, nil
	if err == nil && len(verdicts) != rowCount {
		err = apperrors.ExternalServiceError("classifier",
			fmt.Errorf("expected %d verdicts, got %d", rowCount, len(verdicts)))
	}
	if err != nil {
		log.Printf("[BatchJob] %s submission failed after %s: %v", j.id, took.Round(time.Millisecond), err)
		j.fail(err)
		return err
	}
	log.Printf("[BatchJob] %s classified %d rows in %s", j.id, rowCount, took.Round(time.Millisecond))
	j.complete(verdicts)
	return nil
}

func (j *BatchJob) classify(ctx context.Context, rows []candidate.Record) ([]candidate.Verdict, error) {
	size := j.opts.ChunkSize
	if size <= 0 || len(rows) <= size {
		return j.classifier.ClassifyBatch(ctx, rows)
	}

	out := make([]candidate.Verdict, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.opts.Concurrency)
	for start := 0; start < len(rows); start += size {
		start := start // per-iteration copy; module targets go 1.21 loop semantics
		end := min(start+size, len(rows))
		g.Go(func() error {
			verdicts, err := j.classifier.ClassifyBatch(gctx, rows[start:end])
			if err != nil {
				return apperrors.Wrapf(err, "rows %d-%d", start+1, end)
			}
			if len(verdicts) != end-start {
				return apperrors.ExternalServiceError("classifier",
					fmt.Errorf("rows %d-%d: expected %d verdicts, got %d", start+1, end, end-start, len(verdicts)))
			}
			copy(out[start:end], verdicts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *BatchJob) tick(gen uint64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.gen != gen || j.state != batch.StateSubmitting {
		return
	}
	next := j.opts.Progress.Advance(j.progress)
	if next == j.progress {
		return
	}
	j.progress = next
	j.touch()
	j.emit()
}

// Summary counts verdicts once the job is done.
func (j *BatchJob) Summary() (batch.Summary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != batch.StateDone {
		return batch.Summary{}, &core.NotReadyError{Operation: "summary", State: string(j.state)}
	}
	return batch.Summarize(j.verdicts), nil
}

// ExportCSV writes the original columns plus the verdict columns.
func (j *BatchJob) ExportCSV() ([]byte, error) {
	header, rows, verdicts, err := j.finished("export csv")
	if err != nil {
		return nil, err
	}
	return csvio.Bytes(header, rows, verdicts)
}

// ExportXLSX renders the same table as a workbook with a summary sheet.
func (j *BatchJob) ExportXLSX() ([]byte, error) {
	header, rows, verdicts, err := j.finished("export xlsx")
	if err != nil {
		return nil, err
	}
	return excel.Export(header, rows, verdicts, batch.Summarize(verdicts))
}

// Results pairs rows with verdicts once the job is done.
func (j *BatchJob) Results() ([]BatchResult, error) {
	_, rows, verdicts, err := j.finished("results")
	if err != nil {
		return nil, err
	}
	out := make([]BatchResult, len(rows))
	for i := range rows {
		out[i] = BatchResult{Row: rows[i], Verdict: verdicts[i]}
	}
	return out, nil
}

func (j *BatchJob) finished(op string) ([]string, []candidate.Record, []candidate.Verdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != batch.StateDone {
		return nil, nil, nil, &core.NotReadyError{Operation: op, State: string(j.state)}
	}
	return j.header, j.rows, j.verdicts, nil
}

// Reset discards everything and returns to Idle from any state, cancelling an
// outstanding request.
func (j *BatchJob) Reset() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel()
	}
	ticker := j.ticker
	j.gen++
	j.clear()
	j.emit()
	j.mu.Unlock()

	ticker.Stop()
}

// Snapshot copies the job's progress state.
func (j *BatchJob) Snapshot() BatchSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshot()
}

// clear must be called with mu held.
func (j *BatchJob) clear() {
	j.raw, j.header, j.mission = nil, nil, ""
	j.rows, j.verdicts, j.err = nil, nil, nil
	j.progress = 0
	j.cancel, j.ticker = nil, nil
	j.state = batch.StateIdle
	j.touch()
}

// complete is the only way into Done; it must be called with mu held.
func (j *BatchJob) complete(verdicts []candidate.Verdict) {
	if len(verdicts) != len(j.rows) {
		j.fail(apperrors.InternalError("verdicts do not align with rows"))
		return
	}
	j.verdicts = verdicts
	j.progress = 100
	j.setState(batch.StateDone)
}

// fail must be called with mu held. Parsed rows survive a failed submission so it
// can be retried; a failed parse never produced any.
func (j *BatchJob) fail(err error) {
	j.err = err
	j.verdicts = nil
	j.setState(batch.StateFailed)
}

// setState must be called with mu held.
func (j *BatchJob) setState(s batch.State) {
	j.state = s
	j.touch()
	j.emit()
}

func (j *BatchJob) touch() {
	j.updatedAt = time.Now()
}

func (j *BatchJob) emit() {
	if j.opts.Observer != nil {
		j.opts.Observer(j.snapshot())
	}
}

func (j *BatchJob) snapshot() BatchSnapshot {
	s := BatchSnapshot{
		ID:        j.id,
		State:     j.state,
		Progress:  j.progress,
		Rows:      len(j.rows),
		Mission:   j.mission,
		UpdatedAt: j.updatedAt,
	}
	if j.err != nil {
		s.Error = j.err.Error()
		var pe *core.CsvParseError
		if errors.As(j.err, &pe) {
			s.ErrorRow = pe.Row
		}
	}
	return s
}
