package app

import (
	"context"
	"sync"

	"exodash/domain/candidate"

	"github.com/stretchr/testify/mock"
)

// MockClassifier is a testify mock of ports.Classifier.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, record candidate.Record) (candidate.Verdict, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(candidate.Verdict), args.Error(1)
}

func (m *MockClassifier) ClassifyBatch(ctx context.Context, records []candidate.Record) ([]candidate.Verdict, error) {
	args := m.Called(ctx, records)
	verdicts, _ := args.Get(0).([]candidate.Verdict)
	return verdicts, args.Error(1)
}

// blockUntil makes a mocked call wait for release or for its context to end.
func blockUntil(release <-chan struct{}) func(mock.Arguments) {
	return func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		select {
		case <-release:
		case <-ctx.Done():
		}
	}
}

// funcClassifier answers bulk requests with a function, for tests that need
// per-request results.
type funcClassifier struct {
	mu    sync.Mutex
	calls int
	batch func(records []candidate.Record) ([]candidate.Verdict, error)
}

func (f *funcClassifier) Classify(ctx context.Context, record candidate.Record) (candidate.Verdict, error) {
	out, err := f.ClassifyBatch(ctx, []candidate.Record{record})
	if err != nil {
		return candidate.Verdict{}, err
	}
	return out[0], nil
}

func (f *funcClassifier) ClassifyBatch(_ context.Context, records []candidate.Record) ([]candidate.Verdict, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.batch(records)
}

func (f *funcClassifier) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// snapshotLog records observer callbacks.
type snapshotLog struct {
	mu  sync.Mutex
	all []BatchSnapshot
}

func (l *snapshotLog) observe(s BatchSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = append(l.all, s)
}

func (l *snapshotLog) progress() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int, len(l.all))
	for i, s := range l.all {
		out[i] = s.Progress
	}
	return out
}
