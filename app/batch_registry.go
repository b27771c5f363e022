package app

import (
	"log"
	"sort"
	"sync"
	"time"

	"exodash/domain/batch"
	"exodash/domain/core"
	apperrors "exodash/internal/errors"
	"exodash/ports"
)

// Registry bounds used when BatchOptions leaves them zero.
const (
	DefaultMaxJobs = 32
	DefaultJobTTL  = 30 * time.Minute
)

// BatchRegistry keeps the batch jobs of one server process by ID. Jobs idle for
// longer than JobTTL are dropped, and once MaxJobs are held the least recently
// updated job makes room for a new one. A job mid-parse or mid-submission is never
// evicted.
type BatchRegistry struct {
	classifier ports.Classifier
	opts       BatchOptions
	// observe, when set, receives every job's snapshots.
	observe func(BatchSnapshot)

	mu   sync.RWMutex
	jobs map[core.JobID]*BatchJob
}

// NewBatchRegistry creates jobs with opts; observe may be nil.
func NewBatchRegistry(classifier ports.Classifier, opts BatchOptions, observe func(BatchSnapshot)) *BatchRegistry {
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = DefaultMaxJobs
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = DefaultJobTTL
	}
	return &BatchRegistry{
		classifier: classifier,
		opts:       opts,
		observe:    observe,
		jobs:       make(map[core.JobID]*BatchJob),
	}
}

// Create registers a new idle job.
func (r *BatchRegistry) Create() (*BatchJob, error) {
	opts := r.opts
	opts.Observer = r.observe
	job, err := NewBatchJob(r.classifier, opts)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	evicted := r.evictLocked(time.Now())
	r.jobs[job.ID()] = job
	r.mu.Unlock()

	for _, old := range evicted {
		old.Reset()
	}
	return job, nil
}

// evictLocked forgets expired jobs, then the oldest settled ones until there is room
// for one more. The caller resets the returned jobs after releasing mu.
func (r *BatchRegistry) evictLocked(now time.Time) []*BatchJob {
	type entry struct {
		job     *BatchJob
		updated time.Time
	}
	var settled []entry
	var evicted []*BatchJob
	for id, job := range r.jobs {
		s := job.Snapshot()
		if s.State == batch.StateParsing || s.State == batch.StateSubmitting {
			continue
		}
		if now.Sub(s.UpdatedAt) > r.opts.JobTTL {
			delete(r.jobs, id)
			evicted = append(evicted, job)
			continue
		}
		settled = append(settled, entry{job: job, updated: s.UpdatedAt})
	}

	sort.Slice(settled, func(a, b int) bool { return settled[a].updated.Before(settled[b].updated) })
	for _, e := range settled {
		if len(r.jobs) < r.opts.MaxJobs {
			break
		}
		delete(r.jobs, e.job.ID())
		evicted = append(evicted, e.job)
	}
	if len(evicted) > 0 {
		log.Printf("[BatchRegistry] Evicted %d jobs (%d remain)", len(evicted), len(r.jobs))
	}
	return evicted
}

// Get finds a job by ID.
func (r *BatchRegistry) Get(id core.JobID) (*BatchJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, apperrors.NotFound("batch job " + id.String())
	}
	return job, nil
}

// Remove resets and forgets a job.
func (r *BatchRegistry) Remove(id core.JobID) error {
	r.mu.Lock()
	job, ok := r.jobs[id]
	delete(r.jobs, id)
	r.mu.Unlock()
	if !ok {
		return apperrors.NotFound("batch job " + id.String())
	}
	job.Reset()
	return nil
}

// Len is the number of registered jobs.
func (r *BatchRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
