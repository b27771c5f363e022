package app

import (
	"context"
	"log"
	"sync"

	"exodash/domain/candidate"
	"exodash/domain/core"
	"exodash/domain/lightcurve"
	"exodash/domain/mission"
	"exodash/domain/physics"
	apperrors "exodash/internal/errors"
	"exodash/ports"
)

// FormState is the single-candidate form lifecycle.
type FormState string

const (
	FormEditing    FormState = "editing"
	FormSubmitting FormState = "submitting"
	FormResult     FormState = "result"
	FormError      FormState = "error"
)

// FormOptions configures a CandidateForm. Zero values pick the defaults.
type FormOptions struct {
	// Fallback answers when the remote model is unreachable. Nil disables the substitution.
	Fallback    ports.Classifier
	Physics     *physics.Classifier
	CurvePoints int
}

// FormSnapshot is a read-only copy of the form for rendering.
type FormSnapshot struct {
	Mission string             `json:"mission"`
	State   FormState          `json:"state"`
	Draft   candidate.Record   `json:"draft"`
	Missing []string           `json:"missing"`
	Verdict *candidate.Verdict `json:"verdict,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// CandidateForm edits one candidate record and submits it to the classifier. At most
// one classification request is outstanding per form.
type CandidateForm struct {
	classifier  ports.Classifier
	fallback    ports.Classifier
	physics     *physics.Classifier
	curvePoints int

	mu        sync.Mutex
	schema    mission.Schema
	draft     candidate.Record
	state     FormState
	submitted candidate.Record
	verdict   *candidate.Verdict
	errMsg    string
	gen       uint64
	cancel    context.CancelFunc
}

// NewCandidateForm starts editing an empty record for missionID.
func NewCandidateForm(classifier ports.Classifier, missionID string, opts FormOptions) (*CandidateForm, error) {
	schema, err := mission.SchemaFor(missionID)
	if err != nil {
		return nil, err
	}
	if opts.Physics == nil {
		opts.Physics = physics.MustBuiltin(physics.SetDashboard)
	}
	if opts.CurvePoints <= 0 {
		opts.CurvePoints = lightcurve.DefaultPoints
	}
	return &CandidateForm{
		classifier:  classifier,
		fallback:    opts.Fallback,
		physics:     opts.Physics,
		curvePoints: opts.CurvePoints,
		schema:      schema,
		draft:       candidate.NewRecord(missionID),
		state:       FormEditing,
	}, nil
}

// SelectMission switches schema and starts an empty draft, discarding any verdict.
func (f *CandidateForm) SelectMission(missionID string) error {
	schema, err := mission.SchemaFor(missionID)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return &core.AlreadyInProgressError{Operation: "select mission"}
	}
	f.schema = schema
	f.restart()
	return nil
}

// SetField coerces raw per the feature's kind and stores it in the draft. Editing
// after a result starts a new submission.
func (f *CandidateForm) SetField(name, raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return &core.AlreadyInProgressError{Operation: "set field"}
	}
	v, err := f.schema.Coerce(name, raw)
	if err != nil {
		return err
	}
	f.draft.Values[name] = v
	f.backToEditing()
	return nil
}

// ClearField unsets a feature in the draft.
func (f *CandidateForm) ClearField(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return &core.AlreadyInProgressError{Operation: "clear field"}
	}
	if _, ok := f.schema.Feature(name); !ok {
		return &core.FieldValidationError{Field: name, Reason: core.ReasonUnknownField}
	}
	delete(f.draft.Values, name)
	f.backToEditing()
	return nil
}

// LoadSample replaces the draft with the mission's illustrative record.
func (f *CandidateForm) LoadSample() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return &core.AlreadyInProgressError{Operation: "load sample"}
	}
	sample, err := mission.SampleFor(f.schema.MissionID)
	if err != nil {
		return err
	}
	f.draft = sample
	f.backToEditing()
	return nil
}

// Submit validates the draft and sends exactly one classification request. The lock
// is not held during the request. A Reset while the request is outstanding cancels it
// and the late answer is dropped with core.ErrSuperseded.
func (f *CandidateForm) Submit(ctx context.Context) (candidate.Verdict, error) {
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		return candidate.Verdict{}, &core.AlreadyInProgressError{Operation: "submit"}
	}
	if err := f.schema.Validate(f.draft); err != nil {
		f.mu.Unlock()
		return candidate.Verdict{}, err
	}
	record := f.draft.Clone()
	record.Mission = f.schema.MissionID
	f.gen++
	gen := f.gen
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state = FormSubmitting
	f.verdict = nil
	f.errMsg = ""
	f.mu.Unlock()
	defer cancel()

	verdict, err := f.classifier.Classify(ctx, record)
	// an abandoned request gets no verdict at all
	if err != nil && f.fallback != nil && ctx.Err() == nil && apperrors.HasCode(err, apperrors.CodeServiceUnreachable) {
		log.Printf("[CandidateForm] Model service unreachable, using offline fallback: %v", err)
		verdict, err = f.fallback.Classify(ctx, record)
		verdict.Fallback = err == nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return candidate.Verdict{}, core.ErrSuperseded
	}
	f.cancel = nil
	if err != nil {
		f.state = FormError
		f.errMsg = err.Error()
		log.Printf("[CandidateForm] Classification failed for %s candidate: %v", record.Mission, err)
		return candidate.Verdict{}, err
	}
	f.state = FormResult
	f.submitted = record
	f.verdict = &verdict
	return verdict, nil
}

// Reset returns to an empty draft for the current mission from any state.
func (f *CandidateForm) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restart()
}

// Snapshot copies the current form state.
func (f *CandidateForm) Snapshot() FormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := FormSnapshot{
		Mission: f.schema.MissionID,
		State:   f.state,
		Draft:   f.draft.Clone(),
		Missing: []string{},
		Error:   f.errMsg,
	}
	for _, name := range f.schema.Names() {
		if !f.draft.Get(name).IsSet() {
			s.Missing = append(s.Missing, name)
		}
	}
	if f.verdict != nil {
		v := *f.verdict
		s.Verdict = &v
	}
	return s
}

// Schema is the active mission schema.
func (f *CandidateForm) Schema() mission.Schema {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.schema
}

// Presentation derives the result view for the last verdict.
func (f *CandidateForm) Presentation() (Presentation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != FormResult || f.verdict == nil {
		return Presentation{}, &core.NotReadyError{Operation: "presentation", State: string(f.state)}
	}
	return Present(f.submitted, *f.verdict, f.physics, f.curvePoints), nil
}

// restart must be called with mu held.
func (f *CandidateForm) restart() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
	f.draft = candidate.NewRecord(f.schema.MissionID)
	f.submitted = candidate.Record{}
	f.verdict = nil
	f.errMsg = ""
	f.state = FormEditing
}

// backToEditing must be called with mu held.
func (f *CandidateForm) backToEditing() {
	if f.state == FormEditing {
		return
	}
	f.submitted = candidate.Record{}
	f.verdict = nil
	f.errMsg = ""
	f.state = FormEditing
}
