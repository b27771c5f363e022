package mission

import (
	"strconv"
	"strings"

	"exodash/domain/candidate"
	"exodash/domain/core"
)

// Missions returns the supported mission identifiers in display order.
func Missions() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// SchemaFor returns the schema for missionID. The returned value shares descriptor
// slices with the registry and must be treated as read-only.
func SchemaFor(missionID string) (Schema, error) {
	s, ok := schemas[missionID]
	if !ok {
		return Schema{}, &core.UnknownMissionError{Mission: missionID}
	}
	return s, nil
}

// SampleFor returns a fresh copy of the mission's illustrative record.
func SampleFor(missionID string) (candidate.Record, error) {
	values, ok := samples[missionID]
	if !ok {
		return candidate.Record{}, &core.UnknownMissionError{Mission: missionID}
	}
	r := candidate.NewRecord(missionID)
	for k, v := range values {
		r.Values[k] = v
	}
	return r, nil
}

// Coerce converts raw input for the named feature according to its kind.
func (s Schema) Coerce(name, raw string) (candidate.Value, error) {
	f, ok := s.Feature(name)
	if !ok {
		return candidate.Value{}, &core.FieldValidationError{Field: name, Value: raw, Reason: core.ReasonUnknownField}
	}
	token := strings.TrimSpace(raw)
	if token == "" {
		return candidate.Value{}, &core.FieldValidationError{Field: name, Value: raw, Reason: core.ReasonEmpty}
	}
	switch f.Kind {
	case KindNumeric:
		v := candidate.Coerce(token)
		if !v.IsNumber() {
			return candidate.Value{}, &core.FieldValidationError{Field: name, Value: raw, Reason: core.ReasonNotNumeric}
		}
		if err := checkBounds(f, v); err != nil {
			return candidate.Value{}, err
		}
		return v, nil
	default:
		if !f.HasOption(token) {
			return candidate.Value{}, &core.FieldValidationError{Field: name, Value: raw, Reason: core.ReasonNotAnOption}
		}
		return candidate.Text(token), nil
	}
}

// Validate checks that r carries every schema feature with a value fitting its
// descriptor. Missing features are reported together; the first ill-typed one otherwise.
func (s Schema) Validate(r candidate.Record) error {
	var missing []string
	for _, f := range s.Features {
		if !r.Get(f.Name).IsSet() {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &core.IncompleteRecordError{Mission: s.MissionID, Missing: missing}
	}
	for _, f := range s.Features {
		v := r.Get(f.Name)
		switch f.Kind {
		case KindNumeric:
			if !v.IsNumber() {
				return &core.FieldValidationError{Field: f.Name, Value: v.String(), Reason: core.ReasonNotNumeric}
			}
			if err := checkBounds(f, v); err != nil {
				return err
			}
		case KindEnumerated:
			if !f.HasOption(v.String()) {
				return &core.FieldValidationError{Field: f.Name, Value: v.String(), Reason: core.ReasonNotAnOption}
			}
		}
	}
	return nil
}

func checkBounds(f FeatureDescriptor, v candidate.Value) error {
	if f.Bounds == nil {
		return nil
	}
	x, _ := v.Float()
	if x < f.Bounds.Min || x > f.Bounds.Max {
		return &core.FieldValidationError{Field: f.Name, Value: v.String(), Reason: core.ReasonOutOfRange}
	}
	return nil
}

// CSVHeader is the template header for uploads of this mission.
func (s Schema) CSVHeader() []string {
	return s.Names()
}

// CSVSample renders the mission sample as a row aligned with CSVHeader.
func (s Schema) CSVSample() []string {
	values := samples[s.MissionID]
	row := make([]string, len(s.Features))
	for i, f := range s.Features {
		row[i] = values[f.Name].String()
	}
	return row
}

// Detect picks the mission whose features are all present in header. Ties go to the
// mission listed first. Matching is case-insensitive.
func Detect(header []string) (string, bool) {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, id := range order {
		all := true
		for _, f := range schemas[id].Features {
			if !present[f.Name] {
				all = false
				break
			}
		}
		if all {
			return id, true
		}
	}
	return "", false
}

// FormatBounds renders a descriptor's numeric bounds for help text.
func FormatBounds(f FeatureDescriptor) string {
	if f.Bounds == nil {
		return ""
	}
	return strconv.FormatFloat(f.Bounds.Min, 'g', -1, 64) + "–" + strconv.FormatFloat(f.Bounds.Max, 'g', -1, 64)
}
